package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/maxviazov/courtside/internal/game"
	"github.com/maxviazov/courtside/internal/model"
	"github.com/maxviazov/courtside/internal/repository"
)

// Ticker arms and disarms the per-game tick source. tick.Driver implements it.
type Ticker interface {
	Ensure(gameID string)
	Stop(gameID string)
}

// session is one live game held in memory. initial is the tip-off baseline undo replays from.
type session struct {
	mu      sync.Mutex
	initial model.GameState
	state   model.GameState
}

type gameService struct {
	live     repository.GameRepository
	finished repository.GameRepository
	tx       repository.TxManager
	engine   *game.Engine
	clock    quartz.Clock
	validate *validator.Validate
	ticker   Ticker
	log      zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// Deps groups what the game service needs. Clock defaults to wall time; a nil Ticker
// leaves clocks to explicit Tick calls.
type Deps struct {
	Live     repository.GameRepository
	Finished repository.GameRepository
	Tx       repository.TxManager
	Clock    quartz.Clock
	Ticker   Ticker
}

// NewGameService wires the live-game use cases.
func NewGameService(deps Deps, logger zerolog.Logger) GameService {
	clock := deps.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}
	l := logger.With().Str("module", "service").Str("component", "game").Logger()
	return &gameService{
		live:     deps.Live,
		finished: deps.Finished,
		tx:       deps.Tx,
		engine:   game.NewEngine(clock),
		clock:    clock,
		ticker:   deps.Ticker,
		validate: newValidator(),
		log:      l,
		sessions: make(map[string]*session),
	}
}

func (s *gameService) StartGame(ctx context.Context, in NewGameInput) (model.GameState, error) {
	start := time.Now()
	settings := game.DefaultSettings()
	if in.Settings != nil {
		settings = *in.Settings
	}

	var ferrs []FieldError
	ferrs = append(ferrs, validateSettings(s.validate, settings)...)
	ferrs = append(ferrs, validateTeams(in.Home, in.Away)...)
	if err := newInvalidInput(ferrs); err != nil {
		s.log.Debug().Interface("field_errors", ferrs).Msg("game setup validation failed")
		return model.GameState{}, err
	}

	g := game.NewGame(uuid.NewString(), s.clock.Now().UnixMilli(), settings,
		model.TeamInGame{Name: in.Home.Name, Players: in.Home.Players},
		model.TeamInGame{Name: in.Away.Name, Players: in.Away.Players},
	)
	if err := s.live.Save(ctx, g); err != nil {
		s.log.Error().Err(err).Str("game_id", g.ID).Msg("save new game failed")
		return model.GameState{}, err
	}

	s.mu.Lock()
	s.sessions[g.ID] = &session{initial: g.Clone(), state: g}
	s.mu.Unlock()

	s.log.Info().Dur("took", time.Since(start)).Str("game_id", g.ID).
		Str("home", in.Home.Name).Str("away", in.Away.Name).Msg("game started")
	return g.Clone(), nil
}

func (s *gameService) GetGame(ctx context.Context, id string) (model.GameState, error) {
	if id == "" {
		return model.GameState{}, newInvalidInput([]FieldError{{Field: "id", Message: "must not be empty"}})
	}
	sess, err := s.session(ctx, id)
	if err == nil {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		return sess.state.Clone(), nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return model.GameState{}, err
	}
	return s.finished.GetByID(ctx, id)
}

func (s *gameService) Dispatch(ctx context.Context, id string, action model.Action) (ActionResult, error) {
	if ferrs := validateAction(s.validate, action); len(ferrs) > 0 {
		return ActionResult{}, newInvalidInput(ferrs)
	}
	if action.Type == model.ActionGameEnd {
		final, err := s.FinishGame(ctx, id)
		if err != nil {
			return ActionResult{}, err
		}
		entry := final.ActionLog[len(final.ActionLog)-1]
		return ActionResult{Game: final, Entry: &entry}, nil
	}
	sess, err := s.liveSession(ctx, id)
	if err != nil {
		return ActionResult{}, err
	}

	sess.mu.Lock()
	if sess.state.Status == model.StatusFinished {
		sess.mu.Unlock()
		return ActionResult{}, ErrGameFinished
	}
	next := s.engine.Apply(sess.state, action, true)
	sess.state = next
	s.persist(ctx, next)
	res := ActionResult{Game: next.Clone()}
	if n := len(next.ActionLog); n > 0 {
		entry := next.ActionLog[n-1]
		res.Entry = &entry
		res.FoulOut = foulOutNotice(&next, entry)
		if f, ok := game.FollowUpFor(entry); ok {
			res.FollowUp = &f
		}
	}
	ticking := next.Ticking()
	sess.mu.Unlock()

	if ticking {
		s.armClock(id)
	}
	s.log.Debug().Str("game_id", id).Str("action", string(action.Type)).Msg("action applied")
	return res, nil
}

func (s *gameService) Undo(ctx context.Context, id string) (model.GameState, error) {
	sess, err := s.liveSession(ctx, id)
	if err != nil {
		return model.GameState{}, err
	}

	sess.mu.Lock()
	if sess.state.Status == model.StatusFinished {
		sess.mu.Unlock()
		return model.GameState{}, ErrGameFinished
	}
	undone, ok := game.Undo(sess.initial, sess.state)
	if !ok {
		sess.mu.Unlock()
		return model.GameState{}, ErrNothingToUndo
	}
	sess.state = undone
	s.persist(ctx, undone)
	out := undone.Clone()
	sess.mu.Unlock()

	if out.Ticking() {
		s.armClock(id)
	}
	s.log.Info().Str("game_id", id).Int("log_len", len(out.ActionLog)).Msg("last action undone")
	return out, nil
}

func (s *gameService) Tick(ctx context.Context, id string, persist bool) (bool, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.state.Status == model.StatusFinished || !sess.state.Ticking() {
		return false, nil
	}
	next := s.engine.Apply(sess.state, model.Action{Type: model.ActionTick}, false)
	sess.state = next
	// a clock that just ran out is written through so a restart sees it stopped.
	// A failed write keeps the clock running; the next persisting tick retries.
	if persist || !next.Ticking() {
		s.persist(ctx, next)
	}
	return next.Ticking(), nil
}

func (s *gameService) FinishGame(ctx context.Context, id string) (model.GameState, error) {
	sess, err := s.liveSession(ctx, id)
	if err != nil {
		return model.GameState{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.state.Status == model.StatusFinished {
		return model.GameState{}, ErrGameFinished
	}
	final := s.engine.Apply(sess.state, model.Action{Type: model.ActionGameEnd}, true)

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.finished.Save(ctx, final); err != nil {
			return err
		}
		return s.live.Delete(ctx, id)
	})
	if err != nil {
		s.log.Error().Err(err).Str("game_id", id).Msg("finish game failed")
		return model.GameState{}, err
	}
	sess.state = final

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	if s.ticker != nil {
		s.ticker.Stop(id)
	}

	s.log.Info().Str("game_id", id).
		Int("home_score", final.HomeTeam.Stats.Score).
		Int("away_score", final.AwayTeam.Stats.Score).
		Msg("game finished")
	return final.Clone(), nil
}

func (s *gameService) ListFinished(ctx context.Context, page repository.Page) (repository.PageResult[model.GameState], error) {
	p := normalizePage(page)
	res, err := s.finished.List(ctx, p)
	if err != nil {
		s.log.Error().Err(err).Int("limit", p.Limit).Int("offset", p.Offset).Msg("list finished games failed")
		return repository.PageResult[model.GameState]{}, err
	}
	return res, nil
}

// session returns the in-memory session of a live game, loading it from the live store
// after a restart. The baseline of a loaded game is rebuilt from its settings and rosters.
func (s *gameService) session(ctx context.Context, id string) (*session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if ok {
		return sess, nil
	}

	stored, err := s.live.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if cur, ok := s.sessions[id]; ok {
		s.mu.Unlock()
		return cur, nil
	}
	sess = &session{initial: game.Initial(stored), state: stored}
	s.sessions[id] = sess
	s.mu.Unlock()

	s.log.Info().Str("game_id", id).Int("log_len", len(stored.ActionLog)).Msg("live game resumed from store")
	if stored.Ticking() {
		s.armClock(id)
	}
	return sess, nil
}

// liveSession is session for mutating calls: a game only found among finished games is ErrGameFinished.
func (s *gameService) liveSession(ctx context.Context, id string) (*session, error) {
	if id == "" {
		return nil, newInvalidInput([]FieldError{{Field: "id", Message: "must not be empty"}})
	}
	sess, err := s.session(ctx, id)
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if _, ferr := s.finished.GetByID(ctx, id); ferr == nil {
		return nil, ErrGameFinished
	}
	return nil, err
}

// persist writes the live document through. A failed write is logged and retried implicitly
// by the next action, the in-memory session stays authoritative.
func (s *gameService) persist(ctx context.Context, g model.GameState) {
	if err := s.live.Save(ctx, g); err != nil {
		s.log.Warn().Err(err).Str("game_id", g.ID).Msg("persist live game failed")
	}
}

func (s *gameService) armClock(id string) {
	if s.ticker != nil {
		s.ticker.Ensure(id)
	}
}

func foulOutNotice(g *model.GameState, entry model.GameAction) *FoulOutNotice {
	if !entry.Payload.IsFoulOut {
		return nil
	}
	team := g.Team(entry.Payload.TeamID)
	if team == nil {
		return nil
	}
	n := &FoulOutNotice{TeamID: team.ID, PlayerID: entry.Payload.PlayerID, Name: entry.Payload.PlayerID}
	if p, ok := team.Player(entry.Payload.PlayerID); ok {
		n.Name = p.Name
	}
	return n
}

var _ GameService = (*gameService)(nil)
