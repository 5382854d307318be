// Package game is the deterministic game-state engine: a pure reducer over GameState,
// the derived-stat recomputation it relies on, and log replay for undo.
//
// Nothing here performs I/O. Apply never mutates its input and never fails; malformed
// actions fall through as no-ops. The only non-deterministic values are the ids and
// timestamps of new log entries, which Engine takes from an injected clock.
package game

import (
	"slices"

	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/maxviazov/courtside/internal/model"
)

// Engine appends log entries on top of the pure reducer.
type Engine struct {
	clock quartz.Clock
	newID func() string
}

// NewEngine builds an engine stamping log entries with clock. A nil clock means wall time.
func NewEngine(clock quartz.Clock) *Engine {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Engine{clock: clock, newID: uuid.NewString}
}

// Apply runs the reducer and, when appendToLog is set, appends a log entry whose
// payload snapshots quarter, clock, scores and timeout state as they were before the action.
func (e *Engine) Apply(state model.GameState, action model.Action, appendToLog bool) model.GameState {
	payload := resolvePayload(&state, action)
	next := reduce(state, action.Type, payload)
	if appendToLog {
		next.ActionLog = append(next.ActionLog, e.entry(&state, action.Type, payload))
	}
	return next
}

func (e *Engine) entry(prev *model.GameState, t model.ActionType, p model.ActionPayload) model.GameAction {
	logged := p.Clone()
	logged.Quarter = prev.CurrentQuarter
	logged.GameClock = prev.GameClock
	logged.HomeScore = prev.HomeTeam.Stats.Score
	logged.AwayScore = prev.AwayTeam.Stats.Score
	logged.TimeoutActive = prev.IsTimeoutActive
	return model.GameAction{
		ID:          e.newID(),
		Timestamp:   e.clock.Now().UnixMilli(),
		Type:        t,
		Description: describe(prev, t, logged),
		Payload:     logged,
	}
}

// Apply is the reducer without logging; replay folds it over the log.
func Apply(state model.GameState, action model.Action) model.GameState {
	return reduce(state, action.Type, resolvePayload(&state, action))
}

// resolvePayload recomputes the flags the reducer owns, ignoring whatever the caller sent.
func resolvePayload(state *model.GameState, action model.Action) model.ActionPayload {
	p := action.Payload.Clone()
	p.IsFoulOut = false
	if isStatAction(action.Type) {
		p.IsFoulOut = reachesFoulOut(state, p)
	}
	return p
}

func isStatAction(t model.ActionType) bool {
	return t == model.ActionScoreUpdate || t == model.ActionStatUpdate
}

func reduce(state model.GameState, t model.ActionType, p model.ActionPayload) model.GameState {
	g := state.Clone()
	switch t {
	case model.ActionScoreUpdate, model.ActionStatUpdate:
		applyStat(&g, p)
	case model.ActionQuarterChange:
		applyQuarterChange(&g, p)
	case model.ActionTimeout:
		applyTimeout(&g, p)
	case model.ActionSubstitution:
		applySubstitution(&g, p)
	case model.ActionMultipleSubstitution:
		applyMultipleSubstitution(&g, p)
	case model.ActionAddPlayerToCourt:
		applyAddPlayer(&g, p)
	case model.ActionSetPossessionArrow:
		if p.TeamID.Valid() {
			g.PossessionArrowHolder = p.TeamID
		}
	case model.ActionManualTimerAdjust:
		g.GameClock = max(0, g.GameClock+p.TimeAdjustment)
		g.ClockIsRunning = false
	case model.ActionSetTimer:
		if p.NewTime != nil {
			g.GameClock = max(0, *p.NewTime)
			g.ClockIsRunning = false
		}
	case model.ActionTimerChange:
		applyTimerChange(&g, p.TimerState)
	case model.ActionTimerReset:
		g.GameClock = g.Settings.PeriodLength(g.CurrentQuarter)
		g.ClockIsRunning = false
	case model.ActionTick:
		applyTick(&g)
	case model.ActionGameEnd:
		g.Status = model.StatusFinished
		g.ClockIsRunning = false
	}
	return g
}

// adjustment is the signed step of a stat action: ±1 for manual corrections, +1 otherwise.
func adjustment(p model.ActionPayload) int {
	if p.ManualAdjustment < 0 {
		return -1
	}
	return 1
}

// targetStat resolves which counter a stat action touches. A scored shot without a
// manual correction is addressed by its point value; everything else by statType.
func targetStat(p model.ActionPayload) (model.StatType, bool) {
	if p.ManualAdjustment == 0 && p.PointsScored != 0 {
		return model.MadeStatFor(p.PointsScored)
	}
	return p.StatType, p.StatType.Valid()
}

func applyStat(g *model.GameState, p model.ActionPayload) {
	team := g.Team(p.TeamID)
	if team == nil || p.PlayerID == "" {
		return
	}
	stats, ok := team.PlayerStats[p.PlayerID]
	if !ok {
		return
	}
	stat, ok := targetStat(p)
	if !ok {
		return
	}

	delta := adjustment(p)
	counter := stats.Counter(stat)
	attempt, isShot := stat.AttemptFor()
	if p.ManualAdjustment != 0 {
		*counter = max(0, *counter+delta)
		if isShot {
			a := stats.Counter(attempt)
			*a = max(*counter, *a+delta)
		}
		if made, ok := stat.MadeFor(); ok {
			*counter = max(*counter, stats.Get(made))
		}
	} else {
		*counter++
		if isShot {
			*stats.Counter(attempt)++
		}
	}
	team.PlayerStats[p.PlayerID] = stats

	if stat.IsFoul() {
		addTeamFoul(team, g.CurrentQuarter, delta)
		if p.IsFoulOut && !team.IsFouledOut(p.PlayerID) {
			team.FouledOutPlayers = append(team.FouledOutPlayers, p.PlayerID)
		}
	}
	RecomputeDerived(g, p.TeamID)
}

func applyQuarterChange(g *model.GameState, p model.ActionPayload) {
	if p.NewQuarter == nil || *p.NewQuarter < 1 {
		return
	}
	oldQuarter, newQuarter := g.CurrentQuarter, *p.NewQuarter
	g.CurrentQuarter = newQuarter
	ensureFoulSlots(&g.HomeTeam, newQuarter)
	ensureFoulSlots(&g.AwayTeam, newQuarter)
	g.GameClock = g.Settings.PeriodLength(newQuarter)
	g.ClockIsRunning = false

	if newQuarter > oldQuarter {
		if n, ok := reallocatedTimeouts(g.Settings, oldQuarter, newQuarter); ok {
			g.HomeTeam.Stats.Timeouts = n
			g.AwayTeam.Stats.Timeouts = n
		}
		if g.Settings.IsOvertime(newQuarter) {
			g.HomeTeam.Stats.Timeouts += g.Settings.TimeoutsOvertime
			g.AwayTeam.Stats.Timeouts += g.Settings.TimeoutsOvertime
		}
	}

	g.HomeTeam.Stats.InBonus = false
	g.AwayTeam.Stats.InBonus = false
}

// reallocatedTimeouts returns the per-team count granted when advancing from
// oldQuarter to newQuarter, or false when the mode keeps the current count.
// per_half only fires when leaving exactly the last quarter of the first half.
func reallocatedTimeouts(s model.GameSettings, oldQuarter, newQuarter int) (int, bool) {
	t := s.Timeouts
	switch t.Mode {
	case model.TimeoutsPerQuarter:
		return t.PerQuarter, true
	case model.TimeoutsPerQuarterCustom:
		if idx := newQuarter - 1; idx < len(t.PerQuarterValues) {
			return t.PerQuarterValues[idx], true
		}
		return 0, true
	case model.TimeoutsPerHalf:
		half := s.Quarters / 2
		if oldQuarter == half && newQuarter > half {
			return t.SecondHalf, true
		}
	}
	return 0, false
}

func applyTimeout(g *model.GameState, p model.ActionPayload) {
	if g.IsTimeoutActive {
		g.IsTimeoutActive = false
		g.TimeoutCaller = ""
		g.ClockIsRunning = false
		return
	}
	team := g.Team(p.TeamID)
	if team == nil || team.Stats.Timeouts <= 0 {
		return
	}
	team.Stats.Timeouts--
	g.ClockIsRunning = false
	g.IsTimeoutActive = true
	g.TimeoutClock = g.Settings.TimeoutLength
	g.TimeoutCaller = p.TeamID
}

func applySubstitution(g *model.GameState, p model.ActionPayload) {
	team := g.Team(p.TeamID)
	if team == nil || p.PlayerInID == "" || p.PlayerOutID == "" {
		return
	}
	if idx := slices.Index(team.PlayersOnCourt, p.PlayerOutID); idx >= 0 {
		team.PlayersOnCourt[idx] = p.PlayerInID
	}
	capOnCourt(team)
}

// applyMultipleSubstitution adds at most as many incoming players as were removed;
// surplus incoming ids are dropped.
func applyMultipleSubstitution(g *model.GameState, p model.ActionPayload) {
	team := g.Team(p.TeamID)
	if team == nil {
		return
	}
	onCourt := make([]string, 0, model.MaxPlayersOnCourt)
	removed := 0
	for _, id := range team.PlayersOnCourt {
		if slices.Contains(p.PlayersOutIDs, id) {
			removed++
			continue
		}
		onCourt = append(onCourt, id)
	}
	onCourt = append(onCourt, p.PlayersInIDs[:min(removed, len(p.PlayersInIDs))]...)
	team.PlayersOnCourt = onCourt
	capOnCourt(team)
}

func applyAddPlayer(g *model.GameState, p model.ActionPayload) {
	team := g.Team(p.TeamID)
	if team == nil || p.PlayerInID == "" {
		return
	}
	if len(team.PlayersOnCourt) < model.MaxPlayersOnCourt && !team.IsOnCourt(p.PlayerInID) {
		team.PlayersOnCourt = append(team.PlayersOnCourt, p.PlayerInID)
	}
}

// applyTimerChange keeps the game clock stopped while a timeout runs.
func applyTimerChange(g *model.GameState, s model.TimerState) {
	switch s {
	case model.TimerPlay:
		if !g.IsTimeoutActive {
			g.ClockIsRunning = true
		}
	case model.TimerPause:
		g.ClockIsRunning = false
	}
}

// applyTick advances simulated time by one second. A running timeout suppresses the game clock.
func applyTick(g *model.GameState) {
	switch {
	case g.IsTimeoutActive:
		g.TimeoutClock = max(0, g.TimeoutClock-1)
		if g.TimeoutClock == 0 {
			g.IsTimeoutActive = false
			g.TimeoutCaller = ""
		}
	case g.ClockIsRunning:
		g.GameClock = max(0, g.GameClock-1)
		if g.GameClock == 0 {
			g.ClockIsRunning = false
		}
	}
}

func capOnCourt(team *model.TeamInGame) {
	if len(team.PlayersOnCourt) > model.MaxPlayersOnCourt {
		team.PlayersOnCourt = team.PlayersOnCourt[:model.MaxPlayersOnCourt]
	}
}
