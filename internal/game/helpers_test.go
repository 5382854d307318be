package game_test

import (
	"testing"

	"github.com/coder/quartz"

	"github.com/maxviazov/courtside/internal/game"
	"github.com/maxviazov/courtside/internal/model"
)

const (
	ana  = "p-ana"
	ben  = "p-ben"
	cruz = "p-cruz"
	dani = "p-dani"
	eli  = "p-eli"
	fay  = "p-fay"
	gus  = "p-gus"

	zoe = "p-zoe"
	yan = "p-yan"
)

func num(n int) *int { return &n }

func homeRoster() []model.Player {
	return []model.Player{
		{ID: ana, Name: "Ana", Number: num(4), Position: "PG"},
		{ID: ben, Name: "Ben", Number: num(7)},
		{ID: cruz, Name: "Cruz", Number: num(9)},
		{ID: dani, Name: "Dani", Number: num(11)},
		{ID: eli, Name: "Eli", Number: num(13)},
		{ID: fay, Name: "Fay", Number: num(21)},
		{ID: gus, Name: "Gus"},
	}
}

func awayRoster() []model.Player {
	return []model.Player{
		{ID: zoe, Name: "Zoe", Number: num(1)},
		{ID: yan, Name: "Yan", Number: num(2)},
	}
}

func newGame(settings model.GameSettings) model.GameState {
	return game.NewGame("game-1", 1700000000000, settings,
		model.TeamInGame{Name: "Sharks", Players: homeRoster()},
		model.TeamInGame{Name: "Owls", Players: awayRoster()},
	)
}

func newEngine(t *testing.T) *game.Engine {
	t.Helper()
	return game.NewEngine(quartz.NewMock(t))
}

func stat(team model.TeamID, player string, s model.StatType) model.Action {
	return model.Action{Type: model.ActionStatUpdate, Payload: model.ActionPayload{TeamID: team, PlayerID: player, StatType: s}}
}

func score(team model.TeamID, player string, points int) model.Action {
	return model.Action{Type: model.ActionScoreUpdate, Payload: model.ActionPayload{TeamID: team, PlayerID: player, PointsScored: points}}
}

func correction(team model.TeamID, player string, s model.StatType, adj int) model.Action {
	return model.Action{Type: model.ActionStatUpdate, Payload: model.ActionPayload{TeamID: team, PlayerID: player, StatType: s, ManualAdjustment: adj}}
}

func quarter(q int) model.Action {
	return model.Action{Type: model.ActionQuarterChange, Payload: model.ActionPayload{NewQuarter: num(q)}}
}

func timer(s model.TimerState) model.Action {
	return model.Action{Type: model.ActionTimerChange, Payload: model.ActionPayload{TimerState: s}}
}

func timeout(team model.TeamID) model.Action {
	return model.Action{Type: model.ActionTimeout, Payload: model.ActionPayload{TeamID: team}}
}

var tick = model.Action{Type: model.ActionTick}

// applyAll logs every action except ticks, the way the live service does.
func applyAll(e *game.Engine, g model.GameState, actions ...model.Action) model.GameState {
	for _, a := range actions {
		g = e.Apply(g, a, a.Type != model.ActionTick)
	}
	return g
}

func sumPoints(team model.TeamInGame) int {
	total := 0
	for _, s := range team.PlayerStats {
		total += s.FTM + 2*s.TwoPM + 3*s.ThreePM
	}
	return total
}
