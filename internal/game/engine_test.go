package game_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/courtside/internal/game"
	"github.com/maxviazov/courtside/internal/model"
)

func TestScoreFoulOutAndUndo(t *testing.T) {
	e := newEngine(t)
	initial := newGame(game.DefaultSettings())

	g := e.Apply(initial, score(model.HomeTeam, ana, 2), true)
	s := g.HomeTeam.PlayerStats[ana]
	assert.Equal(t, 1, s.TwoPM)
	assert.Equal(t, 1, s.TwoPA)
	assert.Equal(t, 2, s.PTS)
	assert.Equal(t, 2, g.HomeTeam.Stats.Score)

	for i := 1; i <= 5; i++ {
		g = e.Apply(g, stat(model.HomeTeam, ana, model.StatPF), true)
		last := g.ActionLog[len(g.ActionLog)-1]
		assert.Equal(t, i == 5, last.Payload.IsFoulOut, "foul %d", i)
	}
	assert.Equal(t, []string{ana}, g.HomeTeam.FouledOutPlayers)
	assert.True(t, g.HomeTeam.IsOnCourt(ana), "a fouled-out player stays on court until substituted")
	assert.Contains(t, g.ActionLog[5].Description, "FOULED OUT")

	undone, ok := game.Undo(initial, g)
	require.True(t, ok)
	assert.Equal(t, 4, undone.HomeTeam.PlayerStats[ana].PF)
	assert.Empty(t, undone.HomeTeam.FouledOutPlayers)
	assert.Equal(t, 2, undone.HomeTeam.Stats.Score)
	assert.Len(t, undone.ActionLog, 5)
}

func TestFoulOutFlaggedOnlyOnce(t *testing.T) {
	e := newEngine(t)
	g := newGame(game.DefaultSettings())
	for i := 0; i < 7; i++ {
		g = e.Apply(g, stat(model.HomeTeam, ana, model.StatUF), true)
	}
	flagged := 0
	for _, entry := range g.ActionLog {
		if entry.Payload.IsFoulOut {
			flagged++
		}
	}
	assert.Equal(t, 1, flagged)
	assert.True(t, g.ActionLog[4].Payload.IsFoulOut)
	assert.Equal(t, []string{ana}, g.HomeTeam.FouledOutPlayers)

	// a correction below the limit does not bring the player back
	g = e.Apply(g, correction(model.HomeTeam, ana, model.StatUF, -1), true)
	g = e.Apply(g, correction(model.HomeTeam, ana, model.StatUF, -1), true)
	g = e.Apply(g, correction(model.HomeTeam, ana, model.StatUF, -1), true)
	assert.Equal(t, 4, g.HomeTeam.PlayerStats[ana].UF)
	assert.Equal(t, []string{ana}, g.HomeTeam.FouledOutPlayers)
}

func TestTechnicalFoulOut(t *testing.T) {
	e := newEngine(t)
	g := newGame(game.DefaultSettings())
	g = e.Apply(g, stat(model.AwayTeam, zoe, model.StatTF), true)
	assert.False(t, g.ActionLog[0].Payload.IsFoulOut)
	g = e.Apply(g, stat(model.AwayTeam, zoe, model.StatTF), true)
	assert.True(t, g.ActionLog[1].Payload.IsFoulOut)
	assert.Equal(t, []string{zoe}, g.AwayTeam.FouledOutPlayers)
}

func TestFoulOutDisabled(t *testing.T) {
	settings := game.DefaultSettings()
	settings.AllowFoulOut = false
	e := newEngine(t)
	g := newGame(settings)
	for i := 0; i < 6; i++ {
		g = e.Apply(g, stat(model.HomeTeam, ana, model.StatPF), true)
	}
	assert.Empty(t, g.HomeTeam.FouledOutPlayers)
	assert.Equal(t, 6, g.HomeTeam.PlayerStats[ana].PF)
}

func TestClockRunsOutAfterFullQuarterOfTicks(t *testing.T) {
	settings := game.DefaultSettings()
	settings.QuarterLength = 600
	e := newEngine(t)
	g := e.Apply(newGame(settings), timer(model.TimerPlay), true)
	require.True(t, g.ClockIsRunning)

	for i := 1; i <= 599; i++ {
		g = e.Apply(g, tick, false)
	}
	assert.Equal(t, 1, g.GameClock)
	assert.True(t, g.ClockIsRunning)

	g = e.Apply(g, tick, false)
	assert.Equal(t, 0, g.GameClock)
	assert.False(t, g.ClockIsRunning)

	g = e.Apply(g, tick, false)
	assert.Equal(t, 0, g.GameClock)
	assert.Len(t, g.ActionLog, 1, "ticks are never logged")
}

func TestTimeoutLifecycle(t *testing.T) {
	e := newEngine(t)
	g := applyAll(e, newGame(game.DefaultSettings()), timer(model.TimerPlay), tick)
	require.Equal(t, 599, g.GameClock)

	g = e.Apply(g, timeout(model.HomeTeam), true)
	assert.True(t, g.IsTimeoutActive)
	assert.False(t, g.ClockIsRunning)
	assert.Equal(t, 60, g.TimeoutClock)
	assert.Equal(t, model.HomeTeam, g.TimeoutCaller)
	assert.Equal(t, 1, g.HomeTeam.Stats.Timeouts)

	// the game clock cannot be started during a timeout
	g = e.Apply(g, timer(model.TimerPlay), true)
	assert.False(t, g.ClockIsRunning)

	for i := 0; i < 59; i++ {
		g = e.Apply(g, tick, false)
	}
	assert.Equal(t, 1, g.TimeoutClock)
	assert.Equal(t, 599, g.GameClock, "timeout ticks do not touch the game clock")

	g = e.Apply(g, tick, false)
	assert.False(t, g.IsTimeoutActive)
	assert.Equal(t, 0, g.TimeoutClock)
	assert.Empty(t, g.TimeoutCaller)

	g = e.Apply(g, timeout(model.HomeTeam), true)
	require.True(t, g.IsTimeoutActive)
	assert.Equal(t, 0, g.HomeTeam.Stats.Timeouts)

	// calling again while active cancels without spending another timeout
	g = e.Apply(g, timeout(model.AwayTeam), true)
	assert.False(t, g.IsTimeoutActive)
	assert.Equal(t, 2, g.AwayTeam.Stats.Timeouts)
	assert.True(t, g.ActionLog[len(g.ActionLog)-1].Payload.TimeoutActive, "cancel is logged with the timeout running")

	// no timeouts left is a no-op
	g = e.Apply(g, timeout(model.HomeTeam), true)
	assert.False(t, g.IsTimeoutActive)
	assert.Equal(t, 0, g.HomeTeam.Stats.Timeouts)
}

func TestBonusTracksOpponentFoulsPerQuarter(t *testing.T) {
	e := newEngine(t)
	g := newGame(game.DefaultSettings())
	for i := 0; i < 4; i++ {
		g = e.Apply(g, stat(model.AwayTeam, yan, model.StatPF), true)
	}
	assert.False(t, g.HomeTeam.Stats.InBonus)

	g = e.Apply(g, stat(model.AwayTeam, zoe, model.StatPF), true)
	assert.True(t, g.HomeTeam.Stats.InBonus)
	assert.False(t, g.AwayTeam.Stats.InBonus)
	assert.Equal(t, 5, g.AwayTeam.FoulsInQuarter(1))

	g = e.Apply(g, correction(model.AwayTeam, zoe, model.StatPF, -1), true)
	assert.False(t, g.HomeTeam.Stats.InBonus)

	g = e.Apply(g, stat(model.AwayTeam, zoe, model.StatTF), true)
	assert.True(t, g.HomeTeam.Stats.InBonus, "technical fouls count toward the team total")

	g = e.Apply(g, quarter(2), true)
	assert.False(t, g.HomeTeam.Stats.InBonus)
	assert.Equal(t, 0, g.AwayTeam.FoulsInQuarter(2))

	g = e.Apply(g, stat(model.AwayTeam, zoe, model.StatPF), true)
	assert.False(t, g.HomeTeam.Stats.InBonus)
	assert.Equal(t, 5, g.AwayTeam.FoulsInQuarter(1))
}

func TestQuarterChange(t *testing.T) {
	settings := game.DefaultSettings()
	e := newEngine(t)
	g := applyAll(e, newGame(settings), timer(model.TimerPlay), tick, tick)

	g = e.Apply(g, quarter(2), true)
	assert.Equal(t, 2, g.CurrentQuarter)
	assert.Equal(t, settings.QuarterLength, g.GameClock)
	assert.False(t, g.ClockIsRunning)

	g = e.Apply(g, quarter(5), true)
	assert.Equal(t, settings.OvertimeLength, g.GameClock)

	g = e.Apply(g, model.Action{Type: model.ActionQuarterChange}, true)
	assert.Equal(t, 5, g.CurrentQuarter, "missing newQuarter is a no-op")

	g = e.Apply(g, quarter(0), true)
	assert.Equal(t, 5, g.CurrentQuarter)

	g = e.Apply(g, quarter(30), true)
	assert.Equal(t, 30, g.CurrentQuarter)
	assert.GreaterOrEqual(t, len(g.HomeTeam.Stats.FoulsByQuarter), 30)
	g = e.Apply(g, stat(model.HomeTeam, ana, model.StatPF), true)
	assert.Equal(t, 1, g.HomeTeam.FoulsInQuarter(30))
}

func TestTimeoutAllocation(t *testing.T) {
	cases := []struct {
		name     string
		mutate   func(*model.GameSettings)
		path     []int
		initial  int
		expected int
	}{
		{
			name:     "per_half refills at halftime",
			path:     []int{2, 3},
			initial:  2,
			expected: 3,
		},
		{
			name:     "per_half keeps count inside a half",
			path:     []int{2},
			initial:  2,
			expected: 2,
		},
		{
			name:     "per_half skipped boundary never refills",
			path:     []int{3},
			initial:  2,
			expected: 2,
		},
		{
			name:     "per_half odd quarter count uses floor",
			mutate:   func(s *model.GameSettings) { s.Quarters = 3 },
			path:     []int{2},
			initial:  2,
			expected: 3,
		},
		{
			name:     "per_half overtime adds bonus to what is left",
			path:     []int{2, 3, 4, 5},
			initial:  2,
			expected: 4,
		},
		{
			name: "per_quarter refills every quarter",
			mutate: func(s *model.GameSettings) {
				s.Timeouts.Mode = model.TimeoutsPerQuarter
				s.Timeouts.PerQuarter = 2
			},
			path:     []int{2, 3},
			initial:  2,
			expected: 2,
		},
		{
			name: "per_quarter_custom reads the value of the new quarter",
			mutate: func(s *model.GameSettings) {
				s.Timeouts.Mode = model.TimeoutsPerQuarterCustom
				s.Timeouts.PerQuarterValues = []int{2, 1, 3, 0}
			},
			path:     []int{2, 3},
			initial:  2,
			expected: 3,
		},
		{
			name: "per_quarter_custom overtime without value gets only the bonus",
			mutate: func(s *model.GameSettings) {
				s.Timeouts.Mode = model.TimeoutsPerQuarterCustom
				s.Timeouts.PerQuarterValues = []int{2, 1, 3, 0}
			},
			path:     []int{5},
			initial:  2,
			expected: 1,
		},
		{
			name: "total never refills",
			mutate: func(s *model.GameSettings) {
				s.Timeouts.Mode = model.TimeoutsTotal
				s.Timeouts.Total = 5
			},
			path:     []int{2, 3, 4},
			initial:  5,
			expected: 5,
		},
		{
			name: "total overtime bonus",
			mutate: func(s *model.GameSettings) {
				s.Timeouts.Mode = model.TimeoutsTotal
				s.Timeouts.Total = 5
				s.TimeoutsOvertime = 2
			},
			path:     []int{4, 5},
			initial:  5,
			expected: 7,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			settings := game.DefaultSettings()
			if tc.mutate != nil {
				tc.mutate(&settings)
			}
			e := newEngine(t)
			g := newGame(settings)
			require.Equal(t, tc.initial, g.HomeTeam.Stats.Timeouts)
			for _, q := range tc.path {
				g = e.Apply(g, quarter(q), true)
			}
			assert.Equal(t, tc.expected, g.HomeTeam.Stats.Timeouts)
			assert.Equal(t, tc.expected, g.AwayTeam.Stats.Timeouts)
		})
	}
}

func TestGoingBackAQuarterKeepsTimeouts(t *testing.T) {
	e := newEngine(t)
	g := applyAll(e, newGame(game.DefaultSettings()), quarter(2), quarter(3), timeout(model.HomeTeam))
	require.Equal(t, 2, g.HomeTeam.Stats.Timeouts)

	g = e.Apply(g, quarter(2), true)
	assert.Equal(t, 2, g.CurrentQuarter)
	assert.Equal(t, 2, g.HomeTeam.Stats.Timeouts)
}

func TestSubstitutions(t *testing.T) {
	e := newEngine(t)
	g := newGame(game.DefaultSettings())
	require.Equal(t, []string{ana, ben, cruz, dani, eli}, g.HomeTeam.PlayersOnCourt)

	g = e.Apply(g, model.Action{Type: model.ActionSubstitution, Payload: model.ActionPayload{
		TeamID: model.HomeTeam, PlayerInID: fay, PlayerOutID: cruz,
	}}, true)
	assert.Equal(t, []string{ana, ben, fay, dani, eli}, g.HomeTeam.PlayersOnCourt)

	before := g.HomeTeam.PlayersOnCourt
	g = e.Apply(g, model.Action{Type: model.ActionSubstitution, Payload: model.ActionPayload{
		TeamID: model.HomeTeam, PlayerInID: gus, PlayerOutID: cruz,
	}}, true)
	assert.Equal(t, before, g.HomeTeam.PlayersOnCourt, "outgoing player not on court")

	g = e.Apply(g, model.Action{Type: model.ActionMultipleSubstitution, Payload: model.ActionPayload{
		TeamID:        model.HomeTeam,
		PlayersOutIDs: []string{ana, "p-ghost"},
		PlayersInIDs:  []string{cruz, gus},
	}}, true)
	assert.Equal(t, []string{ben, fay, dani, eli, cruz}, g.HomeTeam.PlayersOnCourt, "only as many incoming as removed")

	g = e.Apply(g, model.Action{Type: model.ActionMultipleSubstitution, Payload: model.ActionPayload{
		TeamID:        model.HomeTeam,
		PlayersOutIDs: []string{ben, fay},
		PlayersInIDs:  []string{ana},
	}}, true)
	assert.Equal(t, []string{dani, eli, cruz, ana}, g.HomeTeam.PlayersOnCourt)

	g = e.Apply(g, model.Action{Type: model.ActionAddPlayerToCourt, Payload: model.ActionPayload{TeamID: model.HomeTeam, PlayerInID: ana}}, true)
	assert.Len(t, g.HomeTeam.PlayersOnCourt, 4, "already on court")

	g = e.Apply(g, model.Action{Type: model.ActionAddPlayerToCourt, Payload: model.ActionPayload{TeamID: model.HomeTeam, PlayerInID: gus}}, true)
	assert.Len(t, g.HomeTeam.PlayersOnCourt, 5)

	g = e.Apply(g, model.Action{Type: model.ActionAddPlayerToCourt, Payload: model.ActionPayload{TeamID: model.HomeTeam, PlayerInID: ben}}, true)
	assert.Len(t, g.HomeTeam.PlayersOnCourt, 5, "court is full")
	assert.False(t, g.HomeTeam.IsOnCourt(ben))
}

func TestManualCorrectionsClamp(t *testing.T) {
	e := newEngine(t)
	g := newGame(game.DefaultSettings())

	g = e.Apply(g, correction(model.HomeTeam, ana, model.StatAST, -1), true)
	assert.Equal(t, 0, g.HomeTeam.PlayerStats[ana].AST)

	g = e.Apply(g, correction(model.HomeTeam, ana, model.Stat3PM, 1), true)
	s := g.HomeTeam.PlayerStats[ana]
	assert.Equal(t, 1, s.ThreePM)
	assert.Equal(t, 1, s.ThreePA)
	assert.Equal(t, 3, g.HomeTeam.Stats.Score)

	g = e.Apply(g, correction(model.HomeTeam, ana, model.Stat3PA, -1), true)
	assert.Equal(t, 1, g.HomeTeam.PlayerStats[ana].ThreePA, "attempts never drop below makes")

	g = e.Apply(g, correction(model.HomeTeam, ana, model.Stat3PM, -1), true)
	s = g.HomeTeam.PlayerStats[ana]
	assert.Equal(t, 0, s.ThreePM)
	assert.Equal(t, 0, s.ThreePA)
	assert.Equal(t, 0, g.HomeTeam.Stats.Score)

	g = e.Apply(g, correction(model.HomeTeam, ana, model.StatPF, -1), true)
	assert.Equal(t, 0, g.HomeTeam.FoulsInQuarter(1))
}

func TestStatUpdates(t *testing.T) {
	e := newEngine(t)
	g := applyAll(e, newGame(game.DefaultSettings()),
		score(model.HomeTeam, ana, 3),
		score(model.HomeTeam, ana, 1),
		stat(model.HomeTeam, ana, model.Stat2PA),
		stat(model.HomeTeam, ana, model.StatOREB),
		stat(model.HomeTeam, ana, model.StatDREB),
		stat(model.HomeTeam, ana, model.StatDREB),
		stat(model.HomeTeam, ben, model.Stat2PM),
		stat(model.AwayTeam, zoe, model.StatSTL),
	)
	s := g.HomeTeam.PlayerStats[ana]
	assert.Equal(t, 4, s.PTS)
	assert.Equal(t, 3, s.REB)
	assert.Equal(t, 1, s.TwoPA)
	assert.Equal(t, 0, s.TwoPM)
	assert.Equal(t, 1, g.HomeTeam.PlayerStats[ben].TwoPA, "made shots always count an attempt")
	assert.Equal(t, 6, g.HomeTeam.Stats.Score)
	assert.Equal(t, 1, g.AwayTeam.PlayerStats[zoe].STL)
	assert.Equal(t, 0, g.AwayTeam.Stats.Score)
}

func TestMalformedActionsAreNoOps(t *testing.T) {
	e := newEngine(t)
	base := newGame(game.DefaultSettings())
	actions := []model.Action{
		stat(model.HomeTeam, "p-ghost", model.StatAST),
		stat(model.AwayTeam, ana, model.StatAST),
		stat("", ana, model.StatAST),
		stat(model.HomeTeam, ana, ""),
		score(model.HomeTeam, ana, 4),
		{Type: model.ActionSubstitution, Payload: model.ActionPayload{TeamID: model.HomeTeam, PlayerInID: fay}},
		{Type: model.ActionAddPlayerToCourt, Payload: model.ActionPayload{TeamID: "bench"}},
		{Type: model.ActionSetPossessionArrow},
		{Type: model.ActionSetTimer},
	}
	for _, a := range actions {
		g := e.Apply(base, a, true)
		require.Len(t, g.ActionLog, 1)
		g.ActionLog = base.ActionLog
		assert.Equal(t, base, g, "%s %+v", a.Type, a.Payload)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	e := newEngine(t)
	g := applyAll(e, newGame(game.DefaultSettings()), score(model.HomeTeam, ana, 2), stat(model.AwayTeam, zoe, model.StatPF))
	before, err := json.Marshal(g)
	require.NoError(t, err)

	_ = applyAll(e, g,
		score(model.HomeTeam, ana, 3),
		stat(model.HomeTeam, ana, model.StatPF),
		model.Action{Type: model.ActionMultipleSubstitution, Payload: model.ActionPayload{TeamID: model.HomeTeam, PlayersOutIDs: []string{ana}, PlayersInIDs: []string{fay}}},
		quarter(2),
		timeout(model.AwayTeam),
		tick,
	)

	after, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestTimerActions(t *testing.T) {
	settings := game.DefaultSettings()
	e := newEngine(t)
	g := applyAll(e, newGame(settings), timer(model.TimerPlay))

	g = e.Apply(g, model.Action{Type: model.ActionManualTimerAdjust, Payload: model.ActionPayload{TimeAdjustment: -30}}, true)
	assert.Equal(t, 570, g.GameClock)
	assert.False(t, g.ClockIsRunning)

	g = e.Apply(g, model.Action{Type: model.ActionManualTimerAdjust, Payload: model.ActionPayload{TimeAdjustment: -9999}}, true)
	assert.Equal(t, 0, g.GameClock)

	g = e.Apply(g, model.Action{Type: model.ActionSetTimer, Payload: model.ActionPayload{NewTime: num(-5)}}, true)
	assert.Equal(t, 0, g.GameClock)

	g = applyAll(e, g, timer(model.TimerPlay), model.Action{Type: model.ActionSetTimer, Payload: model.ActionPayload{NewTime: num(125)}})
	assert.Equal(t, 125, g.GameClock)
	assert.False(t, g.ClockIsRunning)
	assert.Equal(t, "Clock set to 02:05.", g.ActionLog[len(g.ActionLog)-1].Description)

	g = applyAll(e, g, model.Action{Type: model.ActionTimerReset})
	assert.Equal(t, settings.QuarterLength, g.GameClock)

	g = applyAll(e, g, quarter(5), model.Action{Type: model.ActionSetTimer, Payload: model.ActionPayload{NewTime: num(3)}}, model.Action{Type: model.ActionTimerReset})
	assert.Equal(t, settings.OvertimeLength, g.GameClock)

	g = applyAll(e, g, timer(model.TimerPlay), timer(model.TimerPause))
	assert.False(t, g.ClockIsRunning)
}

func TestPossessionArrowAndGameEnd(t *testing.T) {
	e := newEngine(t)
	g := applyAll(e, newGame(game.DefaultSettings()),
		model.Action{Type: model.ActionSetPossessionArrow, Payload: model.ActionPayload{TeamID: model.AwayTeam}},
		timer(model.TimerPlay),
		model.Action{Type: model.ActionGameEnd},
	)
	assert.Equal(t, model.AwayTeam, g.PossessionArrowHolder)
	assert.Equal(t, model.StatusFinished, g.Status)
	assert.False(t, g.ClockIsRunning)
	assert.Equal(t, "End of game.", g.ActionLog[2].Description)
	assert.Equal(t, "Possession arrow to Owls.", g.ActionLog[0].Description)
}

func TestLogEntrySnapshotsStateBeforeAction(t *testing.T) {
	e := newEngine(t)
	g := applyAll(e, newGame(game.DefaultSettings()),
		score(model.HomeTeam, ana, 2),
		timer(model.TimerPlay), tick, tick, tick,
		score(model.AwayTeam, zoe, 3),
		quarter(2),
	)
	require.Len(t, g.ActionLog, 4)

	first := g.ActionLog[0]
	assert.Equal(t, model.ActionScoreUpdate, first.Type)
	assert.Equal(t, 1, first.Payload.Quarter)
	assert.Equal(t, 0, first.Payload.HomeScore)
	assert.Equal(t, 600, first.Payload.GameClock)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "2-point field goal by Ana (#4)", first.Description)

	third := g.ActionLog[2]
	assert.Equal(t, 2, third.Payload.HomeScore)
	assert.Equal(t, 0, third.Payload.AwayScore)
	assert.Equal(t, 597, third.Payload.GameClock)

	last := g.ActionLog[3]
	assert.Equal(t, 1, last.Payload.Quarter)
	assert.Equal(t, 3, last.Payload.AwayScore)
	assert.Equal(t, "Start of period 2.", last.Description)
}
