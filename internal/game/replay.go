package game

import (
	"fmt"
	"maps"
	"slices"

	"github.com/maxviazov/courtside/internal/model"
)

// Baseline strips every derived or mutable counter from initial, keeping rosters,
// settings, court state, quarter and clock. The log is dropped.
func Baseline(initial model.GameState) model.GameState {
	b := initial.Clone()
	for _, team := range []*model.TeamInGame{&b.HomeTeam, &b.AwayTeam} {
		resetCounters(team, b.Settings.Quarters)
		team.FouledOutPlayers = []string{}
	}
	b.PossessionArrowHolder = ""
	b.ActionLog = nil
	return b
}

// Recalculate rebuilds a state by folding the reducer over log from the baseline of
// initial. The log is installed verbatim afterwards. A non-nil clock overwrites the
// replayed clock fields so an undo does not move the live clock.
func Recalculate(initial model.GameState, log []model.GameAction, clock *model.ClockFields) model.GameState {
	g := Baseline(initial)
	for _, entry := range log {
		expireUnloggedTimeout(&g, entry)
		g = Apply(g, entry.Action())
	}
	g.ActionLog = slices.Clone(log)
	if g.ActionLog == nil {
		g.ActionLog = []model.GameAction{}
	}
	if clock != nil {
		g.SetClock(*clock)
	}
	return g
}

// expireUnloggedTimeout ends a replayed timeout that had already run out on the
// live clock when entry was logged. Ticks are not logged, so the entry's timeout
// snapshot is the only record of that expiry.
func expireUnloggedTimeout(g *model.GameState, entry model.GameAction) {
	if g.IsTimeoutActive && !entry.Payload.TimeoutActive {
		g.IsTimeoutActive = false
		g.TimeoutClock = 0
		g.TimeoutCaller = ""
	}
}

// Undo drops the last log entry of current and replays the rest from initial,
// keeping current's clock. It reports false when there is nothing to undo.
func Undo(initial, current model.GameState) (model.GameState, bool) {
	if len(current.ActionLog) == 0 {
		return current, false
	}
	clock := current.Clock()
	return Recalculate(initial, current.ActionLog[:len(current.ActionLog)-1], &clock), true
}

// Diff lists the derived fields where a and b disagree. Clock fields and log entry
// ids/timestamps are ignored; an empty result means replay-equivalent states.
func Diff(a, b model.GameState) []string {
	var out []string
	add := func(field string, av, bv any) {
		out = append(out, fmt.Sprintf("%s: %v != %v", field, av, bv))
	}
	if a.Status != b.Status {
		add("status", a.Status, b.Status)
	}
	if a.CurrentQuarter != b.CurrentQuarter {
		add("currentQuarter", a.CurrentQuarter, b.CurrentQuarter)
	}
	if a.PossessionArrowHolder != b.PossessionArrowHolder {
		add("possessionArrowHolder", a.PossessionArrowHolder, b.PossessionArrowHolder)
	}
	for _, id := range []model.TeamID{model.HomeTeam, model.AwayTeam} {
		ta, tb := a.Team(id), b.Team(id)
		prefix := string(id) + "."
		if ta.Stats.Score != tb.Stats.Score {
			add(prefix+"score", ta.Stats.Score, tb.Stats.Score)
		}
		if ta.Stats.Timeouts != tb.Stats.Timeouts {
			add(prefix+"timeouts", ta.Stats.Timeouts, tb.Stats.Timeouts)
		}
		if ta.Stats.InBonus != tb.Stats.InBonus {
			add(prefix+"inBonus", ta.Stats.InBonus, tb.Stats.InBonus)
		}
		if !slices.Equal(trimZeros(ta.Stats.FoulsByQuarter), trimZeros(tb.Stats.FoulsByQuarter)) {
			add(prefix+"foulsByQuarter", ta.Stats.FoulsByQuarter, tb.Stats.FoulsByQuarter)
		}
		if !maps.Equal(ta.PlayerStats, tb.PlayerStats) {
			add(prefix+"playerStats", ta.PlayerStats, tb.PlayerStats)
		}
		if !slices.Equal(ta.PlayersOnCourt, tb.PlayersOnCourt) {
			add(prefix+"playersOnCourt", ta.PlayersOnCourt, tb.PlayersOnCourt)
		}
		if !slices.Equal(ta.FouledOutPlayers, tb.FouledOutPlayers) {
			add(prefix+"fouledOutPlayers", ta.FouledOutPlayers, tb.FouledOutPlayers)
		}
	}
	if len(a.ActionLog) != len(b.ActionLog) {
		add("gameLog.len", len(a.ActionLog), len(b.ActionLog))
	}
	return out
}

func trimZeros(s []int) []int {
	end := len(s)
	for end > 0 && s[end-1] == 0 {
		end--
	}
	return s[:end]
}
