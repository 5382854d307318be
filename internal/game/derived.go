package game

import "github.com/maxviazov/courtside/internal/model"

// extraFoulSlots pads the fouls-by-quarter array so overtime periods have a slot.
const extraFoulSlots = 20

// RecomputeDerived refreshes every player's PTS/REB and the score of the given team,
// then the bonus flags of both teams. Team A is in the bonus once team B's fouls in
// the current quarter reach the configured threshold.
func RecomputeDerived(g *model.GameState, id model.TeamID) {
	if team := g.Team(id); team != nil {
		total := 0
		for pid, s := range team.PlayerStats {
			s.Recompute()
			team.PlayerStats[pid] = s
			total += s.PTS
		}
		team.Stats.Score = total
	}
	recomputeBonus(g)
}

func recomputeBonus(g *model.GameState) {
	if g.CurrentQuarter < 1 {
		return
	}
	threshold := g.Settings.FoulsToBonus
	homeFouls := g.HomeTeam.FoulsInQuarter(g.CurrentQuarter)
	awayFouls := g.AwayTeam.FoulsInQuarter(g.CurrentQuarter)
	g.HomeTeam.Stats.InBonus = awayFouls >= threshold
	g.AwayTeam.Stats.InBonus = homeFouls >= threshold
}

// reachesFoulOut reports whether a foul action takes a player, who has not fouled out
// yet, to either configured limit. The check uses the counts after the action's delta.
func reachesFoulOut(g *model.GameState, p model.ActionPayload) bool {
	stat, ok := targetStat(p)
	if !ok || !stat.IsFoul() {
		return false
	}
	team := g.Team(p.TeamID)
	if team == nil || p.PlayerID == "" || team.IsFouledOut(p.PlayerID) {
		return false
	}
	stats, ok := team.PlayerStats[p.PlayerID]
	if !ok {
		return false
	}

	delta := adjustment(p)
	personal, technical := stats.PersonalFouls(), stats.TF
	if stat.IsPersonalFoul() {
		personal += delta
	} else {
		technical += delta
	}

	s := g.Settings
	if s.AllowFoulOut && personal >= s.FoulsToFoulOut {
		return true
	}
	return s.AllowTechnicalFoulOut && technical >= s.TechnicalFoulsToFoulOut
}

// addTeamFoul applies a signed delta to the team's fouls in a 1-based quarter, floored at 0.
func addTeamFoul(team *model.TeamInGame, quarter, delta int) {
	if quarter < 1 {
		return
	}
	ensureFoulSlots(team, quarter)
	idx := quarter - 1
	team.Stats.FoulsByQuarter[idx] = max(0, team.Stats.FoulsByQuarter[idx]+delta)
}

// ensureFoulSlots grows the fouls array so index quarter-1 is valid.
func ensureFoulSlots(team *model.TeamInGame, quarter int) {
	if missing := quarter - len(team.Stats.FoulsByQuarter); missing > 0 {
		team.Stats.FoulsByQuarter = append(team.Stats.FoulsByQuarter, make([]int, missing)...)
	}
}
