package game

import (
	"fmt"

	"github.com/maxviazov/courtside/internal/model"
)

var statLabels = map[model.StatType]string{
	model.StatFTM:  "Free throw made",
	model.StatFTA:  "Free throw missed",
	model.Stat2PM:  "2-point field goal",
	model.Stat2PA:  "2-point shot missed",
	model.Stat3PM:  "3-point field goal",
	model.Stat3PA:  "3-point shot missed",
	model.StatOREB: "Offensive rebound",
	model.StatDREB: "Defensive rebound",
	model.StatAST:  "Assist",
	model.StatSTL:  "Steal",
	model.StatBLK:  "Block",
	model.StatTOV:  "Turnover",
	model.StatPF:   "Personal foul",
	model.StatUF:   "Unsportsmanlike foul",
	model.StatTF:   "Technical foul",
}

// StatLabel is the human-readable name of a counter.
func StatLabel(s model.StatType) string {
	if l, ok := statLabels[s]; ok {
		return l
	}
	return string(s)
}

// describe renders the log line for an action, resolving names against the
// state the action was applied to.
func describe(g *model.GameState, t model.ActionType, p model.ActionPayload) string {
	team := g.Team(p.TeamID)
	teamName := ""
	if team != nil {
		teamName = team.Name
	}
	playerName := func(id string) string {
		if team == nil || id == "" {
			return ""
		}
		if pl, ok := team.Player(id); ok {
			return pl.Name
		}
		return id
	}

	switch t {
	case model.ActionScoreUpdate, model.ActionStatUpdate:
		stat, ok := targetStat(p)
		if team == nil || !ok {
			return "Stat update"
		}
		pl, found := team.Player(p.PlayerID)
		if !found {
			return "Stat update"
		}
		desc := StatLabel(stat) + " by " + pl.Name
		if pl.Number != nil {
			desc += fmt.Sprintf(" (#%d)", *pl.Number)
		}
		if p.ManualAdjustment != 0 {
			desc = fmt.Sprintf("Correction %+d: %s", adjustment(p), desc)
		}
		if p.IsFoulOut {
			desc += " (FOULED OUT)"
		}
		return desc
	case model.ActionSubstitution:
		return fmt.Sprintf("Substitution for %s: %s in, %s out.", teamName, playerName(p.PlayerInID), playerName(p.PlayerOutID))
	case model.ActionMultipleSubstitution:
		return fmt.Sprintf("Multiple substitution for %s (%d changes).", teamName, len(p.PlayersInIDs))
	case model.ActionAddPlayerToCourt:
		return fmt.Sprintf("%s enters the court for %s.", playerName(p.PlayerInID), teamName)
	case model.ActionTimeout:
		if g.IsTimeoutActive {
			return "Timeout ended."
		}
		return fmt.Sprintf("Timeout called by %s.", teamName)
	case model.ActionQuarterChange:
		if p.NewQuarter == nil {
			return "Period change."
		}
		if q := *p.NewQuarter; g.Settings.IsOvertime(q) {
			return fmt.Sprintf("Start of overtime %d.", q-g.Settings.Quarters)
		}
		return fmt.Sprintf("Start of period %d.", *p.NewQuarter)
	case model.ActionGameEnd:
		return "End of game."
	case model.ActionTimerChange:
		switch p.TimerState {
		case model.TimerPlay:
			return "Clock started."
		case model.TimerPause:
			return "Clock paused."
		}
		return "Game action."
	case model.ActionTimerReset:
		return "Period clock reset."
	case model.ActionManualTimerAdjust:
		return fmt.Sprintf("Clock adjusted manually by %+ds.", p.TimeAdjustment)
	case model.ActionSetTimer:
		secs := 0
		if p.NewTime != nil {
			secs = max(0, *p.NewTime)
		}
		return "Clock set to " + FormatClock(secs) + "."
	case model.ActionSetPossessionArrow:
		return fmt.Sprintf("Possession arrow to %s.", teamName)
	case model.ActionTick:
		return "Clock tick."
	default:
		return "Game action."
	}
}

// FormatClock renders seconds as MM:SS.
func FormatClock(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
