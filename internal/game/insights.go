package game

import "github.com/maxviazov/courtside/internal/model"

// Efficiency is the classic EFF rating: positive contributions minus misses, turnovers and fouls.
func Efficiency(s model.PlayerStats) int {
	missedFG := (s.TwoPA + s.ThreePA) - (s.TwoPM + s.ThreePM)
	missedFT := s.FTA - s.FTM
	fouls := s.PF + s.UF + s.TF
	return s.PTS + s.REB + s.AST + s.STL + s.BLK - (missedFG + missedFT + s.TOV + fouls)
}

// FollowUpKind names the secondary stat a scorer is prompted for after a primary action.
type FollowUpKind string

const (
	FollowUpAssist FollowUpKind = "assist"
	FollowUpSteal  FollowUpKind = "steal"
	FollowUpBlock  FollowUpKind = "block"
)

// FollowUp tells the presentation layer which secondary stat to ask for and for which team.
type FollowUp struct {
	Kind            FollowUpKind   `json:"kind"`
	PrimaryActionID string         `json:"primaryActionId"`
	PrimaryPlayerID string         `json:"primaryPlayerId"`
	TeamID          model.TeamID   `json:"teamId"`
	Stat            model.StatType `json:"stat"`
}

// FollowUpFor derives the prompt raised after a logged action, if any: an assist for
// a made field goal, a turnover by the opponent after a steal, and a missed shot by
// the opponent after a block. Manual corrections never prompt.
func FollowUpFor(entry model.GameAction) (FollowUp, bool) {
	p := entry.Payload
	if !isStatAction(entry.Type) || p.ManualAdjustment != 0 || !p.TeamID.Valid() || p.PlayerID == "" {
		return FollowUp{}, false
	}
	stat, ok := targetStat(p)
	if !ok {
		return FollowUp{}, false
	}
	f := FollowUp{PrimaryActionID: entry.ID, PrimaryPlayerID: p.PlayerID}
	switch stat {
	case model.Stat2PM, model.Stat3PM:
		f.Kind, f.TeamID, f.Stat = FollowUpAssist, p.TeamID, model.StatAST
	case model.StatSTL:
		f.Kind, f.TeamID, f.Stat = FollowUpSteal, p.TeamID.Opponent(), model.StatTOV
	case model.StatBLK:
		f.Kind, f.TeamID, f.Stat = FollowUpBlock, p.TeamID.Opponent(), model.Stat2PA
	default:
		return FollowUp{}, false
	}
	return f, true
}
