package model

import (
	"fmt"
	"slices"
)

// ActionType names a reducer input.
type ActionType string

const (
	ActionStatUpdate           ActionType = "STAT_UPDATE"
	ActionScoreUpdate          ActionType = "SCORE_UPDATE"
	ActionSubstitution         ActionType = "SUBSTITUTION"
	ActionMultipleSubstitution ActionType = "MULTIPLE_SUBSTITUTION"
	ActionTimeout              ActionType = "TIMEOUT"
	ActionTimerChange          ActionType = "TIMER_CHANGE"
	ActionTimerReset           ActionType = "TIMER_RESET"
	ActionManualTimerAdjust    ActionType = "MANUAL_TIMER_ADJUST"
	ActionSetTimer             ActionType = "SET_TIMER"
	ActionQuarterChange        ActionType = "QUARTER_CHANGE"
	ActionGameEnd              ActionType = "GAME_END"
	ActionTick                 ActionType = "TICK"
	ActionAddPlayerToCourt     ActionType = "ADD_PLAYER_TO_COURT"
	ActionSetPossessionArrow   ActionType = "SET_POSSESSION_ARROW"
)

// Valid reports whether t is a known action type.
func (t ActionType) Valid() bool {
	switch t {
	case ActionStatUpdate, ActionScoreUpdate, ActionSubstitution, ActionMultipleSubstitution,
		ActionTimeout, ActionTimerChange, ActionTimerReset, ActionManualTimerAdjust, ActionSetTimer,
		ActionQuarterChange, ActionGameEnd, ActionTick, ActionAddPlayerToCourt, ActionSetPossessionArrow:
		return true
	default:
		return false
	}
}

// UnmarshalText rejects unknown action types at the decoding boundary.
func (t *ActionType) UnmarshalText(b []byte) error {
	v := ActionType(b)
	if !v.Valid() {
		return fmt.Errorf("unknown action type %q", string(b))
	}
	*t = v
	return nil
}

// TimerState is the TIMER_CHANGE argument.
type TimerState string

const (
	TimerPlay  TimerState = "PLAY"
	TimerPause TimerState = "PAUSE"
)

// ActionPayload carries every optional argument an action may use plus the
// quarter/clock/score/timeout snapshot taken when the action was logged.
type ActionPayload struct {
	Quarter       int  `json:"quarter,omitempty"`
	GameClock     int  `json:"gameClock"`
	HomeScore     int  `json:"homeScore"`
	AwayScore     int  `json:"awayScore"`
	TimeoutActive bool `json:"timeoutActive,omitempty"`

	TeamID           TeamID     `json:"teamId,omitempty"`
	PlayerID         string     `json:"playerId,omitempty"`
	StatType         StatType   `json:"statType,omitempty"`
	IsFoulOut        bool       `json:"isFoulOut,omitempty"`
	PointsScored     int        `json:"pointsScored,omitempty"`
	ManualAdjustment int        `json:"manualAdjustment,omitempty" validate:"oneof=-1 0 1"`
	PlayerInID       string     `json:"playerInId,omitempty"`
	PlayerOutID      string     `json:"playerOutId,omitempty"`
	PlayersInIDs     []string   `json:"playersInIds,omitempty"`
	PlayersOutIDs    []string   `json:"playersOutIds,omitempty"`
	TimerState       TimerState `json:"timerState,omitempty" validate:"omitempty,oneof=PLAY PAUSE"`
	TimeAdjustment   int        `json:"timeAdjustment,omitempty"`
	NewTime          *int       `json:"newTime,omitempty"`
	NewQuarter       *int       `json:"newQuarter,omitempty"`
}

// Clone copies the slices and pointers so the result can be changed freely.
func (p ActionPayload) Clone() ActionPayload {
	out := p
	out.PlayersInIDs = slices.Clone(p.PlayersInIDs)
	out.PlayersOutIDs = slices.Clone(p.PlayersOutIDs)
	if p.NewTime != nil {
		v := *p.NewTime
		out.NewTime = &v
	}
	if p.NewQuarter != nil {
		v := *p.NewQuarter
		out.NewQuarter = &v
	}
	return out
}

// Action is what callers submit to the reducer.
type Action struct {
	Type    ActionType    `json:"type" binding:"required"`
	Payload ActionPayload `json:"payload"`
}

// GameAction is an immutable log entry. ID and Timestamp (unix ms) are cosmetic.
type GameAction struct {
	ID          string        `json:"id"`
	Timestamp   int64         `json:"timestamp"`
	Type        ActionType    `json:"type"`
	Description string        `json:"description"`
	Payload     ActionPayload `json:"payload"`
}

// Action turns a log entry back into reducer input.
func (a GameAction) Action() Action {
	return Action{Type: a.Type, Payload: a.Payload.Clone()}
}
