package model

import "slices"

// GameStatus is the lifecycle stage of a game.
type GameStatus string

const (
	StatusSetup      GameStatus = "SETUP"
	StatusInProgress GameStatus = "IN_PROGRESS"
	StatusPaused     GameStatus = "PAUSED"
	StatusFinished   GameStatus = "FINISHED"
)

// TimeoutMode selects how timeouts are granted over a game.
type TimeoutMode string

const (
	TimeoutsPerQuarter       TimeoutMode = "per_quarter"
	TimeoutsPerQuarterCustom TimeoutMode = "per_quarter_custom"
	TimeoutsPerHalf          TimeoutMode = "per_half"
	TimeoutsTotal            TimeoutMode = "total"
)

// TimeoutSettings holds the allocation for every mode; only the fields of the active mode are read.
type TimeoutSettings struct {
	Mode             TimeoutMode `json:"mode" validate:"oneof=per_quarter per_quarter_custom per_half total"`
	PerQuarter       int         `json:"timeoutsPerQuarter" validate:"min=0"`
	PerQuarterValues []int       `json:"timeoutsPerQuarterValues" validate:"dive,min=0"`
	FirstHalf        int         `json:"timeoutsFirstHalf" validate:"min=0"`
	SecondHalf       int         `json:"timeoutsSecondHalf" validate:"min=0"`
	Total            int         `json:"timeoutsTotal" validate:"min=0"`
}

// GameSettings are fixed for the lifetime of a game. Lengths are in seconds.
type GameSettings struct {
	Name                    string          `json:"name"`
	Quarters                int             `json:"quarters" validate:"min=1,max=12"`
	QuarterLength           int             `json:"quarterLength" validate:"min=1"`
	OvertimeLength          int             `json:"overtimeLength" validate:"min=1"`
	TimeoutLength           int             `json:"timeoutLength" validate:"min=1"`
	AllowFoulOut            bool            `json:"allowFoulOut"`
	FoulsToFoulOut          int             `json:"foulsToFoulOut" validate:"min=1"`
	AllowTechnicalFoulOut   bool            `json:"allowTechnicalFoulOut"`
	TechnicalFoulsToFoulOut int             `json:"technicalFoulsToFoulOut" validate:"min=1"`
	Timeouts                TimeoutSettings `json:"timeoutSettings"`
	TimeoutsOvertime        int             `json:"timeoutsOvertime" validate:"min=0"`
	FoulsToBonus            int             `json:"foulsToBonus" validate:"min=1"`
}

// IsOvertime reports whether a 1-based quarter number is past regulation.
func (s GameSettings) IsOvertime(quarter int) bool { return quarter > s.Quarters }

// PeriodLength is the full clock for a 1-based quarter number.
func (s GameSettings) PeriodLength(quarter int) int {
	if s.IsOvertime(quarter) {
		return s.OvertimeLength
	}
	return s.QuarterLength
}

// ClockFields is the live clock snapshot an undo carries over the replay.
type ClockFields struct {
	GameClock       int    `json:"gameClock"`
	ClockIsRunning  bool   `json:"clockIsRunning"`
	IsTimeoutActive bool   `json:"isTimeoutActive"`
	TimeoutClock    int    `json:"timeoutClock"`
	TimeoutCaller   TeamID `json:"timeoutCaller,omitempty"`
}

// GameState is the whole game. It is the serialization unit handed to storage.
type GameState struct {
	ID                    string       `json:"id"`
	Date                  int64        `json:"date"`
	HomeTeam              TeamInGame   `json:"homeTeam"`
	AwayTeam              TeamInGame   `json:"awayTeam"`
	ActionLog             []GameAction `json:"gameLog"`
	Settings              GameSettings `json:"settings"`
	Status                GameStatus   `json:"status"`
	CurrentQuarter        int          `json:"currentQuarter"`
	GameClock             int          `json:"gameClock"`
	ClockIsRunning        bool         `json:"clockIsRunning"`
	IsTimeoutActive       bool         `json:"isTimeoutActive"`
	TimeoutClock          int          `json:"timeoutClock"`
	TimeoutCaller         TeamID       `json:"timeoutCaller,omitempty"`
	PossessionArrowHolder TeamID       `json:"possessionArrowHolder,omitempty"`
}

// Team returns the side named by id, or nil when id is not a side.
func (g *GameState) Team(id TeamID) *TeamInGame {
	switch id {
	case HomeTeam:
		return &g.HomeTeam
	case AwayTeam:
		return &g.AwayTeam
	default:
		return nil
	}
}

// Clock captures the clock-related fields.
func (g GameState) Clock() ClockFields {
	return ClockFields{
		GameClock:       g.GameClock,
		ClockIsRunning:  g.ClockIsRunning,
		IsTimeoutActive: g.IsTimeoutActive,
		TimeoutClock:    g.TimeoutClock,
		TimeoutCaller:   g.TimeoutCaller,
	}
}

// SetClock overwrites the clock-related fields.
func (g *GameState) SetClock(c ClockFields) {
	g.GameClock = c.GameClock
	g.ClockIsRunning = c.ClockIsRunning
	g.IsTimeoutActive = c.IsTimeoutActive
	g.TimeoutClock = c.TimeoutClock
	g.TimeoutCaller = c.TimeoutCaller
}

// Ticking reports whether an external driver should keep sending ticks.
func (g GameState) Ticking() bool { return g.ClockIsRunning || g.IsTimeoutActive }

// Clone returns a deep copy. Log entries are immutable, so only the log slice itself is copied.
func (g GameState) Clone() GameState {
	out := g
	out.HomeTeam = g.HomeTeam.Clone()
	out.AwayTeam = g.AwayTeam.Clone()
	out.ActionLog = slices.Clone(g.ActionLog)
	out.Settings.Timeouts.PerQuarterValues = slices.Clone(g.Settings.Timeouts.PerQuarterValues)
	return out
}
