package model

import "fmt"

// StatType is the closed set of raw per-player counters an action can touch.
// Derived values (PTS, REB) are deliberately absent.
type StatType string

const (
	StatFTM     StatType = "1PM"
	StatFTA     StatType = "1PA"
	Stat2PM     StatType = "2PM"
	Stat2PA     StatType = "2PA"
	Stat3PM     StatType = "3PM"
	Stat3PA     StatType = "3PA"
	StatOREB    StatType = "OREB"
	StatDREB    StatType = "DREB"
	StatAST     StatType = "AST"
	StatSTL     StatType = "STL"
	StatBLK     StatType = "BLK"
	StatTOV     StatType = "TOV"
	StatPF      StatType = "PF"
	StatUF      StatType = "UF"
	StatTF      StatType = "TF"
	statUnknown StatType = ""
)

// StatTypes lists every counter in display order.
var StatTypes = []StatType{
	StatFTM, StatFTA, Stat2PM, Stat2PA, Stat3PM, Stat3PA,
	StatDREB, StatOREB, StatAST, StatSTL, StatBLK, StatTOV, StatPF, StatUF, StatTF,
}

// Valid reports whether s is one of the known counters.
func (s StatType) Valid() bool {
	switch s {
	case StatFTM, StatFTA, Stat2PM, Stat2PA, Stat3PM, Stat3PA,
		StatOREB, StatDREB, StatAST, StatSTL, StatBLK, StatTOV, StatPF, StatUF, StatTF:
		return true
	default:
		return false
	}
}

// IsFoul reports whether the counter feeds team fouls.
func (s StatType) IsFoul() bool { return s == StatPF || s == StatUF || s == StatTF }

// IsPersonalFoul covers the fouls counted against the personal foul-out limit.
func (s StatType) IsPersonalFoul() bool { return s == StatPF || s == StatUF }

// AttemptFor returns the attempt counter paired with a made-shot counter.
func (s StatType) AttemptFor() (StatType, bool) {
	switch s {
	case StatFTM:
		return StatFTA, true
	case Stat2PM:
		return Stat2PA, true
	case Stat3PM:
		return Stat3PA, true
	default:
		return statUnknown, false
	}
}

// MadeFor returns the made-shot counter paired with an attempt counter.
func (s StatType) MadeFor() (StatType, bool) {
	switch s {
	case StatFTA:
		return StatFTM, true
	case Stat2PA:
		return Stat2PM, true
	case Stat3PA:
		return Stat3PM, true
	default:
		return statUnknown, false
	}
}

// MadeStatFor maps a shot value (1, 2, 3) to its made counter.
func MadeStatFor(points int) (StatType, bool) {
	switch points {
	case 1:
		return StatFTM, true
	case 2:
		return Stat2PM, true
	case 3:
		return Stat3PM, true
	default:
		return statUnknown, false
	}
}

// UnmarshalText rejects unknown stat codes instead of letting them no-op later.
func (s *StatType) UnmarshalText(b []byte) error {
	v := StatType(b)
	if v != statUnknown && !v.Valid() {
		return fmt.Errorf("unknown stat type %q", string(b))
	}
	*s = v
	return nil
}

// PlayerStats holds one player's counters. PTS and REB are derived and only written by Recompute.
type PlayerStats struct {
	FTM     int `json:"1PM"`
	FTA     int `json:"1PA"`
	TwoPM   int `json:"2PM"`
	TwoPA   int `json:"2PA"`
	ThreePM int `json:"3PM"`
	ThreePA int `json:"3PA"`
	OREB    int `json:"OREB"`
	DREB    int `json:"DREB"`
	AST     int `json:"AST"`
	STL     int `json:"STL"`
	BLK     int `json:"BLK"`
	TOV     int `json:"TOV"`
	PF      int `json:"PF"`
	UF      int `json:"UF"`
	TF      int `json:"TF"`
	PTS     int `json:"PTS"`
	REB     int `json:"REB"`
}

// Counter returns a pointer to the raw counter for s, or nil for an unknown type.
func (p *PlayerStats) Counter(s StatType) *int {
	switch s {
	case StatFTM:
		return &p.FTM
	case StatFTA:
		return &p.FTA
	case Stat2PM:
		return &p.TwoPM
	case Stat2PA:
		return &p.TwoPA
	case Stat3PM:
		return &p.ThreePM
	case Stat3PA:
		return &p.ThreePA
	case StatOREB:
		return &p.OREB
	case StatDREB:
		return &p.DREB
	case StatAST:
		return &p.AST
	case StatSTL:
		return &p.STL
	case StatBLK:
		return &p.BLK
	case StatTOV:
		return &p.TOV
	case StatPF:
		return &p.PF
	case StatUF:
		return &p.UF
	case StatTF:
		return &p.TF
	default:
		return nil
	}
}

// Get reads a raw counter; unknown types read as 0.
func (p PlayerStats) Get(s StatType) int {
	if c := p.Counter(s); c != nil {
		return *c
	}
	return 0
}

// Recompute refreshes the derived fields from the raw counters.
func (p *PlayerStats) Recompute() {
	p.PTS = p.FTM + 2*p.TwoPM + 3*p.ThreePM
	p.REB = p.OREB + p.DREB
}

// PersonalFouls is the count checked against the personal foul-out limit.
func (p PlayerStats) PersonalFouls() int { return p.PF + p.UF }
