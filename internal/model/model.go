// Package model contains the game-state shapes shared by the engine, storage and transport layers.
// I keep behavior out of here except for small helpers that keep the shapes consistent (lookup, clone).
package model

import (
	"fmt"
	"slices"
)

// MaxPlayersOnCourt is the hard cap for a team's on-court set.
const MaxPlayersOnCourt = 5

// TeamID identifies one side of a game.
type TeamID string

const (
	HomeTeam TeamID = "homeTeam"
	AwayTeam TeamID = "awayTeam"
)

// Valid reports whether id names one of the two sides.
func (id TeamID) Valid() bool { return id == HomeTeam || id == AwayTeam }

// Opponent returns the other side. An invalid id stays invalid.
func (id TeamID) Opponent() TeamID {
	switch id {
	case HomeTeam:
		return AwayTeam
	case AwayTeam:
		return HomeTeam
	default:
		return id
	}
}

// UnmarshalText rejects anything but the two known sides.
func (id *TeamID) UnmarshalText(b []byte) error {
	v := TeamID(b)
	if v != "" && !v.Valid() {
		return fmt.Errorf("unknown team id %q", string(b))
	}
	*id = v
	return nil
}

// Player is a roster entry. It is never edited during a game.
type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Number   *int   `json:"number,omitempty"`
	Position string `json:"position,omitempty"`
}

// TeamGameStats is the team-level block of a TeamInGame.
type TeamGameStats struct {
	Score          int   `json:"score"`
	Timeouts       int   `json:"timeouts"`
	FoulsByQuarter []int `json:"foulsByQuarter"`
	InBonus        bool  `json:"inBonus"`
}

// TeamInGame is one side of a live game: roster, counters and court state.
type TeamInGame struct {
	ID               TeamID                 `json:"id"`
	Name             string                 `json:"name"`
	Players          []Player               `json:"players"`
	Stats            TeamGameStats          `json:"stats"`
	PlayerStats      map[string]PlayerStats `json:"playerStats"`
	PlayersOnCourt   []string               `json:"playersOnCourt"`
	FouledOutPlayers []string               `json:"fouledOutPlayers"`
}

// Player looks a roster entry up by id.
func (t *TeamInGame) Player(id string) (Player, bool) {
	for _, p := range t.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// IsOnCourt reports whether the player id is in the on-court set.
func (t *TeamInGame) IsOnCourt(id string) bool { return slices.Contains(t.PlayersOnCourt, id) }

// IsFouledOut reports whether the player id has already fouled out.
func (t *TeamInGame) IsFouledOut(id string) bool { return slices.Contains(t.FouledOutPlayers, id) }

// FoulsInQuarter returns the team's fouls for a 1-based quarter, 0 when out of range.
func (t *TeamInGame) FoulsInQuarter(quarter int) int {
	idx := quarter - 1
	if idx < 0 || idx >= len(t.Stats.FoulsByQuarter) {
		return 0
	}
	return t.Stats.FoulsByQuarter[idx]
}

// Clone returns a deep copy that shares no slices or maps with t.
func (t TeamInGame) Clone() TeamInGame {
	out := t
	out.Players = slices.Clone(t.Players)
	for i, p := range out.Players {
		if p.Number != nil {
			n := *p.Number
			out.Players[i].Number = &n
		}
	}
	out.Stats.FoulsByQuarter = slices.Clone(t.Stats.FoulsByQuarter)
	if t.PlayerStats != nil {
		out.PlayerStats = make(map[string]PlayerStats, len(t.PlayerStats))
		for id, s := range t.PlayerStats {
			out.PlayerStats[id] = s
		}
	}
	out.PlayersOnCourt = slices.Clone(t.PlayersOnCourt)
	out.FouledOutPlayers = slices.Clone(t.FouledOutPlayers)
	return out
}
