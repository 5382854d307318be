package game

import (
	"slices"

	"github.com/maxviazov/courtside/internal/model"
)

// DefaultSettings mirrors the usual amateur setup: 4×10' quarters, 5' overtime,
// 60" timeouts, 2+3 timeouts per half and the bonus from the 5th team foul.
func DefaultSettings() model.GameSettings {
	return model.GameSettings{
		Quarters:                4,
		QuarterLength:           10 * 60,
		OvertimeLength:          5 * 60,
		TimeoutLength:           60,
		AllowFoulOut:            true,
		FoulsToFoulOut:          5,
		AllowTechnicalFoulOut:   true,
		TechnicalFoulsToFoulOut: 2,
		Timeouts: model.TimeoutSettings{
			Mode:             model.TimeoutsPerHalf,
			PerQuarter:       1,
			PerQuarterValues: []int{1, 1, 1, 1},
			FirstHalf:        2,
			SecondHalf:       3,
			Total:            5,
		},
		TimeoutsOvertime: 1,
		FoulsToBonus:     5,
	}
}

// InitialTimeouts is the per-team timeout count at tip-off for the configured mode.
func InitialTimeouts(s model.GameSettings) int {
	t := s.Timeouts
	switch t.Mode {
	case model.TimeoutsPerQuarter:
		return t.PerQuarter
	case model.TimeoutsPerQuarterCustom:
		if len(t.PerQuarterValues) > 0 {
			return t.PerQuarterValues[0]
		}
		return 0
	case model.TimeoutsPerHalf:
		return t.FirstHalf
	case model.TimeoutsTotal:
		return t.Total
	default:
		return 0
	}
}

// NewTeam builds one side with zeroed counters and the first five roster players on court.
func NewTeam(id model.TeamID, name string, players []model.Player, quarters int) model.TeamInGame {
	team := model.TeamInGame{
		ID:               id,
		Name:             name,
		Players:          slices.Clone(players),
		PlayersOnCourt:   make([]string, 0, model.MaxPlayersOnCourt),
		FouledOutPlayers: []string{},
	}
	resetCounters(&team, quarters)
	for _, p := range players[:min(len(players), model.MaxPlayersOnCourt)] {
		team.PlayersOnCourt = append(team.PlayersOnCourt, p.ID)
	}
	return team
}

// NewGame builds the tip-off state of a game. date is unix milliseconds.
func NewGame(id string, date int64, settings model.GameSettings, home, away model.TeamInGame) model.GameState {
	g := model.GameState{
		ID:             id,
		Date:           date,
		HomeTeam:       NewTeam(model.HomeTeam, home.Name, home.Players, settings.Quarters),
		AwayTeam:       NewTeam(model.AwayTeam, away.Name, away.Players, settings.Quarters),
		ActionLog:      []model.GameAction{},
		Settings:       settings,
		Status:         model.StatusInProgress,
		CurrentQuarter: 1,
		GameClock:      settings.QuarterLength,
		TimeoutClock:   settings.TimeoutLength,
	}
	timeouts := InitialTimeouts(settings)
	g.HomeTeam.Stats.Timeouts = timeouts
	g.AwayTeam.Stats.Timeouts = timeouts
	return g.Clone()
}

// Initial rebuilds the tip-off state of g from its id, date, settings and rosters.
// It is the baseline a stored game is replayed from.
func Initial(g model.GameState) model.GameState {
	return NewGame(g.ID, g.Date, g.Settings, g.HomeTeam, g.AwayTeam)
}

func resetCounters(team *model.TeamInGame, quarters int) {
	team.PlayerStats = make(map[string]model.PlayerStats, len(team.Players))
	for _, p := range team.Players {
		team.PlayerStats[p.ID] = model.PlayerStats{}
	}
	team.Stats.Score = 0
	team.Stats.FoulsByQuarter = make([]int, quarters+extraFoulSlots)
	team.Stats.InBonus = false
}
