// Package contract holds behavior suites every storage backend must pass.
// Backends wire their own factories; the suites only see repository interfaces.
package contract

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/maxviazov/courtside/internal/model"
	"github.com/maxviazov/courtside/internal/repository"
)

// GameFactory returns an empty repository for one collection.
type GameFactory func(t *testing.T) (repository.GameRepository, func())

// TxFactory returns a tx manager and the live/finished repositories that honor it.
type TxFactory func(t *testing.T) (tx repository.TxManager, live, finished repository.GameRepository, cleanup func())

type PingerFactory func(t *testing.T) (repository.Pinger, func())

// SampleGame builds a small but fully populated document: rosters, counters, a log entry,
// optional pointer fields and non-empty slices in every position.
func SampleGame(id string, date int64) model.GameState {
	num := func(n int) *int { return &n }
	newQuarter := 2
	team := func(tid model.TeamID, name string, ids ...string) model.TeamInGame {
		t := model.TeamInGame{
			ID:               tid,
			Name:             name,
			Stats:            model.TeamGameStats{Score: 5, Timeouts: 2, FoulsByQuarter: []int{3, 1, 0, 0}},
			PlayerStats:      map[string]model.PlayerStats{},
			PlayersOnCourt:   []string{ids[0]},
			FouledOutPlayers: []string{},
		}
		for i, pid := range ids {
			t.Players = append(t.Players, model.Player{ID: pid, Name: "Player " + pid, Number: num(i + 4)})
			t.PlayerStats[pid] = model.PlayerStats{}
		}
		s := t.PlayerStats[ids[0]]
		s.TwoPM, s.TwoPA, s.ThreePM, s.ThreePA, s.PF = 1, 2, 1, 1, 5
		s.Recompute()
		t.PlayerStats[ids[0]] = s
		return t
	}
	home := team(model.HomeTeam, "Sharks", id+"-h1", id+"-h2")
	home.FouledOutPlayers = []string{id + "-h1"}
	return model.GameState{
		ID:       id,
		Date:     date,
		HomeTeam: home,
		AwayTeam: team(model.AwayTeam, "Owls", id+"-a1"),
		ActionLog: []model.GameAction{{
			ID:          id + "-e1",
			Timestamp:   date + 1000,
			Type:        model.ActionQuarterChange,
			Description: "Start of period 2.",
			Payload:     model.ActionPayload{Quarter: 1, GameClock: 12, HomeScore: 5, AwayScore: 5, NewQuarter: &newQuarter},
		}},
		Settings: model.GameSettings{
			Quarters: 4, QuarterLength: 600, OvertimeLength: 300, TimeoutLength: 60,
			AllowFoulOut: true, FoulsToFoulOut: 5, TechnicalFoulsToFoulOut: 2,
			Timeouts: model.TimeoutSettings{
				Mode: model.TimeoutsPerQuarterCustom, PerQuarterValues: []int{2, 1, 2, 1},
			},
			TimeoutsOvertime: 1,
			FoulsToBonus:     5,
		},
		Status:                model.StatusInProgress,
		CurrentQuarter:        2,
		GameClock:             600,
		TimeoutClock:          60,
		PossessionArrowHolder: model.AwayTeam,
	}
}

func RunGameRepositoryContract(t *testing.T, makeRepo GameFactory) {
	t.Helper()

	t.Run("save_and_get_roundtrip", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		in := SampleGame("g-roundtrip", 1700000000000)
		if err := repo.Save(ctx, in); err != nil {
			t.Fatalf("save: %v", err)
		}
		got, err := repo.GetByID(ctx, in.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if diff := compare(in, got); diff != "" {
			t.Fatalf("document changed in storage: %s", diff)
		}
	})

	t.Run("save_overwrites", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		g := SampleGame("g-upsert", 1700000000000)
		if err := repo.Save(ctx, g); err != nil {
			t.Fatalf("save: %v", err)
		}
		g.GameClock = 17
		g.Status = model.StatusFinished
		if err := repo.Save(ctx, g); err != nil {
			t.Fatalf("second save: %v", err)
		}
		got, err := repo.GetByID(ctx, g.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.GameClock != 17 || got.Status != model.StatusFinished {
			t.Fatalf("upsert not applied: clock=%d status=%s", got.GameClock, got.Status)
		}
		res, err := repo.List(ctx, repository.Page{Limit: 10})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if res.Total != 1 {
			t.Fatalf("expected a single document, got %d", res.Total)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.GetByID(context.Background(), "no-such-game")
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		g := SampleGame("g-delete", 1700000000000)
		if err := repo.Save(ctx, g); err != nil {
			t.Fatalf("save: %v", err)
		}
		if err := repo.Delete(ctx, g.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, err := repo.GetByID(ctx, g.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
		if err := repo.Delete(ctx, g.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("list_newest_first_with_total", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		for i := 0; i < 7; i++ {
			g := SampleGame(fmt.Sprintf("g-list-%d", i), 1700000000000+int64(i)*60000)
			if err := repo.Save(ctx, g); err != nil {
				t.Fatalf("seed %d: %v", i, err)
			}
		}
		res, err := repo.List(ctx, repository.Page{Limit: 3, Offset: 0})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(res.Items) != 3 || res.Total != 7 {
			t.Fatalf("unexpected page: len=%d total=%d", len(res.Items), res.Total)
		}
		if res.Items[0].ID != "g-list-6" || res.Items[2].ID != "g-list-4" {
			t.Fatalf("unexpected order: %s .. %s", res.Items[0].ID, res.Items[2].ID)
		}
		res2, err := repo.List(ctx, repository.Page{Limit: 3, Offset: 6})
		if err != nil {
			t.Fatalf("list2: %v", err)
		}
		if len(res2.Items) != 1 || res2.Total != 7 || res2.Items[0].ID != "g-list-0" {
			t.Fatalf("unexpected last page: len=%d total=%d", len(res2.Items), res2.Total)
		}
		res3, err := repo.List(ctx, repository.Page{Limit: 3, Offset: 30})
		if err != nil {
			t.Fatalf("list3: %v", err)
		}
		if len(res3.Items) != 0 || res3.Total != 7 {
			t.Fatalf("unexpected page past end: len=%d total=%d", len(res3.Items), res3.Total)
		}
	})

	t.Run("list_empty_ok", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		res, err := repo.List(context.Background(), repository.Page{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(res.Items) != 0 || res.Total != 0 {
			t.Fatalf("expected empty page, got len=%d total=%d", len(res.Items), res.Total)
		}
	})
}

func RunTxManagerContract(t *testing.T, makeTx TxFactory) {
	t.Helper()

	t.Run("commit_on_nil_error", func(t *testing.T) {
		tx, live, finished, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		g := SampleGame("g-tx-commit", 1700000000000)
		if err := live.Save(ctx, g); err != nil {
			t.Fatalf("seed: %v", err)
		}
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			g.Status = model.StatusFinished
			if err := finished.Save(ctx, g); err != nil {
				return err
			}
			return live.Delete(ctx, g.ID)
		})
		if err != nil {
			t.Fatalf("WithinTx: %v", err)
		}
		if _, err := finished.GetByID(ctx, g.ID); err != nil {
			t.Fatalf("expected committed finished document, got err=%v", err)
		}
		if _, err := live.GetByID(ctx, g.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected live document gone, got err=%v", err)
		}
	})

	t.Run("rollback_on_error", func(t *testing.T) {
		tx, live, finished, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		g := SampleGame("g-tx-rollback", 1700000000000)
		if err := live.Save(ctx, g); err != nil {
			t.Fatalf("seed: %v", err)
		}
		errMarker := errors.New("boom")
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			if err := finished.Save(ctx, g); err != nil {
				return err
			}
			if err := live.Delete(ctx, g.ID); err != nil {
				return err
			}
			return errMarker
		})
		if !errors.Is(err, errMarker) {
			t.Fatalf("expected marker error, got %v", err)
		}
		if _, err := finished.GetByID(ctx, g.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after rollback, got %v", err)
		}
		if _, err := live.GetByID(ctx, g.ID); err != nil {
			t.Fatalf("expected live document restored by rollback, got %v", err)
		}
	})
}

func RunPingerContract(t *testing.T, makePinger PingerFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		p, cleanup := makePinger(t)
		t.Cleanup(cleanup)
		if err := p.Ping(context.Background()); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
}

// compare reports the first top-level difference between two documents, "" when equal.
func compare(want, got model.GameState) string {
	switch {
	case want.ID != got.ID:
		return "id"
	case want.Date != got.Date:
		return "date"
	case want.Status != got.Status:
		return "status"
	case want.CurrentQuarter != got.CurrentQuarter:
		return "currentQuarter"
	case want.Clock() != got.Clock():
		return "clock"
	case want.PossessionArrowHolder != got.PossessionArrowHolder:
		return "possessionArrowHolder"
	case len(want.ActionLog) != len(got.ActionLog):
		return "gameLog"
	}
	for i := range want.ActionLog {
		w, g := want.ActionLog[i], got.ActionLog[i]
		if w.ID != g.ID || w.Type != g.Type || w.Description != g.Description || w.Timestamp != g.Timestamp {
			return fmt.Sprintf("gameLog[%d]", i)
		}
		if (w.Payload.NewQuarter == nil) != (g.Payload.NewQuarter == nil) ||
			(w.Payload.NewQuarter != nil && *w.Payload.NewQuarter != *g.Payload.NewQuarter) {
			return fmt.Sprintf("gameLog[%d].payload.newQuarter", i)
		}
	}
	for _, id := range []model.TeamID{model.HomeTeam, model.AwayTeam} {
		w, g := want.Team(id), got.Team(id)
		if w.Name != g.Name || w.Stats.Score != g.Stats.Score || len(w.Players) != len(g.Players) {
			return string(id)
		}
		if fmt.Sprint(w.Stats.FoulsByQuarter) != fmt.Sprint(g.Stats.FoulsByQuarter) {
			return string(id) + ".foulsByQuarter"
		}
		if fmt.Sprint(w.PlayersOnCourt, w.FouledOutPlayers) != fmt.Sprint(g.PlayersOnCourt, g.FouledOutPlayers) {
			return string(id) + ".court"
		}
		for pid, s := range w.PlayerStats {
			if g.PlayerStats[pid] != s {
				return string(id) + ".playerStats." + pid
			}
		}
	}
	if fmt.Sprint(want.Settings) != fmt.Sprint(got.Settings) {
		return "settings"
	}
	return ""
}
