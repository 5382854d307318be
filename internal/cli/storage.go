package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/maxviazov/courtside/internal/config"
	"github.com/maxviazov/courtside/internal/repository"
	"github.com/maxviazov/courtside/internal/repository/memory"
	"github.com/maxviazov/courtside/internal/repository/postgres"
	"github.com/maxviazov/courtside/internal/repository/sqlite"
)

// backend is one storage driver opened for both game collections.
type backend struct {
	live     repository.GameRepository
	finished repository.GameRepository
	tx       repository.TxManager
	pinger   repository.Pinger
	close    func()
}

// openBackend connects the configured storage driver and runs its migrations.
func openBackend(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*backend, error) {
	log := logger.With().Str("module", "cli").Str("component", "storage").Logger()

	switch cfg.Storage.Driver {
	case "postgres":
		pool, err := repository.NewPostgresPool(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		live, err := postgres.NewGameRepository(pool, repository.LiveGames)
		if err != nil {
			pool.Close()
			return nil, err
		}
		finished, err := postgres.NewGameRepository(pool, repository.FinishedGames)
		if err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Str("host", cfg.Postgres.Host).Str("db", cfg.Postgres.DBName).Msg("storage ready")
		return &backend{
			live:     live,
			finished: finished,
			tx:       postgres.NewTxManager(pool),
			pinger:   postgres.NewPinger(pool),
			close:    pool.Close,
		}, nil

	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.SQLite.Path, logger)
		if err != nil {
			return nil, err
		}
		live, err := sqlite.NewGameRepository(db, repository.LiveGames)
		if err != nil {
			db.Close()
			return nil, err
		}
		finished, err := sqlite.NewGameRepository(db, repository.FinishedGames)
		if err != nil {
			db.Close()
			return nil, err
		}
		log.Info().Str("path", cfg.SQLite.Path).Msg("storage ready")
		return &backend{
			live:     live,
			finished: finished,
			tx:       sqlite.NewTxManager(db),
			pinger:   sqlite.NewPinger(db),
			close:    func() { _ = db.Close() },
		}, nil

	case "memory":
		store := memory.NewStore()
		live, err := store.Games(repository.LiveGames)
		if err != nil {
			return nil, err
		}
		finished, err := store.Games(repository.FinishedGames)
		if err != nil {
			return nil, err
		}
		log.Warn().Msg("in-memory storage: games are lost on restart")
		return &backend{
			live:     live,
			finished: finished,
			tx:       store.TxManager(),
			pinger:   store,
			close:    func() {},
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
