package repository

import (
	"context"

	"github.com/maxviazov/courtside/internal/model"
)

// Pinger represents a minimal readiness probe capability.
// I use it to decouple health checks from storage implementation details.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
// I pass context through so nested calls can honor cancellations and deadlines.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution for repositories that support it.
// I prefer a single entry point to keep transaction boundaries explicit and testable.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// Collection names one of the two game document collections.
type Collection string

const (
	// LiveGames holds games still being scored, written through on every action.
	LiveGames Collection = "live_games"
	// FinishedGames holds the final documents of ended games.
	FinishedGames Collection = "finished_games"
)

// Valid reports whether c is a known collection. Implementations interpolate it into SQL,
// so anything else must be refused.
func (c Collection) Valid() bool { return c == LiveGames || c == FinishedGames }

// GameRepository stores whole GameState documents keyed by game id.
// I keep the document opaque here: the engine owns its shape, storage only round-trips it.
type GameRepository interface {
	// Save upserts the document.
	Save(ctx context.Context, g model.GameState) error
	GetByID(ctx context.Context, id string) (model.GameState, error)
	// Delete returns ErrNotFound when there is nothing to delete.
	Delete(ctx context.Context, id string) error
	// List returns documents newest first by game date.
	List(ctx context.Context, p Page) (PageResult[model.GameState], error)
}
