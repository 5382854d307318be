// Package service holds the live-game use cases between the transport layer, the game engine and storage.
// Kept intentionally lean: session bookkeeping, validation, persistence and domain error shaping.
package service

import (
	"context"
	"errors"

	"github.com/maxviazov/courtside/internal/game"
	"github.com/maxviazov/courtside/internal/model"
	"github.com/maxviazov/courtside/internal/repository"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// ErrGameFinished is returned when an action targets a game that already ended.
var ErrGameFinished = errors.New("game finished")

// ErrNothingToUndo is returned by Undo on a game with an empty log.
var ErrNothingToUndo = errors.New("nothing to undo")

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// newInvalidInput builds an aggregated validation error if any field errors are present.
func newInvalidInput(fe []FieldError) error {
	if len(fe) == 0 {
		return nil
	}
	return &invalidInputError{fields: fe}
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	type feIface interface{ Fields() []FieldError }
	var v feIface
	if errors.As(err, &v) && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// TeamInput is one side of a new game.
type TeamInput struct {
	Name    string         `json:"name"`
	Players []model.Player `json:"players"`
}

// NewGameInput is everything needed to start a game. Nil settings mean DefaultSettings.
type NewGameInput struct {
	Settings *model.GameSettings `json:"settings,omitempty"`
	Home     TeamInput           `json:"homeTeam"`
	Away     TeamInput           `json:"awayTeam"`
}

// FoulOutNotice tells the scorer a player just reached a foul-out limit.
type FoulOutNotice struct {
	TeamID   model.TeamID `json:"teamId"`
	PlayerID string       `json:"playerId"`
	Name     string       `json:"name"`
}

// ActionResult is the outcome of a dispatched action: the new state plus the prompts it raises.
type ActionResult struct {
	Game     model.GameState   `json:"game"`
	Entry    *model.GameAction `json:"entry,omitempty"`
	FoulOut  *FoulOutNotice    `json:"foulOut,omitempty"`
	FollowUp *game.FollowUp    `json:"followUp,omitempty"`
}

// GameService defines live-game use cases.
type GameService interface {
	StartGame(ctx context.Context, in NewGameInput) (model.GameState, error)
	GetGame(ctx context.Context, id string) (model.GameState, error)
	Dispatch(ctx context.Context, id string, action model.Action) (ActionResult, error)
	Undo(ctx context.Context, id string) (model.GameState, error)
	// Tick advances the clock of a live game by one second; it is the tick driver's callback.
	Tick(ctx context.Context, id string, persist bool) (running bool, err error)
	FinishGame(ctx context.Context, id string) (model.GameState, error)
	ListFinished(ctx context.Context, page repository.Page) (repository.PageResult[model.GameState], error)
}
