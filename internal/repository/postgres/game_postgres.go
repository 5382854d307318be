package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/courtside/internal/model"
	"github.com/maxviazov/courtside/internal/repository"
)

// gameRepository keeps GameState documents in one JSONB column. status and game_date are
// copied out of the document so listing never has to parse it.
type gameRepository struct {
	pool  *pgxpool.Pool
	table repository.Collection
}

// NewGameRepository binds a repository to one of the game collections.
func NewGameRepository(pool *pgxpool.Pool, c repository.Collection) (repository.GameRepository, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unknown collection %q", c)
	}
	return &gameRepository{pool: pool, table: c}, nil
}

func (r *gameRepository) Save(ctx context.Context, g model.GameState) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	doc, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode game %s: %w", g.ID, err)
	}
	exec := getQ(ctx, r.pool)
	_, err = exec.Exec(ctx, fmt.Sprintf(
		`INSERT INTO %s (id, status, game_date, document)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE
		 SET status = EXCLUDED.status, game_date = EXCLUDED.game_date,
		     document = EXCLUDED.document, updated_at = now()`, r.table),
		g.ID, string(g.Status), g.Date, doc,
	)
	return repository.MapPgError(err)
}

func (r *gameRepository) GetByID(ctx context.Context, id string) (model.GameState, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.GameState{}, err
	}
	exec := getQ(ctx, r.pool)
	var doc []byte
	err := exec.QueryRow(ctx, fmt.Sprintf(`SELECT document FROM %s WHERE id = $1`, r.table), id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.GameState{}, repository.ErrNotFound
		}
		return model.GameState{}, repository.MapPgError(err)
	}
	return decode(doc)
}

func (r *gameRepository) Delete(ctx context.Context, id string) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	exec := getQ(ctx, r.pool)
	tag, err := exec.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table), id)
	if err != nil {
		return repository.MapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *gameRepository) List(ctx context.Context, p repository.Page) (repository.PageResult[model.GameState], error) {
	if err := ensurePool(r.pool); err != nil {
		return repository.PageResult[model.GameState]{}, err
	}
	limit, offset := p.Sanitize()
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx, fmt.Sprintf(
		`SELECT document, COUNT(*) OVER() AS total
		 FROM %s
		 ORDER BY game_date DESC, id DESC
		 LIMIT $1 OFFSET $2`, r.table),
		limit, offset,
	)
	if err != nil {
		return repository.PageResult[model.GameState]{}, repository.MapPgError(err)
	}
	defer rows.Close()

	res := repository.PageResult[model.GameState]{Items: make([]model.GameState, 0, limit)}
	for rows.Next() {
		var doc []byte
		var total int
		if err := rows.Scan(&doc, &total); err != nil {
			return repository.PageResult[model.GameState]{}, repository.MapPgError(err)
		}
		g, err := decode(doc)
		if err != nil {
			return repository.PageResult[model.GameState]{}, err
		}
		res.Items = append(res.Items, g)
		res.Total = total
	}
	if err := rows.Err(); err != nil {
		return repository.PageResult[model.GameState]{}, repository.MapPgError(err)
	}
	if len(res.Items) == 0 && offset > 0 {
		// the window is past the end; still report the real total
		if err := exec.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.table)).Scan(&res.Total); err != nil {
			return repository.PageResult[model.GameState]{}, repository.MapPgError(err)
		}
	}
	return res, nil
}

func decode(doc []byte) (model.GameState, error) {
	var g model.GameState
	if err := json.Unmarshal(doc, &g); err != nil {
		return model.GameState{}, fmt.Errorf("decode game document: %w", err)
	}
	return g, nil
}

var _ repository.GameRepository = (*gameRepository)(nil)
