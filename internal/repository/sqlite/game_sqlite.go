package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/maxviazov/courtside/internal/model"
	"github.com/maxviazov/courtside/internal/repository"
)

// q is implemented by both *sql.DB and *sql.Tx.
type q interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

func getQ(ctx context.Context, db *sql.DB) q {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok && tx != nil {
		return tx
	}
	return db
}

type gameRepository struct {
	db    *sql.DB
	table repository.Collection
}

// NewGameRepository binds a repository to one of the game collections.
func NewGameRepository(db *sql.DB, c repository.Collection) (repository.GameRepository, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unknown collection %q", c)
	}
	return &gameRepository{db: db, table: c}, nil
}

func (r *gameRepository) Save(ctx context.Context, g model.GameState) error {
	doc, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode game %s: %w", g.ID, err)
	}
	_, err = getQ(ctx, r.db).ExecContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (id, status, game_date, document)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE
		 SET status = excluded.status, game_date = excluded.game_date,
		     document = excluded.document, updated_at = strftime('%%Y-%%m-%%dT%%H:%%M:%%fZ', 'now')`, r.table),
		g.ID, string(g.Status), g.Date, string(doc),
	)
	return MapError(err)
}

func (r *gameRepository) GetByID(ctx context.Context, id string) (model.GameState, error) {
	var doc string
	err := getQ(ctx, r.db).QueryRowContext(ctx, fmt.Sprintf(`SELECT document FROM %s WHERE id = ?`, r.table), id).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.GameState{}, repository.ErrNotFound
		}
		return model.GameState{}, MapError(err)
	}
	return decode(doc)
}

func (r *gameRepository) Delete(ctx context.Context, id string) error {
	res, err := getQ(ctx, r.db).ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, r.table), id)
	if err != nil {
		return MapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *gameRepository) List(ctx context.Context, p repository.Page) (repository.PageResult[model.GameState], error) {
	limit, offset := p.Sanitize()
	exec := getQ(ctx, r.db)

	res := repository.PageResult[model.GameState]{Items: make([]model.GameState, 0, limit)}
	if err := exec.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.table)).Scan(&res.Total); err != nil {
		return repository.PageResult[model.GameState]{}, MapError(err)
	}

	rows, err := exec.QueryContext(ctx, fmt.Sprintf(
		`SELECT document FROM %s ORDER BY game_date DESC, id DESC LIMIT ? OFFSET ?`, r.table),
		limit, offset,
	)
	if err != nil {
		return repository.PageResult[model.GameState]{}, MapError(err)
	}
	defer rows.Close()
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return repository.PageResult[model.GameState]{}, MapError(err)
		}
		g, err := decode(doc)
		if err != nil {
			return repository.PageResult[model.GameState]{}, err
		}
		res.Items = append(res.Items, g)
	}
	if err := rows.Err(); err != nil {
		return repository.PageResult[model.GameState]{}, MapError(err)
	}
	return res, nil
}

func decode(doc string) (model.GameState, error) {
	var g model.GameState
	if err := json.Unmarshal([]byte(doc), &g); err != nil {
		return model.GameState{}, fmt.Errorf("decode game document: %w", err)
	}
	return g, nil
}

type txManager struct{ db *sql.DB }

func NewTxManager(db *sql.DB) repository.TxManager { return &txManager{db: db} }

// WithinTx runs fn in a transaction; nested calls join the outer one.
func (m *txManager) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok && tx != nil {
		return fn(ctx)
	}
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return MapError(err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return MapError(err)
	}
	return MapError(tx.Commit())
}

var (
	_ repository.GameRepository = (*gameRepository)(nil)
	_ repository.TxManager      = (*txManager)(nil)
)
