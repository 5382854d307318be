// Package memory is the process-local storage backend. Documents are kept JSON-encoded,
// so callers get the same copy semantics as from a database.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/maxviazov/courtside/internal/model"
	"github.com/maxviazov/courtside/internal/repository"
)

type document struct {
	date int64
	body []byte
}

// Store holds both game collections.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data map[repository.Collection]map[string]document
}

func NewStore() *Store {
	return &Store{data: map[repository.Collection]map[string]document{
		repository.LiveGames:     {},
		repository.FinishedGames: {},
	}}
}

// Games returns the repository view of one collection.
func (s *Store) Games(c repository.Collection) (repository.GameRepository, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unknown collection %q", c)
	}
	return &gameRepository{store: s, c: c}, nil
}

// TxManager returns a manager whose transactions snapshot the whole store and restore it
// when the unit of work fails. Transactions are serialized.
func (s *Store) TxManager() repository.TxManager { return txManager{store: s} }

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

type gameRepository struct {
	store *Store
	c     repository.Collection
}

func (r *gameRepository) Save(_ context.Context, g model.GameState) error {
	body, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode game %s: %w", g.ID, err)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.data[r.c][g.ID] = document{date: g.Date, body: body}
	return nil
}

func (r *gameRepository) GetByID(_ context.Context, id string) (model.GameState, error) {
	r.store.mu.RLock()
	doc, ok := r.store.data[r.c][id]
	r.store.mu.RUnlock()
	if !ok {
		return model.GameState{}, repository.ErrNotFound
	}
	return decode(doc.body)
}

func (r *gameRepository) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.data[r.c][id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.store.data[r.c], id)
	return nil
}

func (r *gameRepository) List(_ context.Context, p repository.Page) (repository.PageResult[model.GameState], error) {
	limit, offset := p.Sanitize()

	r.store.mu.RLock()
	ids := slices.Collect(maps.Keys(r.store.data[r.c]))
	docs := make(map[string]document, len(ids))
	for _, id := range ids {
		docs[id] = r.store.data[r.c][id]
	}
	r.store.mu.RUnlock()

	// game date DESC, id DESC, the order the SQL backends use
	slices.SortFunc(ids, func(a, b string) int {
		if da, db := docs[a].date, docs[b].date; da != db {
			if da > db {
				return -1
			}
			return 1
		}
		switch {
		case a > b:
			return -1
		case a < b:
			return 1
		}
		return 0
	})

	res := repository.PageResult[model.GameState]{Items: []model.GameState{}, Total: len(ids)}
	if offset >= len(ids) {
		return res, nil
	}
	for _, id := range ids[offset:min(offset+limit, len(ids))] {
		g, err := decode(docs[id].body)
		if err != nil {
			return repository.PageResult[model.GameState]{}, err
		}
		res.Items = append(res.Items, g)
	}
	return res, nil
}

type txManager struct{ store *Store }

func (m txManager) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	s := m.store
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := make(map[repository.Collection]map[string]document, len(s.data))
	for c, docs := range s.data {
		snapshot[c] = maps.Clone(docs)
	}
	s.mu.RUnlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func decode(body []byte) (model.GameState, error) {
	var g model.GameState
	if err := json.Unmarshal(body, &g); err != nil {
		return model.GameState{}, fmt.Errorf("decode game document: %w", err)
	}
	return g, nil
}

var (
	_ repository.GameRepository = (*gameRepository)(nil)
	_ repository.TxManager      = txManager{}
	_ repository.Pinger         = (*Store)(nil)
)
