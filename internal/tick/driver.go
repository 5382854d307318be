// Package tick drives the 1 Hz game clock of every live game.
//
// A Driver owns one ticker per game. It is armed after an action leaves the game clock or a
// timeout running and disarms itself once the tick callback reports that nothing runs anymore.
// All scheduling goes through a quartz.Clock so tests can step time explicitly.
package tick

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"
)

// Func applies one tick to a game. persist asks the callee to write the state through.
// It reports whether the game clock or a timeout is still running.
type Func func(ctx context.Context, gameID string, persist bool) (running bool, err error)

// Config tunes a Driver. Zero values fall back to one tick per second and a write every 5th tick.
type Config struct {
	Interval     time.Duration
	PersistEvery int
}

var errDisarmed = errors.New("ticker disarmed")

type ticker struct {
	cancel context.CancelFunc
	waiter quartz.Waiter
	count  int
	// rearmed is set by Ensure while a tick is in flight so a concurrent
	// "not running" answer does not disarm a clock that was just restarted.
	rearmed bool
}

// Driver schedules ticks for live games.
type Driver struct {
	clock quartz.Clock
	cfg   Config
	fn    Func
	log   zerolog.Logger

	mu      sync.Mutex
	ctx     context.Context
	stop    context.CancelFunc
	tickers map[string]*ticker
	closed  bool
}

// NewDriver builds a driver calling fn on every tick. A nil clock means wall time.
func NewDriver(clock quartz.Clock, cfg Config, fn Func, logger zerolog.Logger) *Driver {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.PersistEvery <= 0 {
		cfg.PersistEvery = 5
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Driver{
		clock:   clock,
		cfg:     cfg,
		fn:      fn,
		log:     logger.With().Str("module", "tick").Str("component", "driver").Logger(),
		ctx:     ctx,
		stop:    stop,
		tickers: make(map[string]*ticker),
	}
}

// Ensure arms the ticker of a game unless it already runs. It is idempotent.
func (d *Driver) Ensure(gameID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if tk, ok := d.tickers[gameID]; ok {
		tk.rearmed = true
		return
	}
	ctx, cancel := context.WithCancel(d.ctx)
	tk := &ticker{cancel: cancel}
	d.tickers[gameID] = tk
	tk.waiter = d.clock.TickerFunc(ctx, d.cfg.Interval, func() error {
		return d.fire(ctx, gameID, tk)
	}, "tick", gameID)
	d.log.Debug().Str("game_id", gameID).Msg("clock armed")
}

// Stop disarms the ticker of a game, if any.
func (d *Driver) Stop(gameID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if tk, ok := d.tickers[gameID]; ok {
		delete(d.tickers, gameID)
		tk.cancel()
	}
}

// Active reports whether a ticker is armed for the game.
func (d *Driver) Active(gameID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.tickers[gameID]
	return ok
}

// Close disarms every ticker and waits for in-flight ticks to return.
func (d *Driver) Close() {
	d.mu.Lock()
	d.closed = true
	d.stop()
	waiters := make([]quartz.Waiter, 0, len(d.tickers))
	for id, tk := range d.tickers {
		waiters = append(waiters, tk.waiter)
		delete(d.tickers, id)
	}
	d.mu.Unlock()

	for _, w := range waiters {
		if w != nil {
			_ = w.Wait()
		}
	}
}

func (d *Driver) fire(ctx context.Context, gameID string, tk *ticker) error {
	d.mu.Lock()
	tk.rearmed = false
	tk.count++
	persist := tk.count%d.cfg.PersistEvery == 0
	d.mu.Unlock()

	running, err := d.fn(ctx, gameID, persist)
	if err != nil {
		d.log.Error().Err(err).Str("game_id", gameID).Msg("tick failed")
	}
	if err == nil && running {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil && tk.rearmed {
		return nil
	}
	if cur, ok := d.tickers[gameID]; ok && cur == tk {
		delete(d.tickers, gameID)
	}
	tk.cancel()
	d.log.Debug().Str("game_id", gameID).Int("ticks", tk.count).Msg("clock disarmed")
	return errDisarmed
}
