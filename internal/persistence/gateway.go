// Package persistence saves player snapshots behind a per-key trailing
// debounce so a burst of saves costs one write.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/stats"
	"github.com/lox/blackjack/internal/storage"
)

const (
	DefaultNamespace      = "blackjack-premium"
	DefaultDebounce       = 1000 * time.Millisecond
	DefaultInitialBalance = 1000
)

// ErrClosed is returned by Flush after Close.
var ErrClosed = errors.New("persistence: gateway closed")

type pendingWrite struct {
	value string
	gen   uint64
	timer *quartz.Timer
}

// Gateway debounces snapshot writes to a storage.Store.
type Gateway struct {
	store          storage.Store
	clock          quartz.Clock
	logger         *log.Logger
	namespace      string
	delay          time.Duration
	initialBalance int

	mu      sync.Mutex
	gen     uint64
	pending map[string]*pendingWrite
	closed  bool

	// writeMu orders commits so an older generation never overwrites a newer one.
	writeMu   sync.Mutex
	committed map[string]uint64
}

// Option configures a Gateway.
type Option func(*Gateway)

func WithClock(clock quartz.Clock) Option {
	return func(g *Gateway) { g.clock = clock }
}

func WithNamespace(ns string) Option {
	return func(g *Gateway) {
		if ns != "" {
			g.namespace = ns
		}
	}
}

func WithDebounce(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.delay = d
		}
	}
}

func WithInitialBalance(balance int) Option {
	return func(g *Gateway) {
		if balance > 0 {
			g.initialBalance = balance
		}
	}
}

// NewGateway wraps store. The gateway does not own the store; callers close it
// after closing the gateway.
func NewGateway(store storage.Store, logger *log.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		store:          store,
		clock:          quartz.NewReal(),
		logger:         logger.WithPrefix("persistence"),
		namespace:      DefaultNamespace,
		delay:          DefaultDebounce,
		initialBalance: DefaultInitialBalance,
		pending:        make(map[string]*pendingWrite),
		committed:      make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Key returns the storage key for a user.
func (g *Gateway) Key(userID string) string {
	return g.namespace + "-save-" + userID
}

// Save schedules snap to be written once no further save for the same user
// arrives within the debounce window. It never writes synchronously.
func (g *Gateway) Save(userID string, snap Snapshot) {
	if snap.UserID == "" {
		snap.UserID = userID
	}
	value, err := Encode(snap)
	if err != nil {
		g.logger.Error("Failed to encode snapshot", "user", userID, "error", err)
		return
	}
	key := g.Key(userID)

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		g.logger.Warn("Dropping save after close", "user", userID)
		return
	}

	if prev, ok := g.pending[key]; ok {
		prev.timer.Stop()
	}
	g.gen++
	gen := g.gen
	p := &pendingWrite{value: value, gen: gen}
	p.timer = g.clock.AfterFunc(g.delay, func() { g.fire(key, gen) }, "persistence", "save")
	g.pending[key] = p
}

func (g *Gateway) fire(key string, gen uint64) {
	g.mu.Lock()
	p, ok := g.pending[key]
	if !ok || p.gen != gen {
		g.mu.Unlock()
		return
	}
	delete(g.pending, key)
	// Take writeMu before releasing mu so FlushUser waits for this commit.
	g.writeMu.Lock()
	g.mu.Unlock()
	defer g.writeMu.Unlock()

	if err := g.commitLocked(context.Background(), key, p); err != nil {
		g.logger.Error("Failed to save snapshot", "key", key, "error", err)
	}
}

func (g *Gateway) commit(ctx context.Context, key string, p *pendingWrite) error {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()
	return g.commitLocked(ctx, key, p)
}

// commitLocked writes p unless a newer generation is already stored. The
// caller holds writeMu.
func (g *Gateway) commitLocked(ctx context.Context, key string, p *pendingWrite) error {
	if g.committed[key] > p.gen {
		return nil
	}
	if err := g.store.Put(ctx, key, p.value); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	g.committed[key] = p.gen
	g.logger.Debug("Saved snapshot", "key", key, "generation", p.gen)
	return nil
}

// Pending reports how many users have a write waiting on the debounce timer.
func (g *Gateway) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}

// Load returns the last committed snapshot for userID. Pending saves are not
// visible. Missing or corrupt data reports false.
func (g *Gateway) Load(ctx context.Context, userID string) (Snapshot, bool) {
	key := g.Key(userID)
	value, err := g.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return Snapshot{}, false
	}
	if err != nil {
		g.logger.Warn("Failed to load snapshot", "key", key, "error", err)
		return Snapshot{}, false
	}

	snap, err := Decode(value)
	if err != nil {
		g.logger.Warn("Ignoring corrupt snapshot", "key", key, "error", err)
		return Snapshot{}, false
	}
	return snap, true
}

// LoadAccount returns the user's snapshot or a fresh account funded with the
// initial balance.
func (g *Gateway) LoadAccount(ctx context.Context, userID string) Snapshot {
	if snap, ok := g.Load(ctx, userID); ok {
		return snap
	}
	return Snapshot{
		UserID:    userID,
		Balance:   g.initialBalance,
		Timestamp: g.clock.Now().UnixMilli(),
		Stats:     stats.New(g.initialBalance),
		Version:   SnapshotVersion,
	}
}

// Flush writes every pending snapshot immediately.
func (g *Gateway) Flush(ctx context.Context) error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrClosed
	}
	batch := g.drainLocked()
	g.mu.Unlock()

	return g.commitAll(ctx, batch)
}

// FlushUser writes userID's pending snapshot now and waits for any commit of
// it already in flight, so a following Load sees the latest save.
func (g *Gateway) FlushUser(ctx context.Context, userID string) error {
	key := g.Key(userID)

	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrClosed
	}
	p, ok := g.pending[key]
	if ok {
		p.timer.Stop()
		delete(g.pending, key)
	}
	g.mu.Unlock()

	g.writeMu.Lock()
	defer g.writeMu.Unlock()
	if !ok {
		return nil
	}
	return g.commitLocked(ctx, key, p)
}

// Close flushes pending writes and rejects later saves.
func (g *Gateway) Close() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil
	}
	g.closed = true
	batch := g.drainLocked()
	g.mu.Unlock()

	return g.commitAll(context.Background(), batch)
}

func (g *Gateway) drainLocked() map[string]*pendingWrite {
	batch := g.pending
	g.pending = make(map[string]*pendingWrite)
	for _, p := range batch {
		p.timer.Stop()
	}
	return batch
}

func (g *Gateway) commitAll(ctx context.Context, batch map[string]*pendingWrite) error {
	var errs []error
	for key, p := range batch {
		if err := g.commit(ctx, key, p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
