package memory

import (
	"bytes"
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/yndnr/csrfguard/internal/storage"
	"github.com/yndnr/csrfguard/pkg/cmap"
)

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Engine is a memory-backed storage.KVEngine.
type Engine struct {
	items  *cmap.Map[entry]
	now    func() time.Time
	closed atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithShards sets the shard count of the underlying map.
func WithShards(n int) Option {
	return func(e *Engine) {
		e.items = cmap.NewWithShards[entry](n)
	}
}

// New creates an empty engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		items: cmap.New[entry](),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Get retrieves a value by key.
func (e *Engine) Get(ctx context.Context, key []byte) ([]byte, error) {
	if e.closed.Load() {
		return nil, storage.ErrClosed
	}
	k := string(key)
	item, ok := e.items.Get(k)
	if !ok {
		return nil, storage.ErrKeyNotFound
	}
	now := e.now()
	if item.expired(now) {
		// A concurrent Set may have replaced the entry since the read.
		e.items.DeleteIf(k, func(cur entry) bool { return cur.expired(now) })
		return nil, storage.ErrKeyNotFound
	}
	return bytes.Clone(item.value), nil
}

// Set stores a key-value pair.
func (e *Engine) Set(ctx context.Context, key, value []byte, ttl time.Duration) error {
	if e.closed.Load() {
		return storage.ErrClosed
	}
	item := entry{value: bytes.Clone(value)}
	if ttl > 0 {
		item.expiresAt = e.now().Add(ttl)
	}
	e.items.Set(string(key), item)
	return nil
}

// Delete removes a key.
func (e *Engine) Delete(ctx context.Context, key []byte) error {
	if e.closed.Load() {
		return storage.ErrClosed
	}
	e.items.Delete(string(key))
	return nil
}

// Scan iterates over live keys with the given prefix in key order.
func (e *Engine) Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error {
	if e.closed.Load() {
		return storage.ErrClosed
	}
	now := e.now()
	p := string(prefix)

	type kv struct {
		key   string
		value []byte
	}
	var matches []kv
	e.items.Range(func(k string, item entry) bool {
		if len(k) >= len(p) && k[:len(p)] == p && !item.expired(now) {
			matches = append(matches, kv{key: k, value: item.value})
		}
		return true
	})
	sort.Slice(matches, func(i, j int) bool { return matches[i].key < matches[j].key })

	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !fn([]byte(m.key), bytes.Clone(m.value)) {
			break
		}
	}
	return nil
}

// Sweep removes expired entries and reports how many were dropped.
func (e *Engine) Sweep() int {
	now := e.now()
	return e.items.RemoveIf(func(_ string, item entry) bool {
		return item.expired(now)
	})
}

// Len returns the number of stored entries, including expired ones not
// yet swept.
func (e *Engine) Len() int {
	return e.items.Count()
}

// Close marks the engine closed and drops all entries.
func (e *Engine) Close() error {
	if e.closed.CompareAndSwap(false, true) {
		e.items.Clear()
	}
	return nil
}
