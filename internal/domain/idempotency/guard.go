// Package idempotency remembers which record an Idempotency-Key created so a
// retried create returns the original record instead of inserting again.
package idempotency

import (
	"context"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultMaxSize = 10_000

// Status is the outcome of Reserve.
type Status int

const (
	// Reserved means the key is new and the caller must Commit or Release it.
	Reserved Status = iota
	// Replay means the key already created a record; its id is returned.
	Replay
	// InFlight means another request holds the key and has not finished.
	InFlight
)

func (s Status) String() string {
	switch s {
	case Reserved:
		return "reserved"
	case Replay:
		return "replay"
	case InFlight:
		return "in_flight"
	default:
		return "unknown"
	}
}

// Guard tracks idempotency keys for record creation.
type Guard interface {
	// Reserve atomically claims key. For Replay the created record id is
	// returned.
	Reserve(ctx context.Context, key string) (int64, Status, error)

	// Commit binds a reserved key to the record it created.
	Commit(ctx context.Context, key string, recordID int64) error

	// Release drops a reservation so the key can be retried after a failed
	// create.
	Release(ctx context.Context, key string)

	Size() int
}

type entry struct {
	recordID  int64
	committed bool
}

// lruGuard keeps the most recently used keys; the oldest are evicted once
// maxSize is reached.
type lruGuard struct {
	maxSize int
	cache   *lru.Cache[string, entry]
}

// NewGuard creates an in-memory guard.
func NewGuard(opts ...Option) (Guard, error) {
	g := &lruGuard{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(g)
	}

	cache, err := lru.New[string, entry](g.maxSize)
	if err != nil {
		return nil, err
	}
	g.cache = cache
	return g, nil
}

func normalizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrEmptyKey
	}
	if len(key) > MaxKeyLength {
		return "", ErrKeyTooLong
	}
	return key, nil
}

func (g *lruGuard) Reserve(_ context.Context, key string) (int64, Status, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return 0, Reserved, err
	}

	prev, found, _ := g.cache.PeekOrAdd(key, entry{})
	if !found {
		return 0, Reserved, nil
	}
	if !prev.committed {
		return 0, InFlight, nil
	}
	// Refresh recency for keys that keep being retried.
	g.cache.Get(key)
	return prev.recordID, Replay, nil
}

func (g *lruGuard) Commit(_ context.Context, key string, recordID int64) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	g.cache.Add(key, entry{recordID: recordID, committed: true})
	return nil
}

func (g *lruGuard) Release(_ context.Context, key string) {
	key, err := normalizeKey(key)
	if err != nil {
		return
	}
	if e, ok := g.cache.Peek(key); ok && !e.committed {
		g.cache.Remove(key)
	}
}

// Size returns the number of remembered keys.
func (g *lruGuard) Size() int {
	return g.cache.Len()
}
