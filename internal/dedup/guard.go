// Package dedup provides the trailing-window guard that makes lead
// store-and-route side effects exactly-once. Both trigger paths (explicit
// tool calls and the handoff safety net) funnel through a Guard before any
// downstream effect runs.
package dedup

import (
	"context"
	"sync"
	"time"
)

// Guard decides whether a lead identity key should be processed now.
// ShouldProcess atomically checks and records the key: the first caller
// inside the window wins, every later caller with the same key loses until
// the window lapses. The record is written before the caller performs any
// side effect, so a crash mid-processing suppresses retries rather than
// duplicating them.
type Guard interface {
	ShouldProcess(ctx context.Context, key string) (bool, error)
}

// MemoryGuard is a process-local Guard. Suitable for a single instance or
// tests; multi-instance deployments need RedisGuard.
type MemoryGuard struct {
	mu     sync.Mutex
	window time.Duration
	seen   map[string]time.Time
	now    func() time.Time
}

// NewMemoryGuard creates a guard with the given trailing window.
func NewMemoryGuard(window time.Duration) *MemoryGuard {
	if window <= 0 {
		panic("dedup: window must be positive")
	}
	return &MemoryGuard{
		window: window,
		seen:   make(map[string]time.Time),
		now:    time.Now,
	}
}

// ShouldProcess reports whether the key is fresh and records it if so. The
// check and the record happen under one lock so two concurrent callers can
// never both win.
func (g *MemoryGuard) ShouldProcess(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if last, ok := g.seen[key]; ok && now.Sub(last) < g.window {
		return false, nil
	}

	// Lazy eviction keeps the map bounded without a background sweeper.
	for k, at := range g.seen {
		if now.Sub(at) >= g.window {
			delete(g.seen, k)
		}
	}

	g.seen[key] = now
	return true, nil
}
