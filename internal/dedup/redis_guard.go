package dedup

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "lead:dedup:"

// RedisGuard is a Guard shared across instances. SET NX with a TTL gives the
// same first-caller-wins semantics as MemoryGuard, with the window enforced
// by Redis expiry.
type RedisGuard struct {
	client *redis.Client
	window time.Duration
}

// NewRedisGuard creates a Redis-backed guard.
func NewRedisGuard(client *redis.Client, window time.Duration) *RedisGuard {
	if client == nil {
		panic("dedup: redis client required")
	}
	if window <= 0 {
		panic("dedup: window must be positive")
	}
	return &RedisGuard{client: client, window: window}
}

// ShouldProcess claims the key if no live record exists. Redis errors are
// returned to the caller, which degrades them to a user-visible failure
// string rather than processing a possibly duplicate lead.
func (g *RedisGuard) ShouldProcess(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, redisKeyPrefix+key, "1", g.window).Result()
	if err != nil {
		return false, fmt.Errorf("dedup: redis claim failed: %w", err)
	}
	return ok, nil
}
