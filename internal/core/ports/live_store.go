package ports

import (
	"context"
	"time"
)

// LiveStore holds ephemeral cross-request state. The in-memory flavor is
// enough for a single node; the redis flavor shares locks and counters
// across instances and survives process restarts.
type LiveStore interface {
	ChainLocks() ChainLockStore
	RateLimits() RateLimitStore
}

// ChainLockStore serializes scan processing per chain. Lock granularity is
// the chain id: scans on distinct chains never contend.
type ChainLockStore interface {
	// Lock acquires the exclusive lock for chainID and returns the release
	// function. It fails when ctx expires before the lock is acquired.
	Lock(ctx context.Context, chainID string) (release func(), err error)
}

// RateLimitStore counts requests per key within a fixed window.
type RateLimitStore interface {
	// Hit increments the counter for key, starting a new window when the
	// previous one expired. Returns the count within the current window and
	// when the window resets.
	Hit(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
}
