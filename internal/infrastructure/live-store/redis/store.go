package redislivestore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/morphcodes/morphd/internal/core/ports"
	"github.com/redis/go-redis/v9"
)

const (
	chainLockKeyPrefix = "chainLockStore:"
	rateLimitKeyPrefix = "rateLimitStore:"

	// lockTTL caps how long a crashed holder can leave a chain locked.
	lockTTL       = 10 * time.Second
	lockRetryWait = 25 * time.Millisecond
)

// releaseScript deletes the lock only when still held by the caller, so a
// holder that outlived its TTL cannot release somebody else's lock.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// hitScript bumps a window counter and guarantees the key carries a TTL in
// the same atomic step, so a process crash can never strand a counter that
// counts forever without expiring. Keys left without a TTL by older writers
// are healed on the next hit.
var hitScript = redis.NewScript(`
local count = redis.call("incr", KEYS[1])
local ttl = redis.call("pttl", KEYS[1])
if count == 1 or ttl < 0 then
	redis.call("pexpire", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

type liveStore struct {
	chainLocks *chainLockStore
	rateLimits *rateLimitStore
}

func NewLiveStore(rdb *redis.Client, numOfRetries int) ports.LiveStore {
	return &liveStore{
		chainLocks: &chainLockStore{rdb: rdb, numOfRetries: numOfRetries},
		rateLimits: &rateLimitStore{rdb: rdb},
	}
}

func (s *liveStore) ChainLocks() ports.ChainLockStore { return s.chainLocks }
func (s *liveStore) RateLimits() ports.RateLimitStore { return s.rateLimits }

type chainLockStore struct {
	rdb          *redis.Client
	numOfRetries int
}

func (s *chainLockStore) Lock(ctx context.Context, chainID string) (func(), error) {
	key := chainLockKeyPrefix + chainID
	holder := uuid.New().String()

	for attempt := 0; ; attempt++ {
		ok, err := s.rdb.SetNX(ctx, key, holder, lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire chain lock: %w", err)
		}
		if ok {
			break
		}
		if attempt >= s.numOfRetries {
			return nil, fmt.Errorf("chain %s is locked", chainID)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryWait):
		}
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, s.rdb, []string{key}, holder).Err()
	}
	return release, nil
}

type rateLimitStore struct {
	rdb *redis.Client
}

func (s *rateLimitStore) Hit(
	ctx context.Context, key string, window time.Duration,
) (int64, time.Time, error) {
	fullKey := rateLimitKeyPrefix + key

	res, err := hitScript.Run(ctx, s.rdb, []string{fullKey}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to bump rate counter: %w", err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected rate counter reply %v", res)
	}

	count, ttl := res[0], time.Duration(res[1])*time.Millisecond
	return count, time.Now().Add(ttl), nil
}
