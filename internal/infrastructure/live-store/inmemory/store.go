package inmemorylivestore

import (
	"context"
	"sync"
	"time"

	"github.com/morphcodes/morphd/internal/core/ports"
)

type liveStore struct {
	chainLocks *chainLockStore
	rateLimits *rateLimitStore
}

func NewLiveStore() ports.LiveStore {
	return &liveStore{
		chainLocks: newChainLockStore(),
		rateLimits: newRateLimitStore(),
	}
}

func (s *liveStore) ChainLocks() ports.ChainLockStore { return s.chainLocks }
func (s *liveStore) RateLimits() ports.RateLimitStore { return s.rateLimits }

type chainLockStore struct {
	mtx   sync.Mutex
	locks map[string]*sync.Mutex
}

func newChainLockStore() *chainLockStore {
	return &chainLockStore{locks: make(map[string]*sync.Mutex)}
}

// Lock blocks until the per-chain mutex is held or ctx expires. Locks for
// distinct chains never contend.
func (s *chainLockStore) Lock(ctx context.Context, chainID string) (func(), error) {
	s.mtx.Lock()
	lock, ok := s.locks[chainID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[chainID] = lock
	}
	s.mtx.Unlock()

	acquired := make(chan struct{})
	go func() {
		lock.Lock()
		close(acquired)
	}()

	select {
	case <-acquired:
		return lock.Unlock, nil
	case <-ctx.Done():
		// The goroutine will still acquire eventually, release right away.
		go func() {
			<-acquired
			lock.Unlock()
		}()
		return nil, ctx.Err()
	}
}

type rateLimitCounter struct {
	count   int64
	resetAt time.Time
}

type rateLimitStore struct {
	mtx      sync.Mutex
	counters map[string]*rateLimitCounter
}

func newRateLimitStore() *rateLimitStore {
	return &rateLimitStore{counters: make(map[string]*rateLimitCounter)}
}

func (s *rateLimitStore) Hit(
	_ context.Context, key string, window time.Duration,
) (int64, time.Time, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := time.Now()
	counter, ok := s.counters[key]
	if !ok || now.After(counter.resetAt) {
		counter = &rateLimitCounter{resetAt: now.Add(window)}
		s.counters[key] = counter
	}
	counter.count++
	return counter.count, counter.resetAt, nil
}
