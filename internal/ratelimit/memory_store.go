package ratelimit

import (
	"context"
	"sync"
	"time"
)

type counter struct {
	count     int
	expiresAt time.Time
}

// MemoryStore is a single-process Store for development and tests.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*counter
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: make(map[string]*counter)}
}

// Bump mirrors the Postgres store's conditional upsert under a mutex.
func (s *MemoryStore) Bump(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[key]
	if !ok || c.expiresAt.Before(now) {
		s.counters[key] = &counter{count: 1, expiresAt: now.Add(window)}
		return 1, true, nil
	}
	if c.count >= limit {
		return c.count, false, nil
	}
	c.count++
	return c.count, true, nil
}

// Sweep deletes expired counters.
func (s *MemoryStore) Sweep(ctx context.Context, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, c := range s.counters {
		if c.expiresAt.Before(now) {
			delete(s.counters, key)
		}
	}
	return nil
}

// Len reports how many counters are live. Intended for tests.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counters)
}

var _ Store = (*MemoryStore)(nil)
