package repository

import (
	"context"
	"sync"
	"time"
)

// MemoryRateLimitStore keeps call timestamps in process memory. Suitable for
// single-process deployments and tests; state does not survive restarts.
type MemoryRateLimitStore struct {
	mu sync.RWMutex
	m  map[string][]time.Time
}

func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	return &MemoryRateLimitStore{m: make(map[string][]time.Time)}
}

func (s *MemoryRateLimitStore) Get(_ context.Context, providerID string) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stamps := s.m[providerID]
	out := make([]time.Time, len(stamps))
	copy(out, stamps)
	return out, nil
}

func (s *MemoryRateLimitStore) Put(_ context.Context, providerID string, stamps []time.Time) error {
	cp := make([]time.Time, len(stamps))
	copy(cp, stamps)
	s.mu.Lock()
	s.m[providerID] = cp
	s.mu.Unlock()
	return nil
}
