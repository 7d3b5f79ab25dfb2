package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Record is the fixed-window state for one client key.
type Record struct {
	Count   int
	ResetAt time.Time
}

// MemoryStore implements Store with a process-local map.
// This is suitable for single-instance deployments.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*Record
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
	}
}

// Hit implements Store. The whole check runs under one lock, so concurrent
// hits on the same key can never both take the last slot.
func (s *MemoryStore) Hit(_ context.Context, key string, limit int, window time.Duration, now time.Time) (Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok || !now.Before(rec.ResetAt) {
		rec = &Record{Count: 1, ResetAt: now.Add(window)}
		s.records[key] = rec
		return Decision{Allowed: true, Count: 1, Limit: limit, ResetAt: rec.ResetAt}, nil
	}

	if rec.Count >= limit {
		return Decision{Allowed: false, Count: rec.Count, Limit: limit, ResetAt: rec.ResetAt}, nil
	}

	rec.Count++
	return Decision{Allowed: true, Count: rec.Count, Limit: limit, ResetAt: rec.ResetAt}, nil
}

// Get returns a copy of the record for key.
func (s *MemoryStore) Get(key string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Len returns the number of tracked keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Sweep removes records whose window ended at or before now.
// An expired record and a missing one are handled identically by Hit.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, rec := range s.records {
		if !now.Before(rec.ResetAt) {
			delete(s.records, key)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps expired records every interval until ctx is done.
func (s *MemoryStore) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.Sweep(time.Now()); n > 0 {
				slog.Debug("rate limit records swept", "removed", n, "remaining", s.Len())
			}
		case <-ctx.Done():
			return
		}
	}
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}
