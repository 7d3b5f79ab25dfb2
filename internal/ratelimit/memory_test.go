package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("FirstHitCreatesRecord", func(t *testing.T) {
		s := NewMemoryStore()

		d, err := s.Hit(ctx, "k", 2, time.Minute, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !d.Allowed || d.Count != 1 {
			t.Fatalf("expected allowed with count 1, got %+v", d)
		}
		if !d.ResetAt.Equal(now.Add(time.Minute)) {
			t.Errorf("expected reset at %v, got %v", now.Add(time.Minute), d.ResetAt)
		}
	})

	t.Run("DeniedHitDoesNotIncrement", func(t *testing.T) {
		s := NewMemoryStore()
		for i := 0; i < 4; i++ {
			_, _ = s.Hit(ctx, "k", 2, time.Minute, now)
		}

		rec, ok := s.Get("k")
		if !ok {
			t.Fatal("expected record")
		}
		if rec.Count != 2 {
			t.Errorf("expected count to stay at limit 2, got %d", rec.Count)
		}
	})

	t.Run("SweepRemovesOnlyExpired", func(t *testing.T) {
		s := NewMemoryStore()
		_, _ = s.Hit(ctx, "old", 5, time.Minute, now)
		_, _ = s.Hit(ctx, "fresh", 5, time.Minute, now.Add(30*time.Second))

		removed := s.Sweep(now.Add(time.Minute))
		if removed != 1 {
			t.Errorf("expected 1 record removed, got %d", removed)
		}
		if _, ok := s.Get("old"); ok {
			t.Error("expired record should be gone")
		}
		if _, ok := s.Get("fresh"); !ok {
			t.Error("active record should remain")
		}
		if s.Len() != 1 {
			t.Errorf("expected 1 record left, got %d", s.Len())
		}
	})

	t.Run("JanitorStopsOnCancel", func(t *testing.T) {
		s := NewMemoryStore()
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			s.RunJanitor(ctx, time.Millisecond)
			close(done)
		}()
		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("janitor did not stop after cancel")
		}
	})

	t.Run("CloseIsNoOp", func(t *testing.T) {
		if err := NewMemoryStore().Close(); err != nil {
			t.Fatalf("unexpected error on close: %v", err)
		}
	})
}
