// Package ratelimit implements per-client fixed-window request limiting.
// Counters live behind the Store interface so the in-memory default can be
// swapped for Redis in multi-instance deployments.
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultLimit is the number of requests admitted per window.
	DefaultLimit = 30

	// DefaultWindow is the fixed window length.
	DefaultWindow = 60 * time.Second

	// AnonymousKey is the shared bucket for callers without a forwarded address.
	AnonymousKey = "anonymous"
)

// Decision is the outcome of consuming one request slot.
type Decision struct {
	Allowed bool
	// Count is the number of requests admitted in the current window.
	Count   int
	Limit   int
	ResetAt time.Time
}

// RetryAfter returns how long a denied caller should wait, rounded up to
// whole seconds and never less than one second.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	wait := d.ResetAt.Sub(now)
	if wait < time.Second {
		return time.Second
	}
	return (wait + time.Second - 1).Truncate(time.Second)
}

// Store holds fixed-window counters.
// Implementations must perform the read-check-increment for a key atomically.
type Store interface {
	// Hit consumes one slot for key at time now.
	Hit(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (Decision, error)

	// Close releases any resources held by the store.
	Close() error
}

// Config holds limiter settings.
type Config struct {
	Limit  int
	Window time.Duration
}

// Limiter applies a fixed-window limit using a Store.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
	now    func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New creates a Limiter. Zero config values fall back to the defaults.
func New(store Store, cfg Config, opts ...Option) (*Limiter, error) {
	if store == nil {
		return nil, fmt.Errorf("rate limit store is required")
	}
	if cfg.Limit < 0 || cfg.Window < 0 {
		return nil, fmt.Errorf("rate limit must not be negative (limit=%d, window=%s)", cfg.Limit, cfg.Window)
	}
	l := &Limiter{
		store:  store,
		limit:  cfg.Limit,
		window: cfg.Window,
		now:    time.Now,
	}
	if l.limit == 0 {
		l.limit = DefaultLimit
	}
	if l.window == 0 {
		l.window = DefaultWindow
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Allow consumes one request slot for key.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	if key == "" {
		key = AnonymousKey
	}
	d, err := l.store.Hit(ctx, key, l.limit, l.window, l.now())
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit store: %w", err)
	}
	return d, nil
}

// Now returns the limiter's current time.
func (l *Limiter) Now() time.Time { return l.now() }

// Limit returns the configured requests per window.
func (l *Limiter) Limit() int { return l.limit }

// Window returns the configured window length.
func (l *Limiter) Window() time.Duration { return l.window }

// ClientKey derives the rate limit key from a forwarded-address header value.
// The first comma-separated entry is used; an empty value maps to AnonymousKey.
func ClientKey(forwardedFor string) string {
	first, _, _ := strings.Cut(forwardedFor, ",")
	if first = strings.TrimSpace(first); first != "" {
		return first
	}
	return AnonymousKey
}
