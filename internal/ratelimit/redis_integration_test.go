//go:build integration

package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startRedis runs a throwaway Redis container and returns its URL.
func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start redis container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	endpoint, err := container.Endpoint(ctx, "redis")
	require.NoError(t, err)
	return endpoint
}

func TestRedisStore_FixedWindow(t *testing.T) {
	url := startRedis(t)
	ctx := context.Background()

	store, err := NewRedisStore(ctx, RedisConfig{URL: url, Prefix: "test:fixed:"})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	now := time.Now().Truncate(time.Millisecond)
	for i := 1; i <= 30; i++ {
		d, err := store.Hit(ctx, "203.0.113.7", 30, time.Minute, now)
		require.NoError(t, err)
		require.True(t, d.Allowed)
		require.Equal(t, i, d.Count)
	}

	d, err := store.Hit(ctx, "203.0.113.7", 30, time.Minute, now.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, now.Add(time.Minute), d.ResetAt)

	d, err = store.Hit(ctx, "203.0.113.7", 30, time.Minute, now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Count)
}

func TestRedisStore_ConcurrentHits(t *testing.T) {
	url := startRedis(t)
	ctx := context.Background()

	store, err := NewRedisStore(ctx, RedisConfig{URL: url, Prefix: "test:concurrent:"})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	now := time.Now()
	var allowed int32
	var wg sync.WaitGroup
	for i := 0; i < 60; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := store.Hit(ctx, "shared", 30, time.Minute, now)
			if err == nil && d.Allowed {
				atomic.AddInt32(&allowed, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(30), atomic.LoadInt32(&allowed))
}
