package ratelimit

import (
	"context"
	"strings"
	"testing"

	"github.com/redis/go-redis/v9"
)

func TestRedisStoreKeys(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	store := NewRedisStoreWithClient(client, "")
	defer func() { _ = store.Close() }()

	a := store.redisKey("203.0.113.7")
	b := store.redisKey("203.0.113.8")

	if !strings.HasPrefix(a, DefaultRedisPrefix) {
		t.Errorf("expected default prefix, got %q", a)
	}
	if a == b {
		t.Error("different clients must map to different keys")
	}
	if a != store.redisKey("203.0.113.7") {
		t.Error("key derivation must be stable")
	}

	long := store.redisKey(strings.Repeat("x", 10_000))
	if len(long) > len(DefaultRedisPrefix)+16 {
		t.Errorf("hashed key should be bounded, got %d bytes", len(long))
	}
}

func TestNewRedisStore_InvalidURL(t *testing.T) {
	_, err := NewRedisStore(context.Background(), RedisConfig{URL: "not a url"})
	if err == nil {
		t.Fatal("expected error for invalid URL")
	}
	if !strings.Contains(err.Error(), "invalid redis URL") {
		t.Errorf("unexpected error: %v", err)
	}
}
