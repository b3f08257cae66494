package persisted

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// These tests need a Redis/Valkey server. Set REDIS_ADDRESS (e.g.
// "localhost:6379") to run them; they are skipped otherwise.

func skipIfNoRedis(t *testing.T) string {
	t.Helper()
	addr := os.Getenv("REDIS_ADDRESS")
	if addr == "" {
		t.Skip("Skipping Redis tests: set REDIS_ADDRESS to enable")
	}
	return addr
}

func newTestRedisStore(t *testing.T, ttl time.Duration) Store {
	t.Helper()
	addr := skipIfNoRedis(t)

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush Redis test DB: %v", err)
	}
	_ = client.Close()

	s, err := New("redis", StoreConfig{
		TTL:          ttl,
		RedisAddress: addr,
		RedisDB:      15,
		KeyPrefix:    "lolomo-test:apq:",
	})
	if err != nil {
		t.Fatalf("New redis store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRedisStore_GetPut(t *testing.T) {
	ctx := context.Background()
	s := newTestRedisStore(t, time.Minute)

	if _, ok := s.Get(ctx, "missing"); ok {
		t.Error("Get on empty store should miss")
	}
	if err := s.Put(ctx, "h1", "{ lolomo { name } }"); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if got, ok := s.Get(ctx, "h1"); !ok || got != "{ lolomo { name } }" {
		t.Errorf("Get(h1) = %q, %v", got, ok)
	}
	_ = s.Put(ctx, "h2", "{ search(filter: {title: \"a\"}) { title } }")
	if n := s.Len(ctx); n != 2 {
		t.Errorf("Len() = %d, want 2", n)
	}
}

func TestRedisStore_TTL(t *testing.T) {
	ctx := context.Background()
	s := newTestRedisStore(t, 100*time.Millisecond)

	_ = s.Put(ctx, "short", "{ a }")
	time.Sleep(300 * time.Millisecond)

	if _, ok := s.Get(ctx, "short"); ok {
		t.Error("document should have expired")
	}
}

func TestRedisStore_Unreachable(t *testing.T) {
	_, err := New("redis", StoreConfig{RedisAddress: "127.0.0.1:1", TTL: time.Minute})
	if err == nil {
		t.Error("expected ping error for unreachable server")
	}
}
