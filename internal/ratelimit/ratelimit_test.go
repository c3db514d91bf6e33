package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T) *RateLimiter {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRateLimiterWithClient(client)
}

func TestAllowWithinLimit(t *testing.T) {
	rl := newTestLimiter(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		ok, count, err := rl.Allow(ctx, "client:1", 3, time.Minute)
		if err != nil {
			t.Fatalf("Allow #%d: %v", i, err)
		}
		if !ok {
			t.Fatalf("Allow #%d denied, limit is 3", i)
		}
		if count != i {
			t.Errorf("Allow #%d count = %d, want %d", i, count, i)
		}
	}

	ok, count, err := rl.Allow(ctx, "client:1", 3, time.Minute)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if ok {
		t.Error("fourth request allowed, limit is 3")
	}
	if count != 4 {
		t.Errorf("count = %d, want 4", count)
	}
}

func TestAllowIsolatesKeys(t *testing.T) {
	rl := newTestLimiter(t)
	ctx := context.Background()

	if _, _, err := rl.Allow(ctx, "client:1", 1, time.Minute); err != nil {
		t.Fatalf("Allow: %v", err)
	}
	ok, _, err := rl.Allow(ctx, "client:2", 1, time.Minute)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if !ok {
		t.Error("a different key was throttled by another key's counter")
	}
}

func TestNewRateLimiterRejectsBadURL(t *testing.T) {
	if _, err := NewRateLimiter("not-a-url"); err == nil {
		t.Fatal("NewRateLimiter accepted a malformed URL")
	}
}
