package httpkit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestIPRateLimiterBlocksAfterBurst(t *testing.T) {
	limiter := NewIPRateLimiter(1, 2)
	ctx := context.Background()

	if !limiter.Allow(ctx, "10.0.0.1") {
		t.Fatal("first request should pass")
	}
	if !limiter.Allow(ctx, "10.0.0.1") {
		t.Fatal("second request should pass within burst")
	}
	if limiter.Allow(ctx, "10.0.0.1") {
		t.Fatal("third request should be throttled")
	}
	if !limiter.Allow(ctx, "10.0.0.2") {
		t.Fatal("different client must not share the budget")
	}
}

func TestRedisRateLimiterSharedWindow(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	limiter := NewRedisRateLimiter(client, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !limiter.Allow(ctx, "10.0.0.1") {
			t.Fatalf("request %d should pass within the window limit", i+1)
		}
	}
	if limiter.Allow(ctx, "10.0.0.1") {
		t.Fatal("fourth request in the window should be throttled")
	}
	if !limiter.Allow(ctx, "10.0.0.9") {
		t.Fatal("different client must not share the budget")
	}
}

func TestRedisRateLimiterFailsOpen(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	limiter := NewRedisRateLimiter(client, 1, time.Minute)

	srv.Close()

	if !limiter.Allow(context.Background(), "10.0.0.1") {
		t.Fatal("limiter must allow requests when redis is unreachable")
	}
}
