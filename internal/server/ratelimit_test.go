package server

import (
	"context"
	"testing"
	"time"
)

func TestTokenBucketExhaustsItsBurst(t *testing.T) {
	bucket := newTokenBucket(0.001, 3)

	for i := 0; i < 3; i++ {
		if !bucket.Allow() {
			t.Fatalf("request %d should fit in the burst", i+1)
		}
	}
	if bucket.Allow() {
		t.Fatal("expected the bucket to be empty after the burst")
	}
}

func TestRateLimiterWithoutGlobalLimitAlwaysAllows(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{})

	for i := 0; i < 100; i++ {
		if !rl.AllowRequest() {
			t.Fatal("an unconfigured limiter must never deny")
		}
	}
}

func TestRateLimiterGlobalDenial(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{GlobalRPS: 0.001, GlobalBurst: 2})

	if !rl.AllowRequest() || !rl.AllowRequest() {
		t.Fatal("burst requests should pass")
	}
	if rl.AllowRequest() {
		t.Fatal("expected denial once the global bucket is drained")
	}
}

func TestAllowClientTracksEachKeySeparately(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{ClientLimit: 2, ClientWindow: time.Hour})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, _, err := rl.AllowClient(ctx, "10.0.0.1")
		if err != nil || !allowed {
			t.Fatalf("request %d for first client: allowed=%v err=%v", i+1, allowed, err)
		}
	}
	allowed, retryAfter, err := rl.AllowClient(ctx, "10.0.0.1")
	if err != nil {
		t.Fatalf("AllowClient: %v", err)
	}
	if allowed {
		t.Fatal("expected the first client to be over its window")
	}
	if retryAfter <= 0 {
		t.Fatal("denials must carry a retry hint")
	}

	allowed, _, err = rl.AllowClient(ctx, "10.0.0.2")
	if err != nil || !allowed {
		t.Fatalf("a fresh client must not inherit the first client's window: allowed=%v err=%v", allowed, err)
	}
}

func TestAllowClientWithoutLimitIsANoop(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{})

	for i := 0; i < 50; i++ {
		allowed, _, err := rl.AllowClient(context.Background(), "10.0.0.1")
		if err != nil || !allowed {
			t.Fatalf("unlimited client requests must pass: allowed=%v err=%v", allowed, err)
		}
	}
}

func TestAllowClientNormalizesEmptyKey(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{ClientLimit: 1, ClientWindow: time.Hour})
	ctx := context.Background()

	if allowed, _, _ := rl.AllowClient(ctx, ""); !allowed {
		t.Fatal("first anonymous request should pass")
	}
	if allowed, _, _ := rl.AllowClient(ctx, ""); allowed {
		t.Fatal("anonymous requests must share one bucket")
	}
}

func TestCleanupDropsIdleClients(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{ClientLimit: 1, ClientWindow: time.Millisecond})
	ctx := context.Background()

	if _, _, err := rl.AllowClient(ctx, "10.0.0.1"); err != nil {
		t.Fatalf("AllowClient: %v", err)
	}

	rl.clientMu.Lock()
	rl.clientBuckets["10.0.0.1"].lastSeen = time.Now().Add(-time.Minute)
	rl.cleanupLocked()
	_, exists := rl.clientBuckets["10.0.0.1"]
	rl.clientMu.Unlock()
	if exists {
		t.Fatal("expected the idle bucket to be evicted")
	}
}

func TestPingIsNilSafeWithoutRedis(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{ClientLimit: 5, ClientWindow: time.Minute})
	if err := rl.Ping(context.Background()); err != nil {
		t.Fatalf("in-memory limiter ping must be a no-op, got %v", err)
	}

	var nilLimiter *rateLimiter
	if err := nilLimiter.Ping(context.Background()); err != nil {
		t.Fatalf("nil limiter ping must be a no-op, got %v", err)
	}
}
