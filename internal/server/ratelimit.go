package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitConfig enables a global token bucket plus, when ClientLimit is
// set, a fixed window per client IP on mutating requests. Providing a Redis
// address moves the per-client window into Redis so replicas share state.
type RateLimitConfig struct {
	GlobalRPS     float64
	GlobalBurst   int
	ClientLimit   int
	ClientWindow  time.Duration
	RedisAddr     string
	RedisUsername string
	RedisPassword string
	RedisTimeout  time.Duration
	RedisPoolSize int
}

type windowStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error)
	Ping(ctx context.Context) error
}

type rateLimiter struct {
	global        *tokenBucket
	clientLimit   int
	clientWindow  time.Duration
	clientMu      sync.Mutex
	clientBuckets map[string]*clientBucket
	store         windowStore
}

type clientBucket struct {
	bucket   *tokenBucket
	lastSeen time.Time
}

func newRateLimiter(cfg RateLimitConfig) *rateLimiter {
	rl := &rateLimiter{
		clientLimit:   cfg.ClientLimit,
		clientWindow:  cfg.ClientWindow,
		clientBuckets: make(map[string]*clientBucket),
	}
	if cfg.GlobalRPS > 0 {
		burst := cfg.GlobalBurst
		if burst <= 0 {
			burst = int(cfg.GlobalRPS)
			if burst < 1 {
				burst = 1
			}
		}
		rl.global = newTokenBucket(cfg.GlobalRPS, burst)
	}
	if rl.clientWindow <= 0 {
		rl.clientWindow = time.Minute
	}
	if cfg.RedisAddr != "" && rl.clientLimit > 0 {
		rl.store = newRedisWindowStore(cfg)
	}
	return rl
}

func (r *rateLimiter) AllowRequest() bool {
	if r == nil || r.global == nil {
		return true
	}
	return r.global.Allow()
}

// AllowClient applies the per-client window. With a Redis store the count is
// shared across replicas; otherwise each process keeps its own buckets.
func (r *rateLimiter) AllowClient(ctx context.Context, key string) (bool, time.Duration, error) {
	if r == nil || r.clientLimit <= 0 {
		return true, 0, nil
	}
	if r.store != nil {
		return r.store.Allow(ctx, fmt.Sprintf("items:ratelimit:%s", key), r.clientLimit, r.clientWindow)
	}

	if key == "" {
		key = "unknown"
	}
	r.clientMu.Lock()
	entry, exists := r.clientBuckets[key]
	if !exists {
		rate := float64(r.clientLimit) / r.clientWindow.Seconds()
		if rate <= 0 {
			rate = 1 / r.clientWindow.Seconds()
		}
		entry = &clientBucket{bucket: newTokenBucket(rate, r.clientLimit)}
		r.clientBuckets[key] = entry
	}
	entry.lastSeen = time.Now()
	r.cleanupLocked()
	r.clientMu.Unlock()

	if entry.bucket.Allow() {
		return true, 0, nil
	}
	return false, time.Second, nil
}

// Ping reports the health of the Redis window store, when one is configured.
func (r *rateLimiter) Ping(ctx context.Context) error {
	if r == nil || r.store == nil {
		return nil
	}
	return r.store.Ping(ctx)
}

func (r *rateLimiter) cleanupLocked() {
	if len(r.clientBuckets) == 0 {
		return
	}
	cutoff := time.Now().Add(-2 * r.clientWindow)
	for key, entry := range r.clientBuckets {
		if entry.lastSeen.Before(cutoff) {
			delete(r.clientBuckets, key)
		}
	}
}

type redisWindowStore struct {
	client  *redis.Client
	timeout time.Duration
}

func newRedisWindowStore(cfg RateLimitConfig) *redisWindowStore {
	timeout := cfg.RedisTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Username: cfg.RedisUsername,
		Password: cfg.RedisPassword,
		PoolSize: cfg.RedisPoolSize,
	})
	return &redisWindowStore{client: client, timeout: timeout}
}

func (s *redisWindowStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return false, 0, err
		}
	}
	if count <= int64(limit) {
		return true, 0, nil
	}
	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	if ttl < 0 {
		return false, window, nil
	}
	return false, ttl, nil
}

func (s *redisWindowStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

type tokenBucket struct {
	mu        sync.Mutex
	rate      float64
	capacity  float64
	tokens    float64
	lastCheck time.Time
}

func newTokenBucket(rate float64, burst int) *tokenBucket {
	if rate <= 0 {
		rate = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &tokenBucket{
		rate:      rate,
		capacity:  float64(burst),
		tokens:    float64(burst),
		lastCheck: time.Now(),
	}
}

func (b *tokenBucket) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastCheck).Seconds()
	b.lastCheck = now
	b.tokens += elapsed * b.rate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}
