package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiter decides whether a caller identified by key may proceed
type RateLimiter interface {
	// Allow reports whether the request fits the caller's window
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisRateLimiter implements a fixed-window counter in Redis.
// Suitable for multi-instance deployments sharing one limit.
type RedisRateLimiter struct {
	client    *redis.Client
	keyPrefix string
	limit     int
	window    time.Duration
	logger    *zap.Logger
}

// NewRedisRateLimiter creates a Redis-backed rate limiter
func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration, logger *zap.Logger) *RedisRateLimiter {
	if limit <= 0 {
		limit = 100
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisRateLimiter{
		client:    client,
		keyPrefix: "ratelimit:",
		limit:     limit,
		window:    window,
		logger:    logger,
	}
}

// Allow increments the caller's window counter and checks it against the limit.
// The first hit in a window sets the key's TTL.
// Redis failures allow the request; throttling is not worth an outage.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := l.keyPrefix + key

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		l.logger.Warn("Rate limiter unavailable", zap.Error(err))
		return true, fmt.Errorf("rate limit incr: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			l.logger.Warn("Failed to set rate limit window", zap.Error(err))
		}
	}
	return count <= int64(l.limit), nil
}

// InMemoryRateLimiter implements a fixed-window counter in process memory.
// Used when Redis is not configured; limits are per instance.
type InMemoryRateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	length  time.Duration
}

type window struct {
	count   int
	resetAt time.Time
}

// NewInMemoryRateLimiter creates an in-process rate limiter
func NewInMemoryRateLimiter(limit int, length time.Duration) *InMemoryRateLimiter {
	if limit <= 0 {
		limit = 100
	}
	if length <= 0 {
		length = time.Minute
	}
	return &InMemoryRateLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		length:  length,
	}
}

// Allow increments the caller's window counter and checks it against the limit
func (l *InMemoryRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		l.windows[key] = &window{count: 1, resetAt: now.Add(l.length)}
		l.evictExpired(now)
		return true, nil
	}
	w.count++
	return w.count <= l.limit, nil
}

// evictExpired drops stale windows; called with the lock held
func (l *InMemoryRateLimiter) evictExpired(now time.Time) {
	if len(l.windows) < 10000 {
		return
	}
	for key, w := range l.windows {
		if now.After(w.resetAt) {
			delete(l.windows, key)
		}
	}
}

// Ensure both limiters implement RateLimiter
var (
	_ RateLimiter = (*RedisRateLimiter)(nil)
	_ RateLimiter = (*InMemoryRateLimiter)(nil)
)
