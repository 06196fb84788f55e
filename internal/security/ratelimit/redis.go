package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Counter increments a key that expires after window. Implemented by the Redis client.
type Counter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisLimiter is a fixed window limiter shared by every server instance
type RedisLimiter struct {
	counter Counter
	maxReqs int
	window  time.Duration
	prefix  string
	now     func() time.Time
}

// NewRedisLimiter allows maxRequests per window per key across instances
func NewRedisLimiter(counter Counter, maxRequests int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		counter: counter,
		maxReqs: maxRequests,
		window:  window,
		prefix:  "estatehub:ratelimit",
		now:     time.Now,
	}
}

// Allow increments the counter of the window containing now
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if key == "" || l.maxReqs <= 0 {
		return true, nil
	}

	slot := l.now().UnixNano() / int64(l.window)
	n, err := l.counter.IncrWindow(ctx, fmt.Sprintf("%s:%s:%d", l.prefix, key, slot), l.window)
	if err != nil {
		return true, err
	}
	return n <= int64(l.maxReqs), nil
}
