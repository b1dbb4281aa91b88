// Package ratelimit provides a Redis fixed-window rate limiter for the
// anonymous auth endpoints.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter counts hits per key in fixed one-window buckets backed by Redis.
// A nil Redis client disables limiting, which keeps local runs and tests
// working without infrastructure.
type Limiter struct {
	client *redis.Client
	window time.Duration
}

func NewLimiter(client *redis.Client, window time.Duration) *Limiter {
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{client: client, window: window}
}

// Allow records a hit for key and reports whether it is within limit. The
// counter expires with the window, so idle keys cost nothing.
func (l *Limiter) Allow(ctx context.Context, key string, limit int) (bool, error) {
	if l.client == nil || limit <= 0 {
		return true, nil
	}

	bucket := fmt.Sprintf("ratelimit:%s:%d", key, time.Now().Unix()/int64(l.window.Seconds()))

	pipe := l.client.TxPipeline()
	count := pipe.Incr(ctx, bucket)
	pipe.Expire(ctx, bucket, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return count.Val() <= int64(limit), nil
}
