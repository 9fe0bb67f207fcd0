package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter is a fixed-window request counter stored in Redis
type Limiter struct {
	client   redis.Cmdable
	requests int
	window   time.Duration
}

// NewLimiter allows requests per window for each (purpose, key) pair
func NewLimiter(client redis.Cmdable, requests int, window time.Duration) *Limiter {
	return &Limiter{
		client:   client,
		requests: requests,
		window:   window,
	}
}

// Allow records a request for key under purpose and reports whether it is
// within the limit. The window starts with the first request.
//
// INCR and EXPIRE NX run in one MULTI block on every call, so a counter
// whose first EXPIRE was lost still gets its TTL on the next request.
// EXPIRE NX needs Redis 7.0 or newer.
func (l *Limiter) Allow(ctx context.Context, purpose, key string) (bool, error) {
	redisKey := rateLimitKey(purpose, key)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, l.window)
		return nil
	})
	if err != nil {
		return true, fmt.Errorf("failed to record request: %w", err)
	}

	return incr.Val() <= int64(l.requests), nil
}

// rateLimitKey generates the Redis key for a purpose-scoped counter
func rateLimitKey(purpose, key string) string {
	return fmt.Sprintf("rate_limit:%s:%s", purpose, key)
}

// Noop never limits
type Noop struct{}

func (Noop) Allow(context.Context, string, string) (bool, error) {
	return true, nil
}
