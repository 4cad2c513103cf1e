package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

type RateLimiter interface {
	CheckAndIncrement(ctx context.Context, key string, limit int, window time.Duration) (RateLimitResult, error)
}

type rateLimiter struct {
	client *redis.Client
}

func NewRateLimiter(client *redis.Client) RateLimiter {
	return &rateLimiter{client: client}
}

// CheckAndIncrement counts the request in a fixed window bucket and reports
// whether it is still within limit.
func (rl *rateLimiter) CheckAndIncrement(ctx context.Context, key string, limit int, window time.Duration) (RateLimitResult, error) {
	now := time.Now()
	bucket := now.UnixMilli() / window.Milliseconds()
	windowKey := fmt.Sprintf("ratelimit:%s:%d", key, bucket)
	resetAt := time.UnixMilli((bucket + 1) * window.Milliseconds())

	pipe := rl.client.Pipeline()
	countCmd := pipe.ZCard(ctx, windowKey)
	pipe.ZAdd(ctx, windowKey, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: fmt.Sprintf("%d", now.UnixNano()),
	})
	pipe.Expire(ctx, windowKey, window*2)
	if _, err := pipe.Exec(ctx); err != nil {
		return RateLimitResult{Allowed: true, Remaining: limit, ResetAt: resetAt}, fmt.Errorf("rate limit pipeline: %w", err)
	}

	count := countCmd.Val()
	remaining := limit - int(count) - 1
	if remaining < 0 {
		remaining = 0
	}
	return RateLimitResult{
		Allowed:   count < int64(limit),
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}
