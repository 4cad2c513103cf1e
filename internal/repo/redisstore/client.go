// Package redisstore holds the Redis backed stores: the delayed notification
// queue and the rate limit counters.
package redisstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ragzy-ai/ragzy-api/internal/config"
)

func NewClient(ctx context.Context, conf *config.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(conf.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
