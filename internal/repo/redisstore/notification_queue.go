package redisstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/ragzy-ai/ragzy-api/internal/config"
	"github.com/ragzy-ai/ragzy-api/internal/models"
	"github.com/ragzy-ai/ragzy-api/pkg/logger/log"
)

// NotificationQueue keeps delayed notifications in a sorted set scored by due
// time, so pending work survives restarts.
type NotificationQueue interface {
	Enqueue(ctx context.Context, job models.NotificationJob) error
	// ClaimDue removes and returns up to limit jobs due at or before now.
	// A job removed by another instance is not returned.
	ClaimDue(ctx context.Context, now time.Time, limit int64) ([]models.NotificationJob, error)
	Len(ctx context.Context) (int64, error)
}

type notificationQueue struct {
	client *redis.Client
	key    string
}

func NewNotificationQueue(client *redis.Client, conf *config.Config) NotificationQueue {
	return &notificationQueue{
		client: client,
		key:    conf.Notification.QueueKey,
	}
}

func (q *notificationQueue) Enqueue(ctx context.Context, job models.NotificationJob) error {
	member, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	err = q.client.ZAdd(ctx, q.key, redis.Z{
		Score:  float64(job.DueAt.UnixMilli()),
		Member: string(member),
	}).Err()
	if err != nil {
		return fmt.Errorf("zadd: %w", err)
	}
	return nil
}

func (q *notificationQueue) ClaimDue(ctx context.Context, now time.Time, limit int64) ([]models.NotificationJob, error) {
	members, err := q.client.ZRangeByScore(ctx, q.key, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: limit,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("zrangebyscore: %w", err)
	}

	jobs := make([]models.NotificationJob, 0, len(members))
	for _, member := range members {
		removed, err := q.client.ZRem(ctx, q.key, member).Result()
		if err != nil {
			return jobs, fmt.Errorf("zrem: %w", err)
		}
		if removed == 0 {
			continue
		}
		var job models.NotificationJob
		if err := json.Unmarshal([]byte(member), &job); err != nil {
			log.Errorw(ctx, "dropping malformed notification job", "member", member, "error", err)
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (q *notificationQueue) Len(ctx context.Context) (int64, error) {
	return q.client.ZCard(ctx, q.key).Result()
}
