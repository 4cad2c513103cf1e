package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragzy-ai/ragzy-api/internal/config"
	"github.com/ragzy-ai/ragzy-api/internal/models"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNotificationQueueClaimDue(t *testing.T) {
	ctx := context.Background()
	conf := &config.Config{Notification: config.NotificationConfig{QueueKey: "test:notifications"}}
	q := NewNotificationQueue(newTestRedis(t), conf)

	now := time.Now()
	due := models.NotificationJob{MessageID: "m1", ConversationID: "c1", Sender: models.SenderCustomer, DueAt: now.Add(-time.Minute)}
	later := models.NotificationJob{MessageID: "m2", ConversationID: "c1", Sender: models.SenderBusiness, DueAt: now.Add(10 * time.Minute)}
	require.NoError(t, q.Enqueue(ctx, due))
	require.NoError(t, q.Enqueue(ctx, later))

	jobs, err := q.ClaimDue(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "m1", jobs[0].MessageID)
	assert.Equal(t, models.SenderCustomer, jobs[0].Sender)

	// a claimed job is gone for every other poller
	jobs, err = q.ClaimDue(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, jobs)

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	jobs, err = q.ClaimDue(ctx, now.Add(11*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "m2", jobs[0].MessageID)
}

func TestNotificationQueueRespectsLimit(t *testing.T) {
	ctx := context.Background()
	conf := &config.Config{Notification: config.NotificationConfig{QueueKey: "test:notifications"}}
	q := NewNotificationQueue(newTestRedis(t), conf)

	past := time.Now().Add(-time.Hour)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(ctx, models.NotificationJob{MessageID: id, DueAt: past}))
	}

	jobs, err := q.ClaimDue(ctx, time.Now(), 2)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestRateLimiter(t *testing.T) {
	ctx := context.Background()
	rl := NewRateLimiter(newTestRedis(t))

	for i := 0; i < 3; i++ {
		res, err := rl.CheckAndIncrement(ctx, "ip:1.2.3.4", 3, time.Hour)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2-i, res.Remaining)
		assert.True(t, res.ResetAt.After(time.Now()))
	}

	res, err := rl.CheckAndIncrement(ctx, "ip:1.2.3.4", 3, time.Hour)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)

	res, err = rl.CheckAndIncrement(ctx, "ip:5.6.7.8", 3, time.Hour)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}
