package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/ragzy-ai/ragzy-api/internal/config"
	"github.com/ragzy-ai/ragzy-api/internal/repo/events"
	"github.com/ragzy-ai/ragzy-api/internal/repo/mongodb"
	"github.com/ragzy-ai/ragzy-api/internal/repo/redisstore"
	"github.com/ragzy-ai/ragzy-api/pkg/crypto"
)

const connectTimeout = 10 * time.Second

func newMongoDB(lc fx.Lifecycle, cfg *config.Config) (*mongodb.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	db, err := mongodb.NewConnection(ctx, cfg.Database.URI, cfg.Database.Database)
	if err != nil {
		return nil, fmt.Errorf("init mongo client: %w", err)
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return db.Client.Ping(ctx, nil)
		},
		OnStop: func(ctx context.Context) error {
			return db.Close(ctx)
		},
	})
	return db, nil
}

func newRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := redisstore.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init redis client: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func newPublisher(lc fx.Lifecycle, cfg *config.Config) (events.Publisher, error) {
	publisher, err := events.NewPublisher(cfg)
	if err != nil {
		return nil, fmt.Errorf("init event publisher: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return publisher.Close()
		},
	})
	return publisher, nil
}

func newCipher(cfg *config.Config) (crypto.Cipher, error) {
	return crypto.NewCipher(cfg.Crypto.EncryptionKey)
}
