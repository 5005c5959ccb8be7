package xredis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ecopanier/backend/pkg/xcontext"
	"github.com/redis/go-redis/v9"
)

type Client interface {
	// Publish pushes a JSON-encoded message onto a channel. Subscribers are
	// external; nothing in this process depends on delivery.
	Publish(ctx context.Context, channel string, obj any) error
}

type client struct {
	redisClient *redis.Client
}

func NewClient(ctx context.Context) (*client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:            xcontext.Configs(ctx).Redis.Addr,
		MaxRetries:      5,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &client{redisClient: redisClient}, nil
}

func (c *client) Publish(ctx context.Context, channel string, obj any) error {
	b, err := json.Marshal(obj)
	if err != nil {
		return err
	}

	return c.redisClient.Publish(ctx, channel, b).Err()
}
