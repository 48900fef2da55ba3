package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/yaron8/telemetry-dashboard/ingester/config"
	"github.com/yaron8/telemetry-dashboard/logi"
)

// NewRedisClient connects to the Redis instance described by cfg.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: "", // no password set
		DB:       0,  // use default DB
		Protocol: 2,
	})
}

// RedisSource reads snapshots published on a Redis pub/sub channel.
type RedisSource struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

func NewRedisSource(client *redis.Client, channel string) *RedisSource {
	return &RedisSource{
		client:  client,
		channel: channel,
		logger:  logi.GetLogger(),
	}
}

// Close releases the Redis client.
func (s *RedisSource) Close() error {
	return s.client.Close()
}

func (s *RedisSource) Run(ctx context.Context, h Handler) error {
	if h == nil {
		return ErrNoHandler
	}

	pubsub := s.client.Subscribe(ctx, s.channel)
	defer pubsub.Close()

	// wait for the subscription to be confirmed so connection errors surface here
	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to subscribe to %s: %w", s.channel, err)
	}
	s.logger.Info("Redis source subscribed", "channel", s.channel)

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				s.logger.Info("Redis subscription closed", "channel", s.channel)
				return nil
			}
			deliver(h, []byte(msg.Payload), s.logger)
		}
	}
}
