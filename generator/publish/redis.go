// Package publish forwards encoded snapshots to consumers that are not
// connected to the generator directly.
package publish

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/yaron8/telemetry-dashboard/generator/config"
	"github.com/yaron8/telemetry-dashboard/logi"
)

// Publisher sends one encoded snapshot.
type Publisher interface {
	Publish(ctx context.Context, payload []byte) error
}

// Nop drops every snapshot. Used when publishing is disabled.
type Nop struct{}

func (Nop) Publish(context.Context, []byte) error { return nil }

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: "", // no password set
		DB:       0,  // use default DB
		Protocol: 2,
	})
}

// RedisPublisher publishes snapshots on a Redis pub/sub channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{
		client:  client,
		channel: channel,
		logger:  logi.GetLogger(),
	}
}

func (p *RedisPublisher) Publish(ctx context.Context, payload []byte) error {
	receivers, err := p.client.Publish(ctx, p.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.channel, err)
	}
	p.logger.Debug("snapshot published", "channel", p.channel, "receivers", receivers)
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
