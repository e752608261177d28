package events

import (
	"context"

	"report-router/internal/common/errors"
	"report-router/internal/redis"
	"report-router/internal/routing"
)

// RedisPublisher sends routed events as JSON on a Redis pub/sub channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) (*RedisPublisher, error) {
	if client == nil {
		return nil, errors.ConfigError("redis client is required for redis events")
	}
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}, nil
}

func (p *RedisPublisher) PublishRouted(ctx context.Context, event routing.RoutedEvent) error {
	if err := p.client.Publish(ctx, p.channel, event); err != nil {
		return errors.ConnectionError("failed to publish routed event to redis", err).
			WithContext("channel", p.channel)
	}
	return nil
}
