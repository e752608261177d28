// Package redis wraps go-redis with the connection handling the report
// router needs: a health probe, pub/sub for routed-report events and access
// to the raw client for the distributed execution lock.
package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"report-router/internal/common/errors"
)

const (
	defaultAddress     = "localhost:6379"
	defaultPoolSize    = 10
	defaultDialTimeout = 5 * time.Second
)

type Config struct {
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size"`
	// DialTimeout bounds the initial PING and each health probe.
	DialTimeout time.Duration `json:"dial_timeout"`
}

func (c *Config) applyDefaults() {
	if c.Address == "" {
		c.Address = defaultAddress
	}
	if c.PoolSize == 0 {
		c.PoolSize = defaultPoolSize
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = defaultDialTimeout
	}
}

type Client struct {
	rdb     *redis.Client
	timeout time.Duration
}

// NewClient connects to Redis and verifies the connection with a PING.
// Defaults are written back into config.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, errors.ConfigError("redis config is required")
	}
	config.applyDefaults()

	rdb := redis.NewClient(&redis.Options{
		Addr:        config.Address,
		Password:    config.Password,
		DB:          config.DB,
		PoolSize:    config.PoolSize,
		DialTimeout: config.DialTimeout,
	})
	client := &Client{rdb: rdb, timeout: config.DialTimeout}

	if err := client.Health(context.Background()); err != nil {
		_ = rdb.Close()
		return nil, errors.ConnectionError("failed to connect to Redis", err).
			WithContext("address", config.Address)
	}
	return client, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// Health pings the server within the configured dial timeout.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.rdb.Ping(ctx).Err()
}

// GetGoRedisClient exposes the underlying client for libraries that build on
// go-redis directly, such as redsync.
func (c *Client) GetGoRedisClient() *redis.Client {
	return c.rdb
}

// Publish sends message on channel. Strings and byte slices go out
// unchanged; any other value is JSON encoded.
func (c *Client) Publish(ctx context.Context, channel string, message interface{}) error {
	var payload []byte
	switch v := message.(type) {
	case string:
		payload = []byte(v)
	case []byte:
		payload = v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return errors.ValidationError("message is not JSON encodable").WithContext("channel", channel)
		}
		payload = encoded
	}
	return c.rdb.Publish(ctx, channel, payload).Err()
}

func (c *Client) Subscribe(ctx context.Context, channels ...string) *redis.PubSub {
	return c.rdb.Subscribe(ctx, channels...)
}
