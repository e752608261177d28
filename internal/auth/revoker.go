package auth

import (
	"context"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"report-router/internal/redis"
)

const revokedKeyPrefix = "jwt:blacklist:"

// RedisRevoker stores revoked tokens as expiring Redis keys.
type RedisRevoker struct {
	rdb *goredis.Client
}

func NewRedisRevoker(client *redis.Client) *RedisRevoker {
	return &RedisRevoker{rdb: client.GetGoRedisClient()}
}

func (r *RedisRevoker) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	return r.rdb.Set(ctx, revokedKeyPrefix+token, 1, ttl).Err()
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := r.rdb.Exists(ctx, revokedKeyPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
