package app

import (
	"context"
	"strconv"
	"time"

	"report-router/internal/common/errors"
	"report-router/internal/common/logging"
	"report-router/internal/common/retry"
	"report-router/internal/redis"
)

func (app *App) initializeRedis() error {
	if !app.Config.RedisEnabled() {
		app.Logger.Info("Redis: Not configured (execution lock is process-local, token revocation disabled)")
		return nil
	}

	redisDB, _ := strconv.Atoi(app.Config.RedisDB)
	redisPoolSize, _ := strconv.Atoi(app.Config.RedisPoolSize)

	var redisClient *redis.Client
	err := retry.Do(context.Background(), retry.DefaultConfig(), func() error {
		var err error
		redisClient, err = redis.NewClient(&redis.Config{
			Address:  app.Config.RedisAddress,
			Password: app.Config.RedisPassword,
			DB:       redisDB,
			PoolSize: redisPoolSize,
		})
		return err
	}, app.logRetry("redis"))
	if err != nil {
		return errors.ConnectionError("failed to connect to Redis", err).WithContext("address", app.Config.RedisAddress)
	}

	app.RedisClient = redisClient
	app.Logger.Info("Redis: Connected", logging.Field{Key: "address", Value: app.Config.RedisAddress})
	app.Logger.Info("Distributed Locks: Enabled")
	return nil
}

func (app *App) logRetry(dependency string) func(int, error, time.Duration) {
	return func(attempt int, err error, wait time.Duration) {
		app.Logger.Warn("Dependency not reachable, retrying",
			logging.Field{Key: "dependency", Value: dependency},
			logging.Field{Key: "attempt", Value: attempt},
			logging.Field{Key: "wait", Value: wait.String()},
			logging.Err(err),
		)
	}
}
