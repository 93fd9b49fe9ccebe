package db

import (
	"context"
	"fmt"
	"time"

	"go-deposit-api/config"
	"go-deposit-api/logger"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis initializes the Redis client backing server-side sessions.
func ConnectRedis(cfg *config.Config) (*redis.Client, error) {
	addr := cfg.RedisAddr()

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logger.Log.WithError(err).Error("Failed to ping Redis")
		rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Log.WithField("address", addr).Info("Redis connection established successfully")
	return rdb, nil
}
