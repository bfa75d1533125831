package database

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/trainerdesk/backend/internal/config"
	"github.com/trainerdesk/backend/internal/logger"
)

// InitRedis returns nil when Redis is unreachable; callers degrade without it.
func InitRedis(cfg config.RedisConfig) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.L.Warnf("Redis connection failed, continuing without Redis: %v", err)
		return nil
	}

	logger.L.Info("Redis connection established")
	return rdb
}
