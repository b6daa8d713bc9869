package infrastructure

import (
	"fmt"

	"go.uber.org/zap"

	"user-directory-service/internal/config"
	redisclient "user-directory-service/pkg/redis"
)

// NewRedisClient creates a new Redis client, or returns nil when Redis is not configured
func NewRedisClient(cfg *config.Config, l *zap.Logger) (*redisclient.Client, error) {
	if !cfg.Redis.Enabled() {
		l.Info("redis not configured, using in-process rate limiting")
		return nil, nil
	}

	rdb, err := redisclient.NewClient(redisclient.Config{
		Host:        cfg.Redis.Host,
		Port:        cfg.Redis.Port,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		MaxRetries:  3,
		PoolSize:    10,
		MinIdleConn: 2,
		ClientName:  cfg.Logger.ServiceName,
	}, l)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return rdb, nil
}
