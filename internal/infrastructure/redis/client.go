package redisinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/heimu09/ApartXCleaning/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewClient builds a Redis client from cfg.RedisURL with bounded timeouts, so
// an unreachable server fails requests instead of hanging them.
func NewClient(cfg *config.Config) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.MaxRetries = 2
	opt.DialTimeout = cfg.RedisTimeout
	opt.ReadTimeout = cfg.RedisTimeout
	opt.WriteTimeout = cfg.RedisTimeout
	opt.PoolTimeout = cfg.RedisTimeout + time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute
	return redis.NewClient(opt), nil
}

// Ping checks connectivity within timeout.
func Ping(ctx context.Context, client redis.Cmdable, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
