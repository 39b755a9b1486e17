package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/medops-hub/workorder-service/internal/config"
)

// Redis wraps the go-redis client. A single address yields a standalone
// client and several yield a cluster client.
type Redis struct {
	Client redis.UniversalClient
}

// NewRedis connects to Redis using the provided configuration. An unreachable
// server is logged, not fatal: Redis only backs the sweep lock.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    cfg.Addrs,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Strings("addrs", cfg.Addrs), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.Strings("addrs", cfg.Addrs))
	}

	return &Redis{Client: client}
}

// Locker returns a lease locker over this connection with keys under prefix.
func (r *Redis) Locker(prefix string) *Locker {
	return NewLocker(r.Client, prefix)
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}
