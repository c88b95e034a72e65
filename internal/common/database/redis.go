package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"readiness-workers/internal/common/config"
)

const (
	defaultRedisPoolSize    = 10
	defaultRedisDialTimeout = 5 * time.Second
	defaultRedisOpTimeout   = 500 * time.Millisecond
)

// RedisClient holds the connection pool of the assessment cache.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis builds a lazily connecting client. Cache operations use a short
// op timeout so a slow redis degrades to a cache miss.
func NewRedis(cfg config.RedisConfig) *RedisClient {
	opTimeout := millisOr(cfg.OpTimeout, defaultRedisOpTimeout)
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = defaultRedisPoolSize
	}

	return &RedisClient{Client: redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  millisOr(cfg.DialTimeout, defaultRedisDialTimeout),
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
		PoolSize:     poolSize,
		MinIdleConns: poolSize / 5,
	})}
}

func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", c.Client.Options().Addr, err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Close()
}

func millisOr(ms int, def time.Duration) time.Duration {
	if ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}
