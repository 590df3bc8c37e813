// Package cache memoizes generated assist responses in redis.
package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assist"
)

type redisCache struct {
	client *redis.Client
	logger core.Logger
}

var _ assist.Cache = (*redisCache)(nil)

// New returns a redis-backed cache, or a pass-through when no redis
// address is configured.
func New(conf *core.Config, logger core.Logger) assist.Cache {
	if conf.Redis.Addr == "" {
		return noopCache{}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	return &redisCache{client: client, logger: logger}
}

func (c *redisCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() (string, error)) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == nil {
		return val, nil
	}
	if err != redis.Nil {
		// degraded redis should not break the feature
		c.logger.Warn("cache get failed", errors.Wrap(err, key))
	}

	val, err = fn()
	if err != nil {
		return "", err
	}
	if err := c.client.Set(ctx, key, val, ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", errors.Wrap(err, key))
	}
	return val, nil
}

type noopCache struct{}

func (noopCache) GetOrSet(_ context.Context, _ string, _ time.Duration, fn func() (string, error)) (string, error) {
	return fn()
}

// NewNoop returns a cache that always misses. Used in tests.
func NewNoop() assist.Cache {
	return noopCache{}
}
