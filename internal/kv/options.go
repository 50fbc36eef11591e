package kv

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// Option configures store construction.
type Option func(*storeConfig)

type storeConfig struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// WithRedisClient supplies the Redis connection for DriverRedis.
func WithRedisClient(c *redis.Client) Option {
	return func(cfg *storeConfig) { cfg.redisClient = c }
}

// WithTTL bounds how long values live.  Zero means the driver default
// (30 days for Redis, unbounded for memory).
func WithTTL(d time.Duration) Option {
	return func(cfg *storeConfig) { cfg.ttl = d }
}
