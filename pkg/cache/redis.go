package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a RedisCache.
type RedisConfig struct {
	Addr     string `toml:"addr" json:"addr"`
	Password string `toml:"password" json:"password,omitempty"`
	DB       int    `toml:"db" json:"db"`

	// Prefix is prepended to every key.
	Prefix string `toml:"prefix" json:"prefix"`

	// Attempts bounds retries of commands that fail on the network.
	Attempts int `toml:"attempts" json:"attempts"`
}

const (
	defaultRedisAttempts = 3
	redisRetryDelay      = 100 * time.Millisecond
)

// RedisCache stores entries in Redis with native expiry.
type RedisCache struct {
	client   *redis.Client
	prefix   string
	attempts int
}

// NewRedisCache connects to Redis and checks the connection.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = defaultRedisAttempts
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w: %w", cfg.Addr, ErrNetwork, err)
	}
	return &RedisCache{client: client, prefix: cfg.Prefix, attempts: cfg.Attempts}, nil
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	hit := false
	err := c.retry(ctx, func() error {
		b, err := c.client.Get(ctx, c.prefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		data, hit = b, true
		return nil
	})
	return data, hit, err
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.retry(ctx, func() error {
		return c.client.Set(ctx, c.prefix+key, data, ttl).Err()
	})
}

// Delete implements Cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.retry(ctx, func() error {
		return c.client.Del(ctx, c.prefix+key).Err()
	})
}

// Clear deletes every key under the cache's prefix and returns how many
// were removed. Without a prefix it refuses to touch the database.
func (c *RedisCache) Clear(ctx context.Context) (int, error) {
	if c.prefix == "" {
		return 0, errors.New("refusing to clear redis cache without a key prefix")
	}
	n := 0
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return n, err
		}
		n++
	}
	return n, iter.Err()
}

// Close implements Cache.
func (c *RedisCache) Close() error { return c.client.Close() }

// retry runs fn, retrying network failures with backoff.
func (c *RedisCache) retry(ctx context.Context, fn func() error) error {
	return RetryWithBackoff(ctx, c.attempts, redisRetryDelay, func() error {
		err := fn()
		var netErr net.Error
		if errors.As(err, &netErr) {
			return Retryable(fmt.Errorf("%w: %w", ErrNetwork, err))
		}
		return err
	})
}

var _ Cache = (*RedisCache)(nil)
