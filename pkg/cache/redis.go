package cache

import (
	"context"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// RedisCache implements a Redis-backed cache for server deployments.
// Entries rely on Redis expiration, so no metadata envelope is needed.
type RedisCache struct {
	client *backend.Client
}

// NewRedisCache creates a Redis cache connected to the given address.
func NewRedisCache(addr, password string, db int) Cache {
	client := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{client: client}
}

// NewRedisCacheFromClient creates a Redis cache from an existing client.
// Useful for tests and for sharing a client across components.
func NewRedisCacheFromClient(client *backend.Client) Cache {
	return &RedisCache{client: client}
}

// Get retrieves a value from Redis.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == backend.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, Retryable(err)
	}
	return data, true, nil
}

// Set stores a value in Redis. A zero TTL stores without expiration.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return Retryable(err)
	}
	return nil
}

// Delete removes a value from Redis.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return Retryable(err)
	}
	return nil
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ensure RedisCache implements Cache.
var _ Cache = (*RedisCache)(nil)
