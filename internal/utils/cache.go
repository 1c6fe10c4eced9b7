package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"errors"        // Sentinel comparison
	"time"          // Time durations

	gocache "github.com/patrickmn/go-cache" // In-process expiring cache
	"github.com/redis/go-redis/v9"          // Redis client
)

// ErrCacheMiss is returned by Cache.Get when the key does not exist
var ErrCacheMiss = errors.New("cache miss")

// Cache stores raw values with a TTL
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// RedisCache is a Cache backed by Redis
type RedisCache struct {
	rdb *redis.Client // Redis client
}

// NewRedisCache wraps a Redis client
func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

// Get reads a key from Redis
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.rdb.Get(ctx, key).Bytes() // Get value from Redis
	if err == redis.Nil {
		return nil, ErrCacheMiss // Key does not exist
	}
	return val, err
}

// Set writes a key with a TTL
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err() // Set value in Redis with TTL
}

// Delete removes keys from Redis
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err() // Delete keys from Redis
}

// MemoryCache is an in-process Cache used when no Redis is configured
type MemoryCache struct {
	items *gocache.Cache // Expiring key/value store
}

// memoryCleanupInterval is how often expired keys are purged
const memoryCleanupInterval = 5 * time.Minute

// NewMemoryCache returns an empty in-process cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: gocache.New(gocache.NoExpiration, memoryCleanupInterval)}
}

// Get returns the value unless it expired
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	val, ok := c.items.Get(key) // Expired keys read as missing
	if !ok {
		return nil, ErrCacheMiss // Key does not exist
	}
	return val.([]byte), nil
}

// Set stores the value; a non-positive ttl never expires
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration // Same as a Redis key without TTL
	}
	c.items.Set(key, value, ttl) // Set value with TTL
	return nil
}

// Delete removes keys
func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		c.items.Delete(key) // Delete key
	}
	return nil
}

// GetCache retrieves a value from the cache and unmarshals it into dest
func GetCache(ctx context.Context, cache Cache, key string, dest any) (bool, error) {
	val, err := cache.Get(ctx, key) // Get value from cache
	if errors.Is(err, ErrCacheMiss) {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other cache error
	}
	return true, json.Unmarshal(val, dest) // Unmarshal JSON into dest
}

// SetCache sets a value in the cache with a specified TTL
func SetCache(ctx context.Context, cache Cache, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return cache.Set(ctx, key, b, ttl) // Set value with TTL
}

// DeleteCache deletes keys from the cache
func DeleteCache(ctx context.Context, cache Cache, keys ...string) error {
	return cache.Delete(ctx, keys...) // Delete keys
}
