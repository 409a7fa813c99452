package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/AnshRaj112/pinboard-backend/internal/database"
)

const (
	// CacheKeyPrefix is the Redis key prefix for cached data
	CacheKeyPrefix = "cache:"
	// DefaultCacheTTL balances board freshness against Mongo load; writers
	// invalidate eagerly so this is only an upper bound on staleness.
	DefaultCacheTTL = 15 * time.Minute
	// MinCacheTTL is 1 minute
	MinCacheTTL = 1 * time.Minute
	// MaxCacheTTL is 1 hour
	MaxCacheTTL = 1 * time.Hour
)

// CacheService provides JSON value caching on Redis.
type CacheService struct{}

// Get retrieves a value from cache. A miss is not an error.
func (c *CacheService) Get(key string, dest interface{}) (bool, error) {
	if database.RedisClient == nil {
		return false, nil
	}
	ctx := context.Background()

	val, err := database.RedisClient.Get(ctx, CacheKeyPrefix+key).Result()
	if err != nil {
		return false, nil // Cache miss, not an error
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}

	return true, nil
}

// Set stores a value in cache with the default TTL.
func (c *CacheService) Set(key string, value interface{}) error {
	return c.SetWithTTL(key, value, DefaultCacheTTL)
}

// SetWithTTL stores a value in cache with a custom TTL (clamped).
func (c *CacheService) SetWithTTL(key string, value interface{}, ttl time.Duration) error {
	if database.RedisClient == nil {
		return nil
	}
	if ttl < MinCacheTTL {
		ttl = MinCacheTTL
	}
	if ttl > MaxCacheTTL {
		ttl = MaxCacheTTL
	}

	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return database.RedisClient.Set(context.Background(), CacheKeyPrefix+key, jsonData, ttl).Err()
}

// Delete removes a value from cache.
func (c *CacheService) Delete(key string) error {
	if database.RedisClient == nil {
		return nil
	}
	return database.RedisClient.Del(context.Background(), CacheKeyPrefix+key).Err()
}

// Global cache service instance
var Cache = &CacheService{}
