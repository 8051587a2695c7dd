package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheKeyPrefix = "cache:"
	// DefaultCacheTTL is 8 hours; generation responses for identical
	// requests rarely need to be fresher than that
	DefaultCacheTTL = 8 * time.Hour
	// MinCacheTTL is 6 hours
	MinCacheTTL = 6 * time.Hour
	// MaxCacheTTL is 12 hours
	MaxCacheTTL = 12 * time.Hour
)

// CacheService caches generated text in Redis so identical generation
// requests don't burn upstream quota.
type CacheService struct {
	redis *redis.Client
}

func NewCacheService(rdb *redis.Client) *CacheService {
	return &CacheService{redis: rdb}
}

// GetString retrieves a cached value. A miss is (_, false, nil), not an error.
func (c *CacheService) GetString(ctx context.Context, key string) (string, bool, error) {
	val, err := c.redis.Get(ctx, cacheKeyPrefix+key).Result()
	if err != nil {
		return "", false, nil // cache miss
	}
	return val, true, nil
}

// SetString stores a value with the default TTL.
func (c *CacheService) SetString(ctx context.Context, key, value string) error {
	return c.SetStringWithTTL(ctx, key, value, DefaultCacheTTL)
}

// SetStringWithTTL stores a value with a custom TTL (clamped to 6-12 hours).
func (c *CacheService) SetStringWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < MinCacheTTL {
		ttl = MinCacheTTL
	}
	if ttl > MaxCacheTTL {
		ttl = MaxCacheTTL
	}
	return c.redis.Set(ctx, cacheKeyPrefix+key, value, ttl).Err()
}

// GenerationCacheKey derives a cache key from the serialized generation
// request, so any change in task, text, image or history misses.
func GenerationCacheKey(task string, payload []byte) string {
	sum := sha256.Sum256(payload)
	return "genai:" + task + ":" + hex.EncodeToString(sum[:])
}
