package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache errors
var (
	ErrCacheNotAvailable = errors.New("cache not available")
	ErrCacheNotFound     = errors.New("cache not found")
)

// CacheConfig defines the TTL and key prefix of one cache family
type CacheConfig struct {
	TTL    time.Duration
	Prefix string
}

var (
	// Candidate lookups by mobile and admission ID
	CandidateCacheConfig = CacheConfig{
		TTL:    5 * time.Minute,
		Prefix: "candidate:",
	}

	// Public gallery and news listings
	ContentCacheConfig = CacheConfig{
		TTL:    10 * time.Minute,
		Prefix: "content:",
	}

	// Dashboard counters
	StatsCacheConfig = CacheConfig{
		TTL:    1 * time.Minute,
		Prefix: "stats:",
	}

	// Identity provider users
	UserCacheConfig = CacheConfig{
		TTL:    15 * time.Minute,
		Prefix: "user:",
	}
)

// CacheHelper stores JSON values under a key prefix. A nil client turns
// every operation into a miss so callers fall through to storage.
type CacheHelper struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCacheHelper creates a new cache helper instance
func NewCacheHelper(client *redis.Client, config CacheConfig) *CacheHelper {
	return &CacheHelper{
		client: client,
		prefix: config.Prefix,
		ttl:    config.TTL,
	}
}

// WithTTL returns a copy of the helper using ttl for writes
func (c *CacheHelper) WithTTL(ttl time.Duration) *CacheHelper {
	if ttl <= 0 {
		return c
	}
	clone := *c
	clone.ttl = ttl
	return &clone
}

// Key generates a cache key with prefix
func (c *CacheHelper) Key(key string) string {
	return c.prefix + key
}

// Get retrieves and unmarshals data from cache
func (c *CacheHelper) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrCacheNotAvailable
	}

	data, err := c.client.Get(ctx, c.Key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheNotFound
		}
		return fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}
	return nil
}

// Set marshals and stores data in cache with the helper TTL
func (c *CacheHelper) Set(ctx context.Context, key string, value interface{}) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}
	return c.client.Set(ctx, c.Key(key), data, c.ttl).Err()
}

// Delete removes keys from cache
func (c *CacheHelper) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}

	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = c.Key(key)
	}
	return c.client.Del(ctx, full...).Err()
}

// InvalidatePattern removes all keys matching a pattern using SCAN
func (c *CacheHelper) InvalidatePattern(ctx context.Context, pattern string) error {
	if c.client == nil {
		return nil
	}

	fullPattern := c.Key(pattern)
	iter := c.client.Scan(ctx, 0, fullPattern, 100).Iterator()

	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("cache delete error: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan pattern error: %w", err)
	}

	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("cache delete error: %w", err)
		}
	}
	return nil
}

// GetOrLoad implements cache-aside: on a miss it calls load, stores the
// result and copies it into dest. Cache failures never fail the call.
func (c *CacheHelper) GetOrLoad(ctx context.Context, key string, dest interface{}, load func() (interface{}, error)) error {
	err := c.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrCacheNotFound) && !errors.Is(err, ErrCacheNotAvailable) {
		slog.WarnContext(ctx, "Cache get error, loading from storage", "error", err, "key", c.Key(key))
	}

	value, err := load()
	if err != nil {
		return err
	}

	if err := c.Set(ctx, key, value); err != nil {
		slog.WarnContext(ctx, "Cache set error", "error", err, "key", c.Key(key))
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal result error: %w", err)
	}
	return json.Unmarshal(data, dest)
}

// CacheManager groups the cache families used by the service
type CacheManager struct {
	client *redis.Client

	Candidate *CacheHelper
	Content   *CacheHelper
	Stats     *CacheHelper
	User      *CacheHelper
}

// NewCacheManager creates the cache families. ttl overrides the candidate
// TTL when positive.
func NewCacheManager(client *redis.Client, ttl time.Duration) *CacheManager {
	return &CacheManager{
		client:    client,
		Candidate: NewCacheHelper(client, CandidateCacheConfig).WithTTL(ttl),
		Content:   NewCacheHelper(client, ContentCacheConfig),
		Stats:     NewCacheHelper(client, StatsCacheConfig),
		User:      NewCacheHelper(client, UserCacheConfig),
	}
}

// Enabled reports whether a redis client is configured
func (cm *CacheManager) Enabled() bool {
	return cm.client != nil
}

// HealthCheck verifies cache connectivity
func (cm *CacheManager) HealthCheck(ctx context.Context) error {
	if cm.client == nil {
		return ErrCacheNotAvailable
	}
	if err := cm.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}
	return nil
}

// Close closes the underlying client
func (cm *CacheManager) Close() error {
	if cm.client == nil {
		return nil
	}
	return cm.client.Close()
}
