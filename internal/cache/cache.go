// Package cache provides a best-effort JSON response cache backed by Redis.
// A missing or failing backend never fails the caller: reads degrade to
// misses and writes to no-ops.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the subset of redis operations the cache uses.
type Store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Cache is a best-effort JSON cache. The zero value (nil store) is a valid
// disabled cache.
type Cache struct {
	store Store
}

// New wraps a redis client. A nil client yields a disabled cache.
func New(rdb *redis.Client) *Cache {
	if rdb == nil {
		return &Cache{}
	}
	return &Cache{store: rdb}
}

// NewWithStore is used by tests to inject a fake store.
func NewWithStore(store Store) *Cache {
	return &Cache{store: store}
}

// GetJSON reads key into dest. Returns false on miss, backend error, or
// undecodable payload; the caller proceeds as if uncached.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) bool {
	if c == nil || c.store == nil {
		return false
	}

	raw, err := c.store.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[cache] get %s failed: %v", key, err)
		}
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		log.Printf("[cache] undecodable payload at %s: %v", key, err)
		return false
	}
	return true
}

// SetJSON stores val under key with a TTL. Errors are logged, never returned.
func (c *Cache) SetJSON(ctx context.Context, key string, val any, ttl time.Duration) {
	if c == nil || c.store == nil || ttl <= 0 {
		return
	}

	raw, err := json.Marshal(val)
	if err != nil {
		log.Printf("[cache] marshal for %s failed: %v", key, err)
		return
	}

	if err := c.store.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Printf("[cache] set %s failed: %v", key, err)
	}
}

// Bump increments a version counter used to invalidate derived views.
// Best-effort like everything else here.
func (c *Cache) Bump(ctx context.Context, key string) {
	if c == nil || c.store == nil {
		return
	}
	if err := c.store.Incr(ctx, key).Err(); err != nil {
		log.Printf("[cache] bump %s failed: %v", key, err)
	}
}

// Version reads a version counter, returning 0 when absent or unavailable.
func (c *Cache) Version(ctx context.Context, key string) int64 {
	if c == nil || c.store == nil {
		return 0
	}
	n, err := c.store.Get(ctx, key).Int64()
	if err != nil {
		return 0
	}
	return n
}
