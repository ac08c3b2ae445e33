package photoproxy

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores resolved provider-photo URLs keyed by token. Lookups are
// best-effort: a cache failure means a re-resolve, never a request failure.
type Cache interface {
	Get(ctx context.Context, token string) (string, bool)
	Set(ctx context.Context, token, url string, ttl time.Duration)
}

const cacheKeyPrefix = "photo:"

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, token string) (string, bool) {
	v, err := c.client.Get(ctx, cacheKeyPrefix+token).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

func (c *RedisCache) Set(ctx context.Context, token, url string, ttl time.Duration) {
	_ = c.client.Set(ctx, cacheKeyPrefix+token, url, ttl).Err()
}

// MemoryCache is the in-process fallback when no Redis is configured.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	clock   func() time.Time
}

type memoryEntry struct {
	url       string
	expiresAt time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: map[string]memoryEntry{},
		clock:   time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, token string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[token]
	if !ok {
		return "", false
	}
	if c.clock().After(e.expiresAt) {
		delete(c.entries, token)
		return "", false
	}
	return e.url, true
}

func (c *MemoryCache) Set(_ context.Context, token, url string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[token] = memoryEntry{url: url, expiresAt: c.clock().Add(ttl)}
}
