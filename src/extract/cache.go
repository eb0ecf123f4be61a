package extract

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProfileCache memoizes extraction results by page URL.
type ProfileCache interface {
	Get(ctx context.Context, pageURL string) (*Profile, bool)
	Set(ctx context.Context, pageURL string, profile *Profile)
}

// MemoryCache is the default process-local cache. It is unbounded and
// never evicts; Len is the growth monitoring hook. Safe for concurrent
// use, but concurrent misses for the same URL each do their own fetch.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*Profile
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]*Profile)}
}

func (c *MemoryCache) Get(_ context.Context, pageURL string) (*Profile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.entries[pageURL]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

func (c *MemoryCache) Set(_ context.Context, pageURL string, profile *Profile) {
	c.mu.Lock()
	c.entries[pageURL] = profile.Clone()
	c.mu.Unlock()
}

// Len reports how many URLs are cached.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

const profileKeyPrefix = "peerpanel:profile:"

// RedisCache shares extraction results across processes. A zero ttl keeps
// entries forever, matching the in-memory policy.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, pageURL string) (*Profile, bool) {
	raw, err := c.rdb.Get(ctx, profileKeyPrefix+pageURL).Result()
	if err != nil {
		return nil, false
	}
	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (c *RedisCache) Set(ctx context.Context, pageURL string, profile *Profile) {
	raw, err := json.Marshal(profile)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, profileKeyPrefix+pageURL, raw, c.ttl)
}
