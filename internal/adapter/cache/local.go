package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// LocalCache is an in-process fallback used when Redis is not configured.
// Locks are process-local, so scheduled report deduplication only holds
// within a single instance.
type LocalCache struct {
	mu      sync.Mutex
	entries map[string]localEntry
}

type localEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewLocalCache() *LocalCache {
	return &LocalCache{entries: make(map[string]localEntry)}
}

func (c *LocalCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return ErrCacheMiss
	}
	return json.Unmarshal(e.data, dest)
}

func (c *LocalCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = localEntry{data: data, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (c *LocalCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *LocalCache) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	lockKey := "lock:" + key
	if e, ok := c.entries[lockKey]; ok && time.Now().Before(e.expiresAt) {
		return false, nil
	}
	c.entries[lockKey] = localEntry{expiresAt: time.Now().Add(ttl)}
	return true, nil
}

func (c *LocalCache) Unlock(ctx context.Context, key string) error {
	return c.Delete(ctx, "lock:"+key)
}

func (c *LocalCache) Ping(ctx context.Context) error { return nil }

func (c *LocalCache) Close() error { return nil }
