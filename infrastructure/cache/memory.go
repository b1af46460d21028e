package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is a simple in-process cache. Expired entries are deleted
// lazily on the next lookup; there is no background sweep.
type MemoryCache struct {
	items    map[string]memoryItem
	maxItems int
	ttl      time.Duration
	now      func() time.Time
	mu       sync.Mutex
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryCache creates an in-process cache holding at most maxItems
// entries with the given default TTL.
func NewMemoryCache(maxItems int, defaultTTL time.Duration) *MemoryCache {
	return &MemoryCache{
		items:    make(map[string]memoryItem),
		maxItems: maxItems,
		ttl:      defaultTTL,
		now:      time.Now,
	}
}

// WithClock overrides the cache's clock. Used in tests.
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.now = now
	return c
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := c.items[key]
	if !exists {
		return nil, false, nil
	}

	if c.now().After(item.expiresAt) {
		delete(c.items, key)
		return nil, false, nil
	}

	return item.value, true, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl == 0 {
		ttl = c.ttl
	}

	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxItems {
		c.evictOldest()
	}

	c.items[key] = memoryItem{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

func (c *MemoryCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, item := range c.items {
		if oldestTime.IsZero() || item.expiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = item.expiresAt
		}
	}

	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}
