// Package cache is an in-process TTL cache. It stands in for redis when the
// redis cache is disabled or unreachable, so catalog reads are still cached
// per instance.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

const gcInterval = time.Minute

type Item struct {
	Value      []byte
	Expiration int64
}

type Cache struct {
	items  map[string]Item
	mu     sync.RWMutex
	hits   uint64
	misses uint64
	now    func() time.Time
	stop   chan struct{}
	once   sync.Once
}

func NewCache() *Cache {
	cache := &Cache{
		items: make(map[string]Item),
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	go cache.startGC()
	return cache
}

// Close stops the expiry sweep.
func (c *Cache) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}

func (c *Cache) Set(key string, value []byte, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = Item{
		Value:      value,
		Expiration: c.now().Add(duration).UnixNano(),
	}
}

func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, found := c.items[key]
	if !found || c.now().UnixNano() > item.Expiration {
		c.misses++
		return nil, false
	}

	c.hits++
	return item.Value, true
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// GetJSON decodes the value at key into dest. It reports false on a miss.
func (c *Cache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	data, found := c.Get(key)
	if !found {
		return false, nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.Delete(key)
		return false, fmt.Errorf("failed to unmarshal cache item: %w", err)
	}
	return true, nil
}

// SetJSON stores value at key as JSON with the given ttl.
func (c *Cache) SetJSON(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache item: %w", err)
	}

	c.Set(key, data, ttl)
	return nil
}

// DeleteByPattern removes the entries matching pattern. A trailing "*"
// matches any suffix; any other pattern must equal the key.
func (c *Cache) DeleteByPattern(_ context.Context, pattern string) (int, error) {
	prefix, wildcard := strings.CutSuffix(pattern, "*")

	c.mu.Lock()
	defer c.mu.Unlock()

	deleted := 0
	for key := range c.items {
		if (wildcard && strings.HasPrefix(key, prefix)) || key == pattern {
			delete(c.items, key)
			deleted++
		}
	}
	return deleted, nil
}

// PoolStats reports hit and miss counts and the number of live entries.
func (c *Cache) PoolStats() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return map[string]any{
		"backend": "memory",
		"hits":    c.hits,
		"misses":  c.misses,
		"entries": len(c.items),
	}
}

func (c *Cache) startGC() {
	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.evictExpired()
		}
	}
}

func (c *Cache) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now().UnixNano()
	for k, v := range c.items {
		if now > v.Expiration {
			delete(c.items, k)
		}
	}
}
