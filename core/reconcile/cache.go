package reconcile

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// BuildFunc produces a fresh comparison result.
type BuildFunc func(ctx context.Context) (Result, error)

// CachedResult is a comparison result together with its freshness window.
type CachedResult struct {
	// Result is the cached comparison.
	Result Result

	// Built is the timestamp when this result was computed.
	Built time.Time

	// TTL is the time-to-live for this entry.
	TTL time.Duration
}

// IsExpired returns true if this entry has expired based on its TTL.
func (c *CachedResult) IsExpired() bool {
	if c.TTL == 0 {
		return true // No caching
	}
	return time.Since(c.Built) > c.TTL
}

// Cache holds comparison results keyed by analysis, for repeated on-demand runs.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*CachedResult
	sf      singleflight.Group
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*CachedResult)}
}

// GetOrBuild returns the cached result for key, or builds a new one if it doesn't
// exist or has expired. Concurrent callers for the same key share one build.
func (c *Cache) GetOrBuild(ctx context.Context, key string, ttl time.Duration, build BuildFunc) (*CachedResult, error) {
	// Fast path: check if entry exists and is fresh
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if exists && !entry.IsExpired() {
		return entry, nil
	}

	// Slow path: build using singleflight to prevent stampedes
	v, err, _ := c.sf.Do(key, func() (interface{}, error) {
		c.mu.RLock()
		entry, exists := c.entries[key]
		c.mu.RUnlock()

		if exists && !entry.IsExpired() {
			return entry, nil
		}

		result, err := build(ctx)
		if err != nil {
			return nil, err
		}

		fresh := &CachedResult{
			Result: result,
			Built:  time.Now(),
			TTL:    ttl,
		}

		c.mu.Lock()
		c.entries[key] = fresh
		c.mu.Unlock()

		return fresh, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*CachedResult), nil
}

// Invalidate removes the entry for key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
