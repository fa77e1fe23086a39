package providerImp

import (
	"context"
	"sync"
	"time"

	"agriyield/entities"
	"agriyield/pkg/logger"
	"agriyield/pkg/weather"
	"agriyield/pkg/weather/provider"
)

// CachedProvider memoizes successful fetches per location for a fixed TTL.
type CachedProvider struct {
	source    provider.Provider
	ttl       time.Duration
	now       func() time.Time
	mu        sync.RWMutex
	entries   map[string]cacheEntry
	hitCount  int
	missCount int
}

type cacheEntry struct {
	samples []entities.RawSample
	at      time.Time
}

func NewCached(source provider.Provider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{source: source, ttl: ttl, now: time.Now, entries: map[string]cacheEntry{}}
}

func (c *CachedProvider) Name() string { return c.source.Name() + " [Cached]" }

func (c *CachedProvider) FetchSamples(ctx context.Context, loc entities.Location) ([]entities.RawSample, error) {
	key := weather.LocationKey(loc)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.now().Sub(e.at) < c.ttl {
		c.mu.Lock()
		c.hitCount++
		c.mu.Unlock()
		logger.DebugF("[weather] cache hit %s (age %s)", key, c.now().Sub(e.at).Round(time.Second))
		return e.samples, nil
	}

	c.mu.Lock()
	c.missCount++
	c.mu.Unlock()
	samples, err := c.source.FetchSamples(ctx, loc)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.purgeLocked()
	c.entries[key] = cacheEntry{samples: samples, at: c.now()}
	c.mu.Unlock()
	return samples, nil
}

// Stats returns hit and miss counts.
func (c *CachedProvider) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hitCount, c.missCount
}

// Len reports how many locations are cached.
func (c *CachedProvider) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// purgeLocked drops expired entries. It runs before every insert, so the cache
// never holds more than one TTL's worth of locations.
func (c *CachedProvider) purgeLocked() {
	for k, e := range c.entries {
		if c.now().Sub(e.at) >= c.ttl {
			delete(c.entries, k)
		}
	}
}

var _ provider.Provider = (*CachedProvider)(nil)
