package dataset

import (
	"context"
	"sync"
	"time"

	"github.com/crisismap/crisis-data-api/internal/domain"
	"github.com/crisismap/crisis-data-api/internal/observability"
)

// CachedProvider wraps a Provider with an in-memory TTL'd LRU cache keyed by
// dataset. The TTL bounds staleness after the collection script rewrites a
// file; the request path itself needs no invalidation hooks.
type CachedProvider struct {
	inner   Provider
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedProvider creates a cache decorator around a provider.
func NewCachedProvider(inner Provider, ttl time.Duration, maxEntries int, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		cache:   newLRUCache(maxEntries, ttl),
		metrics: metrics,
	}
}

func (c *CachedProvider) Casualties(ctx context.Context) ([]domain.CasualtyRecord, error) {
	return cached(ctx, c, "casualties", c.inner.Casualties)
}

func (c *CachedProvider) Infrastructure(ctx context.Context) ([]domain.InfrastructureRecord, error) {
	return cached(ctx, c, "infrastructure", c.inner.Infrastructure)
}

func (c *CachedProvider) Displacement(ctx context.Context) ([]domain.DisplacementRecord, error) {
	return cached(ctx, c, "displacement", c.inner.Displacement)
}

func (c *CachedProvider) DisplacementEvents(ctx context.Context) ([]domain.DisplacementEvent, error) {
	return cached(ctx, c, "displacement-events", c.inner.DisplacementEvents)
}

// CheckReadiness always hits the underlying provider; readiness must reflect
// the live data directory, not a cached response.
func (c *CachedProvider) CheckReadiness(ctx context.Context) error {
	return c.inner.CheckReadiness(ctx)
}

// cached returns the cache entry for key, or loads and stores a fresh one.
// Load errors are never cached so a repaired file is picked up immediately.
func cached[T any](ctx context.Context, c *CachedProvider, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	if v, ok := c.cache.get(key); ok {
		c.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return v.([]T), nil
	}
	c.metrics.CacheLookups.WithLabelValues("miss").Inc()

	records, err := load(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.put(key, records)
	return records, nil
}

// lruCache is a simple thread-safe LRU cache with per-entry expiry. Time
// comes from the domain clock so tests can advance it.
type lruCache struct {
	maxEntries int
	ttl        time.Duration
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key       string
	value     any
	expiresAt time.Time
	prev      *entry
	next      *entry
}

func newLRUCache(maxEntries int, ttl time.Duration) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !domain.Clock().Now().Before(e.expiresAt) {
		delete(c.entries, e.key)
		c.remove(e)
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := domain.Clock().Now().Add(c.ttl)

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
