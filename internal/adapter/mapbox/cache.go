package mapbox

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/couchcryptid/event-weather-service/internal/domain"
	"github.com/couchcryptid/event-weather-service/internal/observability"
)

// CachedResolver wraps a CoordinateResolver with an in-memory LRU cache that
// outlives runs. Coordinates of a place do not change, so stale entries are
// harmless.
type CachedResolver struct {
	inner   domain.CoordinateResolver
	cache   *lruCache[domain.Coordinates]
	metrics *observability.Metrics
}

// NewCachedResolver creates a cache decorator around a resolver.
func NewCachedResolver(inner domain.CoordinateResolver, maxEntries int, metrics *observability.Metrics) *CachedResolver {
	return &CachedResolver{
		inner:   inner,
		cache:   newLRUCache[domain.Coordinates](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedResolver) Resolve(ctx context.Context, location string) (domain.Coordinates, error) {
	key := strings.ToLower(strings.TrimSpace(location))
	if coords, ok := c.cache.get(key); ok {
		c.metrics.CoordinateLookups.WithLabelValues("hit").Inc()
		return coords, nil
	}

	coords, err := c.inner.Resolve(ctx, location)
	switch {
	case errors.Is(err, domain.ErrCoordinatesNotFound):
		// Misses are not cached so a location fixed upstream resolves next run.
		c.metrics.CoordinateLookups.WithLabelValues("not_found").Inc()
		return coords, err
	case err != nil:
		c.metrics.CoordinateLookups.WithLabelValues("error").Inc()
		return coords, err
	}

	c.metrics.CoordinateLookups.WithLabelValues("miss").Inc()
	c.cache.put(key, coords)
	return coords, nil
}

// lruCache is a simple thread-safe LRU cache.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry[V]
	head       *entry[V] // most recently used
	tail       *entry[V] // least recently used
}

type entry[V any] struct {
	key   string
	value V
	prev  *entry[V]
	next  *entry[V]
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	return &lruCache[V]{
		maxEntries: max(maxEntries, 1),
		entries:    make(map[string]*entry[V]),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache[V]) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache[V]) addToFront(e *entry[V]) {
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

func (c *lruCache[V]) remove(e *entry[V]) {
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

func (c *lruCache[V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
