package embedding

import (
	"container/list"
	"context"
	"sync"

	"github.com/hyperjump/semindex/internal/models"
)

type cacheKey struct {
	contentType models.ContentType
	content     string
}

type cacheEntry struct {
	key    cacheKey
	vector []float32
}

// lruCache holds the most recently used vectors. Lookups move entries to the front,
// so every access takes the write lock.
type lruCache struct {
	mu       sync.Mutex
	capacity int
	items    map[cacheKey]*list.Element
	order    *list.List

	hits, misses uint64
}

func newLRUCache(capacity int) *lruCache {
	return &lruCache{
		capacity: capacity,
		items:    make(map[cacheKey]*list.Element, capacity),
		order:    list.New(),
	}
}

func (c *lruCache) get(k cacheKey) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[k]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).vector, true
}

func (c *lruCache) put(k cacheKey, v []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[k]; ok {
		el.Value.(*cacheEntry).vector = v
		c.order.MoveToFront(el)
		return
	}
	c.items[k] = c.order.PushFront(&cacheEntry{key: k, vector: v})
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
}

// CacheStats reports cache occupancy and effectiveness.
type CacheStats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

func (c *lruCache) stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Entries: c.order.Len(), Hits: c.hits, Misses: c.misses}
}

// CachedEmbedder wraps an Embedder with an LRU cache keyed by content type and content.
type CachedEmbedder struct {
	inner Embedder
	cache *lruCache
}

// NewCachedEmbedder returns inner unchanged when capacity is not positive.
func NewCachedEmbedder(inner Embedder, capacity int) Embedder {
	if capacity <= 0 {
		return inner
	}
	return &CachedEmbedder{inner: inner, cache: newLRUCache(capacity)}
}

// Embed returns a cached vector when present. Callers receive a copy.
func (c *CachedEmbedder) Embed(ctx context.Context, content string, contentType models.ContentType) ([]float32, error) {
	k := cacheKey{contentType: contentType, content: content}
	if v, ok := c.cache.get(k); ok {
		return append([]float32(nil), v...), nil
	}
	v, err := c.inner.Embed(ctx, content, contentType)
	if err != nil {
		return nil, err
	}
	c.cache.put(k, append([]float32(nil), v...))
	return v, nil
}

// Stats returns a snapshot of the cache counters.
func (c *CachedEmbedder) Stats() CacheStats {
	return c.cache.stats()
}

// Dimensions returns the wrapped embedder's dimension.
func (c *CachedEmbedder) Dimensions() int {
	return c.inner.Dimensions()
}

// Close closes the wrapped embedder.
func (c *CachedEmbedder) Close() error {
	return c.inner.Close()
}
