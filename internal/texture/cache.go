package texture

import (
	"image"
	"path/filepath"
	"sync"
)

// Cache is a concurrency-safe image cache keyed by cleaned absolute path.
// Decoded images are shared between callers and must be treated as read-only.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*image.NRGBA

	hits   int
	misses int
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		items: make(map[string]*image.NRGBA),
	}
}

// Get returns the decoded image at path, loading it on first use.
func (c *Cache) Get(path string) (*image.NRGBA, error) {
	key := cacheKey(path)

	c.mu.RLock()
	img, ok := c.items[key]
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return img, nil
	}

	img, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Another goroutine may have loaded the same path meanwhile
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.items[key]; ok {
		c.hits++
		return existing, nil
	}
	c.misses++
	c.items[key] = img
	return img, nil
}

// Len returns the number of cached images.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Clear drops every cached image and resets statistics.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*image.NRGBA)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
