package data

import "sync"

// CacheMode defines how playback handles end-of-data
type CacheMode string

const (
	CacheModeExhaust  CacheMode = "exhaust"  // ErrExhausted at end
	CacheModeRotation CacheMode = "rotation" // wrap to 0
)

// Valid reports whether m is a known mode.
func (m CacheMode) Valid() bool {
	return m == CacheModeExhaust || m == CacheModeRotation
}

// IndexCache tracks playback positions per series
type IndexCache struct {
	mu      sync.RWMutex
	indexes map[string]int
}

func NewIndexCache() *IndexCache {
	return &IndexCache{
		indexes: make(map[string]int),
	}
}

// GetAndAdvance returns the current index and advances it
// Returns (index, isExhausted)
func (c *IndexCache) GetAndAdvance(key string, dataLength int) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexes[key]
	if idx >= dataLength {
		return idx, true
	}

	c.indexes[key] = idx + 1
	return idx, false
}

// Reset rewinds one series, or all of them when key is empty, and returns
// how many positions were cleared.
func (c *IndexCache) Reset(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if key == "" {
		count := len(c.indexes)
		c.indexes = make(map[string]int)
		return count
	}

	if _, ok := c.indexes[key]; !ok {
		return 0
	}
	delete(c.indexes, key)
	return 1
}

// GetIndex returns current index without advancing
func (c *IndexCache) GetIndex(key string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.indexes[key]
}
