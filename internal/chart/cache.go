package chart

import "sync"

// Cache holds rendered chart artifacts for one notification cycle,
// keyed by token address. The cycle orchestrator creates it, the
// content builder populates it, and it is discarded when the cycle
// ends; artifacts are never persisted.
type Cache struct {
	mu      sync.RWMutex
	byAddr  map[string][]byte
	renders int
}

func NewCache() *Cache {
	return &Cache{byAddr: map[string][]byte{}}
}

// Get returns the cached artifact for an address, if any.
func (c *Cache) Get(addr string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.byAddr[addr]
	return b, ok
}

// GetOrRender returns the cached artifact for addr, invoking render at
// most once per address for the lifetime of the cache.
func (c *Cache) GetOrRender(addr string, render func() ([]byte, error)) ([]byte, error) {
	c.mu.RLock()
	b, ok := c.byAddr[addr]
	c.mu.RUnlock()
	if ok {
		return b, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.byAddr[addr]; ok {
		return b, nil
	}
	b, err := render()
	if err != nil {
		return nil, err
	}
	c.byAddr[addr] = b
	c.renders++
	return b, nil
}

// Renders reports how many render calls the cache performed.
func (c *Cache) Renders() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.renders
}
