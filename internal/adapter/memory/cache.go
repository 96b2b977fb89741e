package memory

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache implements port/cache.Cache on top of go-cache.
type Cache struct {
	data *gocache.Cache
}

// NewCache creates a cache whose expired entries are swept every 2×defaultTTL.
func NewCache(defaultTTL time.Duration) *Cache {
	return &Cache{data: gocache.New(defaultTTL, 2*defaultTTL)}
}

func (c *Cache) Get(key string) (any, bool) {
	return c.data.Get(key)
}

func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.data.Set(key, value, ttl)
}

func (c *Cache) Delete(key string) {
	c.data.Delete(key)
}

func (c *Cache) Flush() {
	c.data.Flush()
}
