package cache

import "time"

// Cache is a process-local TTL cache.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	Delete(key string)
}

// Invalidator drops derived state after the data it was computed from changed.
type Invalidator interface {
	Invalidate()
}
