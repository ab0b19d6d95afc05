package cache

import "time"

// CacheService defines the behavior for caching mechanisms.
type CacheService interface {
	// Get retrieves a value; second return is false when absent.
	Get(key string) (interface{}, bool)

	// Set stores a value with a TTL.
	Set(key string, value interface{}, duration time.Duration)

	// Delete removes a value.
	Delete(key string)

	// Flush removes all items.
	Flush()
}
