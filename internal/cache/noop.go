package cache

import (
	"context"
	"encoding/json"
	"time"
)

// NoOpCache is a cache implementation that does nothing.
// Used when CACHE_PROVIDER=none - all operations succeed
// but no actual caching occurs (always cache miss).
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache instance
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get always returns nil (cache miss)
func (c *NoOpCache) Get(ctx context.Context, key string) (json.RawMessage, error) {
	return nil, nil
}

func (c *NoOpCache) Set(ctx context.Context, key string, value json.RawMessage, ttl time.Duration) error {
	return nil
}

func (c *NoOpCache) Generation(ctx context.Context) (int64, error) {
	return 0, nil
}

func (c *NoOpCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}
