package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"time"
)

// Cache stores raw query responses for read-only queries.
type Cache interface {
	// Get returns the cached response for key.
	// Returns nil if not found
	Get(ctx context.Context, key string) (json.RawMessage, error)

	// Set stores a response with TTL
	Set(ctx context.Context, key string, value json.RawMessage, ttl time.Duration) error

	// Generation returns the current cache generation. It changes on every InvalidateAll,
	// so a key built from an older generation is never read again.
	Generation(ctx context.Context) (int64, error)

	// InvalidateAll bumps the generation and drops every cached response; called after any
	// write to the graph
	InvalidateAll(ctx context.Context) error

	// Close closes the cache connection
	Close() error
}

// GenerateKey derives a stable key from a cache generation, a query name and its parameters.
// encoding/json sorts map keys, so equal parameter maps hash identically.
func GenerateKey(gen int64, query string, params map[string]any) (string, error) {
	if params == nil {
		params = map[string]any{}
	}
	body, err := json.Marshal(params)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write([]byte(query))
	h.Write([]byte{0})
	h.Write(body)
	return strconv.FormatInt(gen, 10) + ":" + query + ":" + hex.EncodeToString(h.Sum(nil)), nil
}
