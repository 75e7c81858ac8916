// Package cache stores solver results and rendered artifacts by content key.
//
// Every backend implements [Cache]: [NullCache] disables caching,
// [FileCache] serves the CLI, and [RedisCache] or [MongoCache] back the HTTP
// server when several instances share results. Keys come from a [Keyer] so
// that identical documents solved with identical options map to the same
// entry regardless of backend.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored value and whether it was found. A miss is not
	// an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl keeps the entry until deleted.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key succeeds.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
