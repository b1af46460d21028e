// Package cache provides the byte-level cache abstraction and its backends,
// plus the typed node-detail cache built on top.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-level key/value cache with per-entry TTL.
type Cache interface {
	// Get returns the value for key and whether it was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value; a zero ttl uses the backend default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
