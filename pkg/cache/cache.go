// Package cache stores computed layouts and renderings between runs.
//
// A [Cache] maps string keys to opaque byte slices with an optional TTL.
// Three backends are provided:
//
//   - [FileCache]: one JSON file per entry below a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for servers
//   - [NullCache]: stores nothing, for disabling caching
//
// Keys are built by a [Keyer] from content hashes and the options that
// influence a result, so a changed manifest or margin never hits a stale
// entry. [NewScopedKeyer] prefixes keys to separate namespaces on a shared
// backend.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs.
const (
	LayoutTTL = 7 * 24 * time.Hour
	RenderTTL = 7 * 24 * time.Hour
)
