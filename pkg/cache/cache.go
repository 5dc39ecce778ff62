// Package cache provides byte-level caching for blockfall.
//
// Two things are cached: raw contribution calendars fetched from GitHub
// (short TTL, they change whenever the user pushes) and rendered artifacts
// (long TTL, keyed by a hash of the grid and every render option, so a hit
// is always byte-identical to a fresh render).
//
// Backends:
//   - [FileCache]: one JSON file per entry under the user cache directory (CLI)
//   - [RedisCache]: shared cache for `blockfall serve` replicas
//   - [MemoryCache]: in-process cache for tests and single-instance servers
//   - [NullCache]: disables caching (--no-cache)
//
// Keys come from a [Keyer] so that backends never invent their own layout.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Default TTLs.
const (
	TTLCalendar = time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache stores opaque byte values with an optional TTL.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// GetJSON reads key and decodes it into v. Corrupt entries count as misses.
func GetJSON(ctx context.Context, c Cache, key string, v any) (bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}
