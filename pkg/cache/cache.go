// Package cache stores rendered artifacts keyed by everything that
// determines their bytes: chart type, effective configuration, dataset,
// format and engine version.
//
// Three backends implement [Cache]:
//   - [FileCache]: JSON entries in hash-sharded directories, for the CLI
//   - [RedisCache]: a shared cache for servers running several instances
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// # Usage
//
//	c, err := cache.NewFileCache(cache.DefaultDir())
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	key := cache.NewDefaultKeyer().ArtifactKey("box", cache.ArtifactKeyOpts{
//	    ConfigHash: cfg.Fingerprint(),
//	    DataHash:   cache.Hash(datasetJSON),
//	    Format:     "pdf",
//	})
//	if data, ok, _ := c.Get(ctx, key); ok {
//	    return data, nil
//	}
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored value and true, or false on a miss. Expired
	// and unreadable entries are misses, not errors.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Stats counts lookups.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// StatsProvider is implemented by caches that count lookups.
type StatsProvider interface {
	Stats() Stats
}

// DefaultTTL is how long rendered artifacts are kept.
const DefaultTTL = 7 * 24 * time.Hour
