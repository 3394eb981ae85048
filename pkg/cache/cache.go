// Package cache provides the key/value backends used to cache upstream API
// responses.
//
// # Overview
//
// The Brazilian open-data APIs serve large catalogs (every IBGE aggregate,
// every municipality, every IPEA series) that change rarely. Clients in
// package integrations store decoded responses through the [Cache] interface
// so repeated lookups do not hit the network.
//
// # Backends
//
//   - [FileCache]: one JSON file per key under a directory (CLI default)
//   - [MemoryCache]: process-local map, useful for long-running servers
//   - [RedisCache]: shared cache backed by Redis
//   - [NullCache]: never stores anything (caching disabled)
//
// All backends honour a per-entry TTL; a TTL of zero means no expiry.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with expiring entries.
//
// Get reports a miss with ok=false and a nil error. Implementations must be
// safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
