// Package store defines the durable byte-store capability the persistent
// cache and the offline sync queue are built on.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the same []byte previously passed to Set for a key (no prepended/appended
// metadata, no re-encoding, no mutation). If a backend performs internal
// transforms they must be fully reversed before returning.
//
// The keyspaces under the client's namespace prefix are owned by duraclient;
// foreign writes there may be treated as corruption and discarded.
package store

import (
	"context"
	"time"
)

// Info describes one stored entry for listing and quota accounting.
type Info struct {
	Key  string
	Size int64
}

// Store is a minimal byte store. Must be safe for concurrent use.
//
// TTL on Set is advisory: backends with native expiry (redis) honor it,
// backends without (file) may ignore it; every cache envelope carries its own
// expiry and is validated on read regardless.
type Store interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// IO/remote errors are returned as (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Del removes a key (best-effort; removing a missing key is not an error).
	Del(ctx context.Context, key string) error

	// List returns info for every key with the given prefix.
	List(ctx context.Context, prefix string) ([]Info, error)

	// Close releases resources.
	Close(ctx context.Context) error
}
