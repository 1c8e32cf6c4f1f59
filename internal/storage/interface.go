package storage

import (
	"context"
	"time"
)

// Store is the namespaced key-value storage the sync engine writes merged
// entities into. Implementations are typically backed by a local SQLite
// database; an in-memory implementation exists for tests.
type Store interface {
	// Get returns the value stored under key, or common.ErrNotFound if the
	// key is absent or its TTL has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A non-zero ttl makes the key expire after
	// that duration; zero means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Remove deletes a key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Keys returns all live keys with the given prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
