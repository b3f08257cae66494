// Package persisted stores GraphQL documents by hash for automatic persisted
// queries. Clients send the SHA-256 of a query instead of its text once the
// server has seen the text.
package persisted

import (
	"context"
	"time"
)

// EvictCallback is called when a document is evicted. Only the memory store
// reports evictions; Redis expires keys server-side.
type EvictCallback func(hash string)

// Store keeps query documents keyed by the hex SHA-256 of their text.
type Store interface {
	// Get returns the document registered under hash.
	Get(ctx context.Context, hash string) (string, bool)

	// Put registers query under hash, replacing any previous document.
	Put(ctx context.Context, hash, query string) error

	// Len returns the number of registered documents.
	Len(ctx context.Context) int

	// Close releases connections held by the store.
	Close() error
}

// StoreConfig holds the settings of every backend; each backend reads the
// fields it needs.
type StoreConfig struct {
	// Size caps the number of documents kept in memory.
	Size int

	// TTL is how long a document stays registered without being replaced.
	TTL time.Duration

	OnEvict EvictCallback

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	// KeyPrefix namespaces Redis keys. Defaults to "lolomo:apq:".
	KeyPrefix string

	// Name labels the store metrics. An empty name disables instrumentation.
	Name string
}
