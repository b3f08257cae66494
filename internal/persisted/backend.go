package persisted

import (
	"fmt"
	"strings"
)

// Backend names a Store implementation.
type Backend string

const (
	// BackendMemory keeps documents in the process. Each replica learns
	// every document separately.
	BackendMemory Backend = "memory"
	// BackendRedis shares documents between replicas of a subgraph.
	BackendRedis Backend = "redis"
)

// Backends lists the supported backends.
func Backends() []Backend {
	return []Backend{BackendMemory, BackendRedis}
}

// ParseBackend maps a persisted_queries.provider value to a Backend.
func ParseBackend(name string) (Backend, error) {
	b := Backend(strings.ToLower(strings.TrimSpace(name)))
	switch b {
	case BackendMemory, BackendRedis:
		return b, nil
	}
	return "", fmt.Errorf("persisted: unknown backend %q (want one of %v)", name, Backends())
}

// New builds a store on backend. When cfg.Name is set the store records hit,
// miss, registration and eviction metrics under that name.
func New(backend Backend, cfg StoreConfig) (Store, error) {
	if err := cfg.validate(backend); err != nil {
		return nil, err
	}

	if cfg.Name != "" {
		label := cfg.Name
		onEvict := cfg.OnEvict
		cfg.OnEvict = func(hash string) {
			EvictionsTotal.WithLabelValues(label).Inc()
			if onEvict != nil {
				onEvict(hash)
			}
		}
	}

	var (
		store Store
		err   error
	)
	switch backend {
	case BackendMemory:
		store, err = newMemoryStore(cfg)
	case BackendRedis:
		store, err = newRedisStore(cfg)
	default:
		return nil, fmt.Errorf("persisted: unknown backend %q (want one of %v)", backend, Backends())
	}
	if err != nil {
		return nil, fmt.Errorf("persisted: %s store: %w", backend, err)
	}

	if cfg.Name == "" {
		return store, nil
	}
	return newInstrumentedStore(store, cfg.Name), nil
}

// validate checks the settings backend needs before any connection is made.
func (cfg StoreConfig) validate(backend Backend) error {
	if cfg.TTL < 0 {
		return fmt.Errorf("persisted: negative TTL %v", cfg.TTL)
	}
	switch backend {
	case BackendMemory:
		if cfg.Size <= 0 {
			return fmt.Errorf("persisted: memory store size must be positive, got %d", cfg.Size)
		}
	case BackendRedis:
		if cfg.RedisAddress == "" {
			return fmt.Errorf("persisted: redis store needs an address")
		}
	}
	return nil
}
