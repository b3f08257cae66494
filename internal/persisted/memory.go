package persisted

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// memoryStore keeps documents in an expirable LRU local to the process.
type memoryStore struct {
	docs *lru.LRU[string, string]
}

func newMemoryStore(cfg StoreConfig) (Store, error) {
	if cfg.Size <= 0 {
		return nil, fmt.Errorf("memory store size must be positive, got %d", cfg.Size)
	}
	var onEvict func(string, string)
	if cfg.OnEvict != nil {
		onEvict = func(hash string, _ string) {
			cfg.OnEvict(hash)
		}
	}
	return &memoryStore{
		docs: lru.NewLRU[string, string](cfg.Size, onEvict, cfg.TTL),
	}, nil
}

func (m *memoryStore) Get(_ context.Context, hash string) (string, bool) {
	return m.docs.Get(hash)
}

func (m *memoryStore) Put(_ context.Context, hash, query string) error {
	m.docs.Add(hash, query)
	return nil
}

func (m *memoryStore) Len(context.Context) int {
	return m.docs.Len()
}

func (m *memoryStore) Close() error {
	return nil
}
