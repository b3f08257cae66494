package loader

import (
	"context"
	"fmt"

	"github.com/graph-gophers/dataloader/v7"
)

// MappedBatchFunc resolves a batch of keys at once, returning values keyed by
// the requested key. Keys absent from the result map fail individually.
type MappedBatchFunc[K comparable, V any] func(ctx context.Context, keys []K) (map[K]V, error)

// ErrMissingKey is returned for a key the batch function left out of its result.
type ErrMissingKey[K comparable] struct {
	Key K
}

func (e *ErrMissingKey[K]) Error() string {
	return fmt.Sprintf("batch result has no value for key %v", e.Key)
}

// toBatchFunc fans a keyed result back out into the positional results the
// dataloader expects.
func toBatchFunc[K comparable, V any](fn MappedBatchFunc[K, V]) dataloader.BatchFunc[K, V] {
	return func(ctx context.Context, keys []K) []*dataloader.Result[V] {
		results := make([]*dataloader.Result[V], len(keys))

		values, err := fn(ctx, keys)
		if err != nil {
			for i := range results {
				results[i] = &dataloader.Result[V]{Error: err}
			}
			return results
		}

		for i, key := range keys {
			value, ok := values[key]
			if !ok {
				results[i] = &dataloader.Result[V]{Error: &ErrMissingKey[K]{Key: key}}
				continue
			}
			results[i] = &dataloader.Result[V]{Data: value}
		}
		return results
	}
}
