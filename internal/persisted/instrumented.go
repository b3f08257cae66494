package persisted

import "context"

// instrumentedStore records lookups and registrations for one named store.
type instrumentedStore struct {
	inner Store
	name  string
}

func newInstrumentedStore(inner Store, name string) *instrumentedStore {
	registerEntriesCollector(name, inner.Len)
	return &instrumentedStore{inner: inner, name: name}
}

func (s *instrumentedStore) Get(ctx context.Context, hash string) (string, bool) {
	query, ok := s.inner.Get(ctx, hash)
	if ok {
		HitsTotal.WithLabelValues(s.name).Inc()
	} else {
		MissesTotal.WithLabelValues(s.name).Inc()
	}
	return query, ok
}

func (s *instrumentedStore) Put(ctx context.Context, hash, query string) error {
	if err := s.inner.Put(ctx, hash, query); err != nil {
		return err
	}
	RegistrationsTotal.WithLabelValues(s.name).Inc()
	return nil
}

func (s *instrumentedStore) Len(ctx context.Context) int {
	return s.inner.Len(ctx)
}

func (s *instrumentedStore) Close() error {
	unregisterEntriesCollector(s.name)
	return s.inner.Close()
}
