package persisted

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Store metrics carry a "store" label set from StoreConfig.Name.
var (
	HitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persisted_query_hits_total",
			Help: "Total number of persisted query lookups that found a document.",
		},
		[]string{"store"},
	)

	MissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persisted_query_misses_total",
			Help: "Total number of persisted query lookups for an unknown hash.",
		},
		[]string{"store"},
	)

	RegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persisted_query_registrations_total",
			Help: "Total number of documents registered.",
		},
		[]string{"store"},
	)

	EvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persisted_query_evictions_total",
			Help: "Total number of documents evicted from the store.",
		},
		[]string{"store"},
	)
)

func init() {
	prometheus.MustRegister(
		HitsTotal,
		MissesTotal,
		RegistrationsTotal,
		EvictionsTotal,
	)
}

// entriesCollector reports the store size at scrape time, so TTL expiry in
// Redis is reflected without bookkeeping.
type entriesCollector struct {
	desc    *prometheus.Desc
	lenFunc func(context.Context) int
}

func (c *entriesCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *entriesCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(c.lenFunc(context.Background())))
}

var (
	collectorsMu sync.Mutex
	collectors   = make(map[string]*entriesCollector)
	// entriesReg is swapped for an isolated registry in tests.
	entriesReg prometheus.Registerer = prometheus.DefaultRegisterer
)

// registerEntriesCollector replaces any collector already registered for name.
func registerEntriesCollector(name string, lenFunc func(context.Context) int) *entriesCollector {
	c := &entriesCollector{
		desc: prometheus.NewDesc(
			"persisted_query_entries",
			"Current number of registered persisted query documents.",
			nil,
			prometheus.Labels{"store": name},
		),
		lenFunc: lenFunc,
	}

	collectorsMu.Lock()
	defer collectorsMu.Unlock()

	if old, ok := collectors[name]; ok {
		entriesReg.Unregister(old)
	}
	collectors[name] = c
	_ = entriesReg.Register(c)
	return c
}

func unregisterEntriesCollector(name string) {
	collectorsMu.Lock()
	defer collectorsMu.Unlock()

	if c, ok := collectors[name]; ok {
		entriesReg.Unregister(c)
		delete(collectors, name)
	}
}
