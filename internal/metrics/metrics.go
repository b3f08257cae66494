package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// GraphQL request metrics
var (
	GraphQLRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphql_requests_total",
			Help: "Total number of GraphQL requests by service and outcome.",
		},
		[]string{"service", "status"},
	)

	GraphQLRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphql_request_duration_seconds",
			Help:    "Time spent executing GraphQL requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service"},
	)
)

// Artwork batching metrics. A request that resolves N distinct titles should
// show up as one batch of size N, not N batches of size one.
var (
	ArtworkBatchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "artwork_batches_total",
			Help: "Total number of artwork batch generations.",
		},
	)

	ArtworkBatchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "artwork_batch_size",
			Help:    "Number of titles per artwork batch.",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
		},
	)

	ArtworkGeneratedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "artwork_generated_total",
			Help: "Total number of artwork URLs generated.",
		},
	)
)

// CatalogShows reports the number of shows in the loaded catalog.
var CatalogShows = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "catalog_shows",
		Help: "Number of shows in the loaded catalog.",
	},
)

func init() {
	prometheus.MustRegister(
		GraphQLRequestsTotal,
		GraphQLRequestDuration,
		ArtworkBatchesTotal,
		ArtworkBatchSize,
		ArtworkGeneratedTotal,
		CatalogShows,
	)
}
