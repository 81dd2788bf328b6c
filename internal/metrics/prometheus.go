// Package metrics provides Prometheus metrics for resolution outcomes and
// catalog fetches.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "modelmux"

var (
	// ResolutionTotal counts resolutions by outcome and provider.
	// Outcome is "success" or the failure reason.
	ResolutionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolution_total",
			Help:      "Total number of model resolutions by outcome",
		},
		[]string{"outcome", "provider"},
	)

	// CatalogFetchTotal counts catalog fetches by source and outcome.
	CatalogFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_fetch_total",
			Help:      "Total number of catalog fetch attempts",
		},
		[]string{"source", "outcome"},
	)

	// CatalogFetchDuration tracks catalog fetch latency.
	CatalogFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_fetch_duration_seconds",
			Help:      "Catalog fetch latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"source"},
	)

	// HTTPRequestsTotal counts HTTP requests by path and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served",
		},
		[]string{"path", "code"},
	)
)

// RecordResolution records one resolution outcome.
func RecordResolution(outcome, provider string) {
	ResolutionTotal.WithLabelValues(outcome, provider).Inc()
}

// RecordCatalogFetch records one catalog fetch attempt.
func RecordCatalogFetch(source, outcome string, seconds float64) {
	CatalogFetchTotal.WithLabelValues(source, outcome).Inc()
	CatalogFetchDuration.WithLabelValues(source).Observe(seconds)
}
