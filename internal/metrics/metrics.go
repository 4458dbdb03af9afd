// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the counters the service maintains. A single instance is
// constructed in main and injected where needed; there is no package-level
// registry.
type Metrics struct {
	RatingsSubmitted prometheus.Counter
	RatingConflicts  prometheus.Counter
	TxRetries        prometheus.Counter
	SnapshotsEmitted prometheus.Counter

	registry *prometheus.Registry
}

// New constructs a Metrics instance with its own registry, including the
// standard Go and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		RatingsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ratings_submitted_total",
			Help: "Number of ratings successfully recorded.",
		}),
		RatingConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rating_conflicts_total",
			Help: "Number of rating attempts rejected because the rater had already rated.",
		}),
		TxRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "store_tx_retries_total",
			Help: "Number of serializable transaction attempts that were retried.",
		}),
		SnapshotsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "submission_snapshots_total",
			Help: "Number of full submission snapshots emitted by watchers.",
		}),
		registry: registry,
	}
	registry.MustRegister(m.RatingsSubmitted, m.RatingConflicts, m.TxRetries, m.SnapshotsEmitted)
	return m
}

// Handler returns the HTTP handler serving the registry in the Prometheus
// exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
