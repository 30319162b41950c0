// Package metrics wires the ambient observability hooks spec.md §7
// requires ("counters per code, latency per layer") into
// prometheus/client_golang, the teacher's declared-but-unused direct
// dependency. No HTTP /metrics endpoint is exposed here — exposition is
// transport, and transport is out of scope per spec.md §1; Registry is
// returned so a future transport layer can mount promhttp.Handler itself.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Layer identifies which of the pipeline stages a latency observation
// belongs to.
type Layer string

const (
	LayerAuthority    Layer = "authority"
	LayerMembrane     Layer = "membrane"
	LayerPact         Layer = "pact"
	LayerLedgerAppend Layer = "ledger_append"
)

// Metrics holds the counters and histograms the orchestrator updates on
// every commit attempt. RetryCount is registered, but nothing in this
// module increments it: the ledger store does not report its retries.
type Metrics struct {
	Registry *prometheus.Registry

	RejectionsByCode *prometheus.CounterVec
	CommitsTotal     prometheus.Counter
	LayerLatency     *prometheus.HistogramVec
	RetryCount       prometheus.Counter
}

// New constructs a fresh Metrics bound to its own Registry, so multiple
// instances (e.g. one per test) never collide on the default global
// registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		RejectionsByCode: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "rejections_total",
			Help:      "Count of rejected commits by taxonomy code.",
		}, []string{"code"}),
		CommitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "commits_total",
			Help:      "Count of successfully appended entries.",
		}),
		LayerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ledger",
			Name:      "layer_latency_seconds",
			Help:      "Latency of each pipeline layer.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"layer"}),
		RetryCount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "serializable_retries_total",
			Help:      "Count of serializable-isolation retries performed by the ledger store.",
		}),
	}

	reg.MustRegister(m.RejectionsByCode, m.CommitsTotal, m.LayerLatency, m.RetryCount)
	return m
}

// ObserveRejection increments the rejection counter for the given
// taxonomy code string (e.g. "SequenceMismatch").
func (m *Metrics) ObserveRejection(code string) {
	m.RejectionsByCode.WithLabelValues(code).Inc()
}
