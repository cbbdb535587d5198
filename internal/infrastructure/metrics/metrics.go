// Package metrics exposes Prometheus counters for cache outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Read outcomes
const (
	OutcomeHit   = "hit"   // fresh entry served
	OutcomeFetch = "fetch" // remote fetch succeeded
	OutcomeStale = "stale" // fetch failed, older entry served
	OutcomeEmpty = "empty" // fetch failed, static fallback served
)

// CacheMetrics counts cache reads and remote fetch failures per resource key.
// A nil *CacheMetrics is valid and records nothing.
type CacheMetrics struct {
	reads       *prometheus.CounterVec
	fetchErrors *prometheus.CounterVec
	discarded   *prometheus.CounterVec
}

// New registers the storefront cache counters with reg
func New(reg prometheus.Registerer) *CacheMetrics {
	factory := promauto.With(reg)
	return &CacheMetrics{
		reads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "cache",
			Name:      "reads_total",
			Help:      "Cache reads by resource key and outcome.",
		}, []string{"key", "outcome"}),
		fetchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "cache",
			Name:      "fetch_errors_total",
			Help:      "Failed remote fetches by resource key.",
		}, []string{"key"}),
		discarded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "cache",
			Name:      "discarded_responses_total",
			Help:      "Fetch results dropped because a newer entry was already stored.",
		}, []string{"key"}),
	}
}

// ObserveRead counts one read of key with the given outcome
func (m *CacheMetrics) ObserveRead(key, outcome string) {
	if m == nil {
		return
	}
	m.reads.WithLabelValues(key, outcome).Inc()
}

// ObserveFetchError counts one failed remote fetch of key
func (m *CacheMetrics) ObserveFetchError(key string) {
	if m == nil {
		return
	}
	m.fetchErrors.WithLabelValues(key).Inc()
}

// ObserveDiscarded counts one out-of-order fetch result for key
func (m *CacheMetrics) ObserveDiscarded(key string) {
	if m == nil {
		return
	}
	m.discarded.WithLabelValues(key).Inc()
}
