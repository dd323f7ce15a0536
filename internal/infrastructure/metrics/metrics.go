// Package metrics exports Prometheus metrics for the summary pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache lookup outcomes
const (
	OutcomeHit         = "hit"
	OutcomeMiss        = "miss"
	OutcomeUnavailable = "unavailable"
)

// Completion call results
const (
	ResultSuccess     = "success"
	ResultError       = "error"
	ResultPlaceholder = "placeholder"
)

// Metrics holds the collectors used by the cache and completion client.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	cacheLookups      *prometheus.CounterVec
	cacheWrites       *prometheus.CounterVec
	completionCalls   *prometheus.CounterVec
	completionLatency *prometheus.HistogramVec
}

// New creates the collectors and registers them on registry.
// If registry is nil a fresh one is created.
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{registry: registry}

	m.cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "visit_summary",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Summary cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	m.cacheWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "visit_summary",
			Subsystem: "cache",
			Name:      "writes_total",
			Help:      "Summary cache writes by result",
		},
		[]string{"result"},
	)

	m.completionCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "visit_summary",
			Subsystem: "completion",
			Name:      "requests_total",
			Help:      "Completion requests by result",
		},
		[]string{"result"},
	)

	m.completionLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "visit_summary",
			Subsystem: "completion",
			Name:      "latency_seconds",
			Help:      "Completion round trip latency in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 45, 60},
		},
		[]string{"result"},
	)

	registry.MustRegister(m.cacheLookups, m.cacheWrites, m.completionCalls, m.completionLatency)
	return m
}

// RecordCacheLookup counts one cache lookup
func (m *Metrics) RecordCacheLookup(outcome string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(outcome).Inc()
}

// RecordCacheWrite counts one cache write
func (m *Metrics) RecordCacheWrite(success bool) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if !success {
		result = ResultError
	}
	m.cacheWrites.WithLabelValues(result).Inc()
}

// RecordCompletion counts one completion call. Placeholder results carry no latency.
func (m *Metrics) RecordCompletion(result string, latency time.Duration) {
	if m == nil {
		return
	}
	m.completionCalls.WithLabelValues(result).Inc()
	if result != ResultPlaceholder {
		m.completionLatency.WithLabelValues(result).Observe(latency.Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
