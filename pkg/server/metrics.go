package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the gateway's prometheus collectors.
type Metrics struct {
	registry      *prometheus.Registry
	QueriesTotal  *prometheus.CounterVec
	QueryDuration prometheus.Histogram
	DatasetLoads  prometheus.Counter
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		QueriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bizagent",
			Name:      "queries_total",
			Help:      "Queries processed, labeled by outcome (ok or degraded).",
		}, []string{"outcome"}),
		QueryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bizagent",
			Name:      "query_duration_seconds",
			Help:      "End-to-end query processing duration.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		DatasetLoads: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bizagent",
			Name:      "dataset_loads_total",
			Help:      "Business datasets installed via the gateway.",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveQuery(degraded bool, seconds float64) {
	outcome := "ok"
	if degraded {
		outcome = "degraded"
	}
	m.QueriesTotal.WithLabelValues(outcome).Inc()
	m.QueryDuration.Observe(seconds)
}
