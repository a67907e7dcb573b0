// Package metrics exposes Prometheus instrumentation for quotes, swaps and pool stats.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the client's collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	QuotesTotal         *prometheus.CounterVec
	SwapsTotal          *prometheus.CounterVec
	PoolStatsTotal      *prometheus.CounterVec
	CollaboratorLatency *prometheus.HistogramVec
}

// NewMetrics registers all collectors on reg (prometheus.DefaultRegisterer when nil)
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "dlmm"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		QuotesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_total",
			Help:      "Quotes computed, by result",
		}, []string{"result"}),
		SwapsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "swaps_total",
			Help:      "Swap executions, by outcome",
		}, []string{"outcome"}),
		PoolStatsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pool_stats_total",
			Help:      "Pool stats lookups, by result",
		}, []string{"result"}),
		CollaboratorLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collaborator_latency_seconds",
			Help:      "Latency of external collaborator calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
}

func (m *Metrics) IncQuote(result string) {
	if m == nil {
		return
	}
	m.QuotesTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) IncSwap(outcome string) {
	if m == nil {
		return
	}
	m.SwapsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncPoolStats(result string) {
	if m == nil {
		return
	}
	m.PoolStatsTotal.WithLabelValues(result).Inc()
}

// ObserveCollaborator records the time since start for op
func (m *Metrics) ObserveCollaborator(op string, start time.Time) {
	if m == nil {
		return
	}
	m.CollaboratorLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Handler serves the metrics gathered from g (prometheus.DefaultGatherer when nil)
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
