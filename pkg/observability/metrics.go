// Package observability wires application metrics and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the application's Prometheus collectors. All record methods
// are nil-safe so components can run unmetered in tests.
type Metrics struct {
	projectionRecomputes prometheus.Counter
	projectionMemoHits   prometheus.Counter
	detailCacheHits      prometheus.Counter
	detailCacheMisses    prometheus.Counter
	staleDiscards        prometheus.Counter
	upstreamRequests     *prometheus.CounterVec
	upstreamDuration     prometheus.Histogram
	activeSessions       prometheus.Gauge
}

// NewMetrics creates and registers the application collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		projectionRecomputes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kgexplorer_projection_recomputes_total",
			Help: "Number of full projection recomputations.",
		}),
		projectionMemoHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kgexplorer_projection_memo_hits_total",
			Help: "Number of projections served from the memoized view.",
		}),
		detailCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kgexplorer_detail_cache_hits_total",
			Help: "Node detail lookups served from cache.",
		}),
		detailCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kgexplorer_detail_cache_misses_total",
			Help: "Node detail lookups that went to the upstream API.",
		}),
		staleDiscards: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kgexplorer_stale_responses_discarded_total",
			Help: "Async completions discarded because the selection moved on.",
		}),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kgexplorer_upstream_requests_total",
			Help: "Upstream knowledge-graph API requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		upstreamDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kgexplorer_upstream_request_duration_seconds",
			Help:    "Upstream request latency.",
			Buckets: prometheus.DefBuckets,
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kgexplorer_active_sessions",
			Help: "Number of live exploration sessions.",
		}),
	}

	reg.MustRegister(
		m.projectionRecomputes,
		m.projectionMemoHits,
		m.detailCacheHits,
		m.detailCacheMisses,
		m.staleDiscards,
		m.upstreamRequests,
		m.upstreamDuration,
		m.activeSessions,
	)
	return m
}

// ProjectionRecompute counts a full projection rebuild.
func (m *Metrics) ProjectionRecompute() {
	if m != nil {
		m.projectionRecomputes.Inc()
	}
}

// ProjectionMemoHit counts a projection served from the memoized view.
func (m *Metrics) ProjectionMemoHit() {
	if m != nil {
		m.projectionMemoHits.Inc()
	}
}

// DetailCacheHit counts a node detail lookup served from cache.
func (m *Metrics) DetailCacheHit() {
	if m != nil {
		m.detailCacheHits.Inc()
	}
}

// DetailCacheMiss counts a node detail lookup that hit the network.
func (m *Metrics) DetailCacheMiss() {
	if m != nil {
		m.detailCacheMisses.Inc()
	}
}

// StaleDiscard counts a discarded late completion.
func (m *Metrics) StaleDiscard() {
	if m != nil {
		m.staleDiscards.Inc()
	}
}

// UpstreamRequest records one upstream call.
func (m *Metrics) UpstreamRequest(operation, outcome string, seconds float64) {
	if m != nil {
		m.upstreamRequests.WithLabelValues(operation, outcome).Inc()
		m.upstreamDuration.Observe(seconds)
	}
}

// SessionOpened bumps the live session gauge.
func (m *Metrics) SessionOpened() {
	if m != nil {
		m.activeSessions.Inc()
	}
}

// SessionClosed drops the live session gauge.
func (m *Metrics) SessionClosed() {
	if m != nil {
		m.activeSessions.Dec()
	}
}
