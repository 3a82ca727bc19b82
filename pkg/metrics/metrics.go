// Package metrics defines the Prometheus metric collectors used across the
// ranking service and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the ranking service.
type Metrics struct {
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestsInFlight  prometheus.Gauge
	RankRequestsTotal     *prometheus.CounterVec
	RankLatency           *prometheus.HistogramVec
	RankResultsCount      prometheus.Histogram
	ScoringTaskFailures   prometheus.Counter
	AuthorityRefreshTotal *prometheus.CounterVec
	AuthorityDocsScored   prometheus.Gauge
	CacheHitsTotal        prometheus.Counter
	CacheMissesTotal      prometheus.Counter
	SnapshotReloadsTotal  *prometheus.CounterVec
	SnapshotDocCount      prometheus.Gauge
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		RankRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rank_requests_total",
				Help: "Total rank calls by outcome (ok, empty_query, error).",
			},
			[]string{"outcome"},
		),
		RankLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rank_latency_seconds",
				Help:    "Rank call latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"cache_status"},
		),
		RankResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rank_results_count",
				Help:    "Number of candidate documents ranked per call.",
				Buckets: []float64{0, 1, 10, 100, 1000, 10000, 100000},
			},
		),
		ScoringTaskFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "scoring_task_failures_total",
				Help: "Scoring tasks that failed and contributed zero relevance.",
			},
		),
		AuthorityRefreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authority_refresh_total",
				Help: "Authority recomputations by outcome (ok, degraded, failed).",
			},
			[]string{"outcome"},
		),
		AuthorityDocsScored: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "authority_docs_scored",
				Help: "Documents covered by the current authority score vector.",
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses.",
			},
		),
		SnapshotReloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "snapshot_reloads_total",
				Help: "Index snapshot reloads by status.",
			},
			[]string{"status"},
		),
		SnapshotDocCount: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "snapshot_document_count",
				Help: "Documents in the current index snapshot.",
			},
		),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.RankRequestsTotal,
		m.RankLatency,
		m.RankResultsCount,
		m.ScoringTaskFailures,
		m.AuthorityRefreshTotal,
		m.AuthorityDocsScored,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.SnapshotReloadsTotal,
		m.SnapshotDocCount,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
