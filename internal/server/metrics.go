package server

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/orbit/pkg/observability"
)

// Metrics holds the server's Prometheus collectors and doubles as the
// implementation of the observability hook interfaces, so layout, fetch,
// and cache events land in the same registry as the HTTP metrics.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	LayoutRuns     *prometheus.CounterVec
	LayoutDuration prometheus.Histogram

	FetchesTotal   *prometheus.CounterVec
	FetchDuration  prometheus.Histogram
	FetchDiscarded prometheus.Counter
	FetchDeduped   prometheus.Counter

	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
}

// NewMetrics creates a collector set on a fresh registry.
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		LayoutRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "layout_runs_total",
				Help:      "Total number of layout computations",
			},
			[]string{"memoized"},
		),
		LayoutDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "layout_duration_seconds",
				Help:      "Layout relaxation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		FetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetches_total",
				Help:      "Total number of child-name resolves",
			},
			[]string{"status"},
		),
		FetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Child-name resolve duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		FetchDiscarded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetches_discarded_total",
				Help:      "Resolves discarded because the tree changed underneath them",
			},
		),
		FetchDeduped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetches_deduped_total",
				Help:      "Resolves skipped because one was already in flight",
			},
		),
		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of cache hits",
			},
			[]string{"key_type"},
		),
		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of cache misses",
			},
			[]string{"key_type"},
		),
	}

	registry.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.LayoutRuns,
		m.LayoutDuration,
		m.FetchesTotal,
		m.FetchDuration,
		m.FetchDiscarded,
		m.FetchDeduped,
		m.CacheHits,
		m.CacheMisses,
	)
	return m
}

// Registry returns the Prometheus registry backing the /metrics endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Install registers the collector set as the process-wide hooks.
func (m *Metrics) Install() {
	observability.SetLayoutHooks(m)
	observability.SetFetchHooks(m)
	observability.SetCacheHooks(m)
}

// OnLayoutStart implements observability.LayoutHooks.
func (m *Metrics) OnLayoutStart(ctx context.Context, center string, childCount int) {}

// OnLayoutComplete implements observability.LayoutHooks.
func (m *Metrics) OnLayoutComplete(ctx context.Context, center string, childCount int, duration time.Duration, memoized bool) {
	m.LayoutRuns.WithLabelValues(strconv.FormatBool(memoized)).Inc()
	if !memoized {
		m.LayoutDuration.Observe(duration.Seconds())
	}
}

// OnFetchStart implements observability.FetchHooks.
func (m *Metrics) OnFetchStart(ctx context.Context, path string) {}

// OnFetchComplete implements observability.FetchHooks.
func (m *Metrics) OnFetchComplete(ctx context.Context, path string, nameCount int, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.FetchesTotal.WithLabelValues(status).Inc()
	m.FetchDuration.Observe(duration.Seconds())
}

// OnFetchDiscarded implements observability.FetchHooks.
func (m *Metrics) OnFetchDiscarded(ctx context.Context, path string) {
	m.FetchDiscarded.Inc()
}

// OnFetchDeduped implements observability.FetchHooks.
func (m *Metrics) OnFetchDeduped(ctx context.Context, path string) {
	m.FetchDeduped.Inc()
}

// OnCacheHit implements observability.CacheHooks.
func (m *Metrics) OnCacheHit(ctx context.Context, keyType string) {
	m.CacheHits.WithLabelValues(keyType).Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (m *Metrics) OnCacheMiss(ctx context.Context, keyType string) {
	m.CacheMisses.WithLabelValues(keyType).Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (m *Metrics) OnCacheSet(ctx context.Context, keyType string, size int) {}

var (
	_ observability.LayoutHooks = (*Metrics)(nil)
	_ observability.FetchHooks  = (*Metrics)(nil)
	_ observability.CacheHooks  = (*Metrics)(nil)
)
