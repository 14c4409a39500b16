// Package metrics provides Prometheus metrics for the PM Wiki catalog service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec

	// Compare set
	compareAdds       prometheus.Counter
	compareRejections prometheus.Counter
	compareRemoves    prometheus.Counter
	compareClears     prometheus.Counter
	compareSessions   prometheus.Gauge
	compareEvictions  prometheus.Counter
	compareWatchers   prometheus.Gauge

	// Value score
	valueScores *prometheus.CounterVec

	// Catalog
	catalogFetchErrors     *prometheus.CounterVec
	catalogSnapshotRebuild prometheus.Histogram
	catalogSnapshotLast    prometheus.Gauge
	catalogPublished       prometheus.Gauge
	catalogRanked          prometheus.Gauge
	searchQueries          *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pmwiki",
		subsystem:        "catalog",
		histogramBuckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})
	m.httpErrors = m.counterVec("http_errors_total",
		"HTTP responses with status >= 400 by endpoint and error type", "endpoint", "error_type")

	m.compareAdds = m.counter("compare_adds_total", "Compare-set add calls that left the slug present")
	m.compareRejections = m.counter("compare_rejections_total", "Compare-set add calls rejected because the set was full")
	m.compareRemoves = m.counter("compare_removes_total", "Compare-set remove calls")
	m.compareClears = m.counter("compare_clears_total", "Compare-set clear calls")
	m.compareSessions = m.gauge("compare_sessions", "Live compare sessions held in memory")
	m.compareEvictions = m.counter("compare_session_evictions_total", "Compare sessions evicted by capacity or idle TTL")
	m.compareWatchers = m.gauge("compare_watchers", "Open compare watch streams")

	m.valueScores = m.counterVec("value_scores_total",
		"Value score computations by outcome (scored or absent)", "outcome")

	m.catalogFetchErrors = m.counterVec("fetch_errors_total",
		"Catalog store queries that failed, by operation", "operation")
	m.catalogSnapshotRebuild = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "snapshot_rebuild_milliseconds",
		Help:        "Time taken to rebuild the listing and ranking snapshot",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})
	m.catalogSnapshotLast = m.gauge("snapshot_last_unix", "Unix time of the last successful snapshot")
	m.catalogPublished = m.gauge("published_models", "Published models in the current snapshot")
	m.catalogRanked = m.gauge("ranked_models", "Models with a value score in the current snapshot")
	m.searchQueries = m.counterVec("search_queries_total", "Search queries by result (hit or miss)", "result")
}

// RecordHTTPRequest records one request and its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordHTTPError records an error response.
func RecordHTTPError(endpoint, errorType string) {
	globalManager.httpErrors.WithLabelValues(endpoint, errorType).Inc()
}

// RecordCompareAdd records a successful add.
func RecordCompareAdd() { globalManager.compareAdds.Inc() }

// RecordCompareRejected records an add refused at capacity.
func RecordCompareRejected() { globalManager.compareRejections.Inc() }

// RecordCompareRemove records a remove.
func RecordCompareRemove() { globalManager.compareRemoves.Inc() }

// RecordCompareClear records a clear.
func RecordCompareClear() { globalManager.compareClears.Inc() }

// UpdateCompareSessions sets the number of live sessions.
func UpdateCompareSessions(n int) { globalManager.compareSessions.Set(float64(n)) }

// RecordCompareEviction records an evicted session.
func RecordCompareEviction() { globalManager.compareEvictions.Inc() }

// AddCompareWatchers adjusts the open watch stream gauge by delta.
func AddCompareWatchers(delta int) { globalManager.compareWatchers.Add(float64(delta)) }

// RecordValueScore records whether a score could be computed.
func RecordValueScore(ok bool) {
	if ok {
		globalManager.valueScores.WithLabelValues("scored").Inc()
		return
	}
	globalManager.valueScores.WithLabelValues("absent").Inc()
}

// RecordFetchError records a failed store query.
func RecordFetchError(operation string) {
	globalManager.catalogFetchErrors.WithLabelValues(operation).Inc()
}

// RecordSnapshotRebuild records a snapshot rebuild.
func RecordSnapshotRebuild(durationMs float64, unix int64, published, ranked int) {
	globalManager.catalogSnapshotRebuild.Observe(durationMs)
	globalManager.catalogSnapshotLast.Set(float64(unix))
	globalManager.catalogPublished.Set(float64(published))
	globalManager.catalogRanked.Set(float64(ranked))
}

// RecordSearch records a search query.
func RecordSearch(hits int) {
	if hits > 0 {
		globalManager.searchQueries.WithLabelValues("hit").Inc()
		return
	}
	globalManager.searchQueries.WithLabelValues("miss").Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
