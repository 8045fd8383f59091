// Package metrics provides Prometheus metrics for the frisk prediction service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the frisk service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Prediction pipeline metrics
	predictions          prometheus.Counter
	predictionDuplicates prometheus.Counter
	validationFailures   *prometheus.CounterVec
	executorLatency      prometheus.Histogram

	// Reconciliation metrics
	reconciliations        prometheus.Counter
	reconciliationNotFound prometheus.Counter

	// Ledger metrics
	ledgerRecords       prometheus.Gauge
	ledgerInsertLatency prometheus.Histogram
	ledgerQueryLatency  prometheus.Histogram
	ledgerCacheHits     prometheus.Counter
	ledgerCacheMisses   prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "frisk",
		subsystem:        "prediction",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.predictions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "predictions_total",
		Help:      "Total number of observations scored and recorded",
	})

	m.predictionDuplicates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "prediction_duplicates_total",
		Help:      "Total number of replayed observation ids rejected by the ledger",
	})

	m.validationFailures = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "validation_failures_total",
			Help:      "Total number of rejected observations by validation stage",
		},
		[]string{"stage"},
	)

	m.executorLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "executor_latency_milliseconds",
		Help:      "Histogram of model scoring latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.reconciliations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reconciliations_total",
		Help:      "Total number of outcomes attached to prediction records",
	})

	m.reconciliationNotFound = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reconciliation_not_found_total",
		Help:      "Total number of reconciliation requests naming unknown observation ids",
	})

	m.ledgerRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_records",
		Help:      "Current number of prediction records in the ledger",
	})

	m.ledgerInsertLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_insert_latency_milliseconds",
		Help:      "Histogram of ledger insert latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.ledgerQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_query_latency_milliseconds",
		Help:      "Histogram of ledger lookup latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.ledgerCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_cache_hits_total",
		Help:      "Total number of record lookups served from the in-memory cache",
	})

	m.ledgerCacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_cache_misses_total",
		Help:      "Total number of record lookups that reached the database",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint, method and status",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current allocated heap memory in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})
}

// RecordPrediction increments the predictions counter.
func RecordPrediction() {
	globalManager.predictions.Inc()
}

// RecordPredictionDuplicate increments the duplicate observation counter.
func RecordPredictionDuplicate() {
	globalManager.predictionDuplicates.Inc()
}

// RecordValidationFailure increments the failure counter for a validation stage.
func RecordValidationFailure(stage string) {
	globalManager.validationFailures.WithLabelValues(stage).Inc()
}

// RecordExecutorLatency records model scoring latency in milliseconds.
func RecordExecutorLatency(latencyMs float64) {
	globalManager.executorLatency.Observe(latencyMs)
}

// RecordReconciliation increments the reconciliations counter.
func RecordReconciliation() {
	globalManager.reconciliations.Inc()
}

// RecordReconciliationNotFound increments the unknown-id reconciliation counter.
func RecordReconciliationNotFound() {
	globalManager.reconciliationNotFound.Inc()
}

// UpdateLedgerRecords sets the current ledger record count.
func UpdateLedgerRecords(count int) {
	globalManager.ledgerRecords.Set(float64(count))
}

// RecordLedgerInsertLatency records insert latency in milliseconds.
func RecordLedgerInsertLatency(latencyMs float64) {
	globalManager.ledgerInsertLatency.Observe(latencyMs)
}

// RecordLedgerQueryLatency records lookup latency in milliseconds.
func RecordLedgerQueryLatency(latencyMs float64) {
	globalManager.ledgerQueryLatency.Observe(latencyMs)
}

// RecordLedgerCacheHit increments the cache hit counter.
func RecordLedgerCacheHit() {
	globalManager.ledgerCacheHits.Inc()
}

// RecordLedgerCacheMiss increments the cache miss counter.
func RecordLedgerCacheMiss() {
	globalManager.ledgerCacheMisses.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateSystemMemoryUsage sets the current allocated heap size.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the current goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom registry served on /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
