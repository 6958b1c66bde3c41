// Package metrics provides Prometheus metrics for the attrition analytics service.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// defaultLatencyBuckets are millisecond buckets sized for in-process
// aggregation and local SQLite reads.
var defaultLatencyBuckets = []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500} //nolint:gochecknoglobals // read-only defaults

// Manager manages all Prometheus metrics for the attrition service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	refreshBuckets   []float64
	storeBuckets     []float64
	enabled          bool
	systemInterval   atomic.Int64
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Analytics Metrics
	refreshes         *prometheus.CounterVec
	refreshLatency    prometheus.Histogram
	metricUnavailable *prometheus.CounterVec
	snapshotRows      prometheus.Gauge
	filteredRows      prometheus.Gauge

	// Snapshot Metrics - Store snapshot loads
	repositorySnapshotLoadDuration   prometheus.Histogram
	repositorySnapshotLastUnix       prometheus.Gauge
	repositorySnapshotCount          prometheus.Counter
	repositorySnapshotLastDurationMs prometheus.Gauge

	// Repository Metrics
	repositoryRecordsTotal  prometheus.Gauge
	repositoryWrites        *prometheus.CounterVec
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	// Idempotency Metrics
	idempotentReplays prometheus.Counter
	idempotencyKeys   prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "attrition",
		subsystem:        "analytics",
		histogramBuckets: defaultLatencyBuckets,
		refreshBuckets:   defaultLatencyBuckets,
		storeBuckets:     defaultLatencyBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}
	m.systemInterval.Store(int64(defaultRefreshInterval))

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// RefreshInterval returns how often runtime gauges should be sampled.
func (m *Manager) RefreshInterval() time.Duration {
	return time.Duration(m.systemInterval.Load())
}

// name applies the configured metric prefix.
func (m *Manager) name(n string) string {
	return m.metricPrefix + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	constLabels := prometheus.Labels(m.customLabels)

	// Analytics Metrics
	m.refreshes = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("refreshes_total"),
			Help:        "Total number of metrics bundle refreshes",
			ConstLabels: constLabels,
		},
		[]string{"filtered"},
	)

	m.refreshLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("refresh_latency_milliseconds"),
		Help:        "Latency of a full bundle refresh including the snapshot load",
		Buckets:     m.refreshBuckets,
		ConstLabels: constLabels,
	})

	m.metricUnavailable = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("metric_unavailable_total"),
			Help:        "Total number of metrics reported unavailable by metric name",
			ConstLabels: constLabels,
		},
		[]string{"metric"},
	)

	m.snapshotRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("snapshot_rows"),
		Help:        "Rows in the snapshot used by the last refresh",
		ConstLabels: constLabels,
	})

	m.filteredRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("filtered_rows"),
		Help:        "Rows left after the filter of the last refresh",
		ConstLabels: constLabels,
	})

	// Snapshot Metrics
	m.repositorySnapshotLoadDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("repository_snapshot_load_duration_milliseconds"),
		Help:        "Store snapshot load duration in milliseconds",
		Buckets:     m.storeBuckets,
		ConstLabels: constLabels,
	})

	m.repositorySnapshotLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("repository_snapshot_last_unix"),
		Help:        "Unix timestamp of the last store snapshot load",
		ConstLabels: constLabels,
	})

	m.repositorySnapshotCount = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("repository_snapshot_count_total"),
		Help:        "Total number of store snapshots loaded",
		ConstLabels: constLabels,
	})

	m.repositorySnapshotLastDurationMs = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("repository_snapshot_last_duration_milliseconds"),
		Help:        "Last store snapshot load duration in milliseconds",
		ConstLabels: constLabels,
	})

	// Repository Metrics
	m.repositoryRecordsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("repository_records_total"),
		Help:        "Total number of employee records in the store",
		ConstLabels: constLabels,
	})

	m.repositoryWrites = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("repository_writes_total"),
			Help:        "Total number of store writes by operation",
			ConstLabels: constLabels,
		},
		[]string{"operation"},
	)

	m.repositoryUpdateLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("repository_update_latency_milliseconds"),
		Help:        "Store write latency in milliseconds",
		Buckets:     m.storeBuckets,
		ConstLabels: constLabels,
	})

	m.repositoryQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("repository_query_latency_milliseconds"),
		Help:        "Store query latency in milliseconds",
		Buckets:     m.storeBuckets,
		ConstLabels: constLabels,
	})

	// Idempotency Metrics
	m.idempotentReplays = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("idempotent_replays_total"),
		Help:        "Total number of create requests answered from the idempotency guard",
		ConstLabels: constLabels,
	})

	m.idempotencyKeys = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("idempotency_keys"),
		Help:        "Idempotency keys currently remembered",
		ConstLabels: constLabels,
	})

	// HTTP Performance Metrics
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_requests_total"),
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_request_duration_milliseconds"),
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// Error Metrics
	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_component_total"),
			Help:        "Total number of errors by component",
			ConstLabels: constLabels,
		},
		[]string{"component", "error_type"},
	)

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_type_total"),
			Help:        "Total number of errors by type",
			ConstLabels: constLabels,
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_endpoint_total"),
			Help:        "Total number of errors by endpoint",
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("error_latency_milliseconds"),
			Help:        "Latency of operations that resulted in errors",
			Buckets:     m.histogramBuckets,
			ConstLabels: constLabels,
		},
		[]string{"component", "error_type"},
	)

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_memory_usage_bytes"),
		Help:        "System memory usage in bytes",
		ConstLabels: constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_goroutine_count"),
		Help:        "Number of goroutines",
		ConstLabels: constLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_gc_pause_time_milliseconds"),
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: constLabels,
	})
}

// Analytics Metrics Functions.

// RecordRefresh counts a bundle refresh and the row counts it saw.
func RecordRefresh(filtered bool, totalRows, filteredRows int) {
	if !globalManager.enabled {
		return
	}
	label := "false"
	if filtered {
		label = "true"
	}
	globalManager.refreshes.WithLabelValues(label).Inc()
	globalManager.snapshotRows.Set(float64(totalRows))
	globalManager.filteredRows.Set(float64(filteredRows))
}

// RecordRefreshLatency records refresh latency in milliseconds.
func RecordRefreshLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.refreshLatency.Observe(latencyMs)
}

// RecordMetricUnavailable counts a metric reported unavailable.
func RecordMetricUnavailable(metric string) {
	if !globalManager.enabled {
		return
	}
	globalManager.metricUnavailable.WithLabelValues(metric).Inc()
}

// Snapshot Metrics Functions.

// RecordRepositorySnapshotLoad records a snapshot load and its row count.
func RecordRepositorySnapshotLoad(latencyMs float64, rows int) {
	if !globalManager.enabled {
		return
	}
	globalManager.repositorySnapshotLoadDuration.Observe(latencyMs)
	globalManager.repositorySnapshotLastDurationMs.Set(latencyMs)
	globalManager.repositorySnapshotLastUnix.Set(float64(time.Now().Unix()))
	globalManager.repositorySnapshotCount.Inc()
	globalManager.repositoryRecordsTotal.Set(float64(rows))
}

// Repository Metrics Functions.

// UpdateRepositoryRecordsTotal sets the number of employee records.
func UpdateRepositoryRecordsTotal(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.repositoryRecordsTotal.Set(float64(count))
}

// RecordRepositoryWrite counts a store write by operation.
func RecordRepositoryWrite(operation string) {
	if !globalManager.enabled {
		return
	}
	globalManager.repositoryWrites.WithLabelValues(operation).Inc()
}

// RecordRepositoryUpdateLatency records store write latency.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records store query latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// Idempotency Metrics Functions.

// RecordIdempotentReplay counts a create answered from the guard.
func RecordIdempotentReplay() {
	if !globalManager.enabled {
		return
	}
	globalManager.idempotentReplays.Inc()
}

// UpdateIdempotencyKeys sets the number of remembered keys.
func UpdateIdempotencyKeys(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.idempotencyKeys.Set(float64(count))
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// SystemRefreshInterval returns how often serve samples runtime gauges.
func SystemRefreshInterval() time.Duration {
	return time.Duration(globalManager.systemInterval.Load())
}

// SetSystemRefreshInterval changes the runtime gauge sampling interval of
// the global manager. Non-positive values are ignored.
func SetSystemRefreshInterval(interval time.Duration) {
	if interval > 0 {
		globalManager.systemInterval.Store(int64(interval))
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
