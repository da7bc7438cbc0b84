// Package metrics provides Prometheus metrics for the APM job board service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the job board.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Business metrics
	jobsTotal        prometheus.Gauge
	jobsByStatus     *prometheus.GaugeVec
	jobMutations     *prometheus.CounterVec
	trackedEvents    *prometheus.CounterVec
	duplicateViews   prometheus.Counter
	eventLogSize     prometheus.Gauge
	importsTotal     *prometheus.CounterVec
	exportsTotal     prometheus.Counter
	publishedChanges *prometheus.CounterVec

	// Notification queue and worker metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDropped       *prometheus.CounterVec
	workerActive       prometheus.Gauge
	workerDeliveryTime prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Storage Metrics
	storageLatency        *prometheus.HistogramVec
	storageErrors         *prometheus.CounterVec
	storageDecodeFailures *prometheus.CounterVec

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
		namespace:        "apmboard",
		subsystem:        "",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// Enabled reports whether recording is active.
func (m *Manager) Enabled() bool { return m.enabled }

// RefreshInterval is how often gauge updaters should run.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

func (m *Manager) opts(name, help string) prometheus.Opts {
	return prometheus.Opts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
		Buckets:     buckets,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.jobsTotal = auto.NewGauge(prometheus.GaugeOpts(m.opts("jobs_total", "Number of job postings currently stored")))
	m.jobsByStatus = auto.NewGaugeVec(prometheus.GaugeOpts(m.opts("jobs_by_status", "Number of job postings per status")), []string{"status"})
	m.jobMutations = auto.NewCounterVec(prometheus.CounterOpts(m.opts("job_mutations_total", "Job postings mutated, by operation")), []string{"operation"})
	m.trackedEvents = auto.NewCounterVec(prometheus.CounterOpts(m.opts("tracked_events_total", "Interaction events recorded, by event type")), []string{"event_type"})
	m.duplicateViews = auto.NewCounter(prometheus.CounterOpts(m.opts("duplicate_views_total", "Repeated session views acknowledged without counting")))
	m.eventLogSize = auto.NewGauge(prometheus.GaugeOpts(m.opts("event_log_size", "Number of events in the analytics log")))
	m.importsTotal = auto.NewCounterVec(prometheus.CounterOpts(m.opts("imports_total", "Snapshot imports, by result")), []string{"result"})
	m.exportsTotal = auto.NewCounter(prometheus.CounterOpts(m.opts("exports_total", "Snapshot exports")))
	m.publishedChanges = auto.NewCounterVec(prometheus.CounterOpts(m.opts("published_messages_total", "Change notifications published, by subject and result")), []string{"subject", "result"})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts(m.opts("notify_queue_size", "Notifications waiting for delivery")))
	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts(m.opts("notify_queue_capacity", "Maximum number of queued notifications")))
	m.queueEnqueued = auto.NewCounter(prometheus.CounterOpts(m.opts("notify_queue_enqueued_total", "Notifications accepted by the queue")))
	m.queueDropped = auto.NewCounterVec(prometheus.CounterOpts(m.opts("notify_queue_dropped_total", "Notifications dropped before delivery, by reason")), []string{"reason"})
	m.workerActive = auto.NewGauge(prometheus.GaugeOpts(m.opts("notify_workers_active", "Running notification delivery workers")))
	m.workerDeliveryTime = auto.NewHistogram(m.histOpts("notify_delivery_latency_milliseconds", "Time spent delivering one notification", m.histogramBuckets))

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts(m.opts("http_requests_total", "Total number of HTTP requests by endpoint and method")),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.storageLatency = auto.NewHistogramVec(
		m.histOpts("storage_operation_latency_milliseconds", "Blob storage operation latency in milliseconds", m.histogramBuckets),
		[]string{"backend", "operation"},
	)
	m.storageErrors = auto.NewCounterVec(
		prometheus.CounterOpts(m.opts("storage_errors_total", "Blob storage operation failures")),
		[]string{"backend", "operation"},
	)
	m.storageDecodeFailures = auto.NewCounterVec(
		prometheus.CounterOpts(m.opts("storage_decode_failures_total", "Persisted blobs that could not be decoded and were treated as empty")),
		[]string{"key"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts(m.opts("errors_by_component_total", "Total number of errors by component")),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts(m.opts("errors_by_type_total", "Total number of errors by type")),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts(m.opts("errors_by_endpoint_total", "Total number of errors by endpoint")),
		[]string{"endpoint", "method", "error_type"},
	)
	m.errorLatency = auto.NewHistogramVec(
		m.histOpts("error_latency_milliseconds", "Latency of operations that resulted in errors", m.histogramBuckets),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts(m.opts("system_memory_usage_bytes", "System memory usage in bytes")))
	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts(m.opts("system_goroutine_count", "Number of goroutines")))
	m.systemGCPauseTime = auto.NewHistogram(m.histOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// UpdateJobCounts sets the job gauges from a status -> count map.
func UpdateJobCounts(total int, byStatus map[string]int) {
	if !globalManager.enabled {
		return
	}
	globalManager.jobsTotal.Set(float64(total))
	for status, n := range byStatus {
		globalManager.jobsByStatus.WithLabelValues(status).Set(float64(n))
	}
}

// RecordJobMutation counts a create/update/delete/bulk/import operation.
func RecordJobMutation(operation string) {
	if !globalManager.enabled {
		return
	}
	globalManager.jobMutations.WithLabelValues(operation).Inc()
}

// RecordTrackedEvent counts a recorded view or click.
func RecordTrackedEvent(eventType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.trackedEvents.WithLabelValues(eventType).Inc()
}

// RecordDuplicateView counts a session view that was not counted again.
func RecordDuplicateView() {
	if !globalManager.enabled {
		return
	}
	globalManager.duplicateViews.Inc()
}

// UpdateEventLogSize sets the analytics log length.
func UpdateEventLogSize(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.eventLogSize.Set(float64(n))
}

// RecordImport counts an import attempt; result is "success" or "rejected".
func RecordImport(result string) {
	if !globalManager.enabled {
		return
	}
	globalManager.importsTotal.WithLabelValues(result).Inc()
}

// RecordExport counts a snapshot export.
func RecordExport() {
	if !globalManager.enabled {
		return
	}
	globalManager.exportsTotal.Inc()
}

// RecordPublish counts a change notification.
func RecordPublish(subject, result string) {
	if !globalManager.enabled {
		return
	}
	globalManager.publishedChanges.WithLabelValues(subject, result).Inc()
}

// UpdateQueueSize sets the number of queued notifications.
func UpdateQueueSize(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.queueSize.Set(float64(n))
}

// UpdateQueueCapacity sets the notification queue capacity.
func UpdateQueueCapacity(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.queueCapacity.Set(float64(n))
}

// RecordQueueEnqueue counts an accepted notification.
func RecordQueueEnqueue() {
	if !globalManager.enabled {
		return
	}
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDrop counts a notification that was not queued.
func RecordQueueDrop(reason string) {
	if !globalManager.enabled {
		return
	}
	globalManager.queueDropped.WithLabelValues(reason).Inc()
}

// UpdateWorkerActiveCount sets the number of running delivery workers.
func UpdateWorkerActiveCount(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.workerActive.Set(float64(n))
}

// RecordDeliveryLatency records how long one delivery took.
func RecordDeliveryLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.workerDeliveryTime.Observe(latencyMs)
}

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

// RecordStorageLatency records a blob operation latency in milliseconds.
func RecordStorageLatency(backend, operation string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.storageLatency.WithLabelValues(backend, operation).Observe(latencyMs)
}

// RecordStorageError counts a failed blob operation.
func RecordStorageError(backend, operation string) {
	if !globalManager.enabled {
		return
	}
	globalManager.storageErrors.WithLabelValues(backend, operation).Inc()
	globalManager.errorRateByComponent.WithLabelValues("storage", operation).Inc()
}

// RecordStorageDecodeFailure counts a blob that failed to decode.
func RecordStorageDecodeFailure(key string) {
	if !globalManager.enabled {
		return
	}
	globalManager.storageDecodeFailures.WithLabelValues(key).Inc()
}

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

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// SetEnabled toggles recording on the global manager.
func SetEnabled(enabled bool) {
	globalManager.enabled = enabled
}

// RefreshInterval is the gauge refresh period of the global manager.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}
