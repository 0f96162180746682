// Package metrics provides Prometheus metrics for the QuantumCrowd prediction service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Prediction pipeline
	predictionsSubmitted prometheus.Counter
	predictionsCompleted prometheus.Counter
	predictionsFailed    prometheus.Counter
	predictionsRejected  *prometheus.CounterVec
	scoringLatency       prometheus.Histogram
	kernelLatency        *prometheus.HistogramVec

	// Store
	storeUpserts          prometheus.Counter
	storedPredictions     prometheus.Gauge
	storeUpdateLatency    prometheus.Histogram
	publicationsAttached  prometheus.Counter
	publicationsIgnored   *prometheus.CounterVec
	trackedJobs           prometheus.Gauge

	// Queue
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueued          prometheus.Counter
	queueDequeued          prometheus.Counter
	queueEnqueueErrors     prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerBusy              prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter
	workerPanics            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	rateLimited         *prometheus.CounterVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
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
		namespace:        "qcrowd",
		subsystem:        "prediction",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		constLabels:      prometheus.Labels{},
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

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels, Buckets: m.histogramBuckets,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	b := m.histogramBuckets

	m.predictionsSubmitted = m.counter("submitted_total", "Total number of prediction requests accepted for scoring")
	m.predictionsCompleted = m.counter("completed_total", "Total number of prediction jobs that produced a stored record")
	m.predictionsFailed = m.counter("failed_total", "Total number of prediction jobs that failed without touching the store")
	m.predictionsRejected = m.counterVec("rejected_total", "Prediction requests rejected before a job was scheduled", "reason")
	m.scoringLatency = m.histogram("scoring_latency_milliseconds", "End-to-end scoring latency (encode, kernel, synthesize) in milliseconds", b)
	m.kernelLatency = m.histogramVec("kernel_latency_milliseconds", "Kernel similarity evaluation latency in milliseconds", "kernel")

	m.storeUpserts = m.counter("store_upserts_total", "Total number of prediction store upserts")
	m.storedPredictions = m.gauge("stored_predictions", "Number of subjects with a live prediction record")
	m.storeUpdateLatency = m.histogram("store_update_latency_milliseconds", "Prediction store mutation latency in milliseconds", b)
	m.publicationsAttached = m.counter("publications_attached_total", "Publication handles attached to prediction records")
	m.publicationsIgnored = m.counterVec("publications_ignored_total", "Publication notifications acknowledged without effect", "reason")
	m.trackedJobs = m.gauge("tracked_jobs", "Number of prediction jobs kept in the job history")

	m.queueSize = m.gauge("queue_size", "Current number of jobs waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (0.0 to 1.0)")
	m.queueEnqueued = m.counter("queue_enqueue_total", "Total number of jobs enqueued")
	m.queueDequeued = m.counter("queue_dequeue_total", "Total number of jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of failed enqueue attempts")

	m.workerCount = m.gauge("worker_count", "Number of scoring workers")
	m.workerBusy = m.gauge("worker_busy", "Number of workers currently scoring a job")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Worker job processing latency in milliseconds", b)
	m.workerErrors = m.counter("worker_errors_total", "Total number of worker processing errors")
	m.workerPanics = m.counter("worker_panics_total", "Total number of recovered worker panics")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")
	m.rateLimited = m.counterVec("rate_limited_total", "Requests rejected by the rate limiter", "endpoint")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component and error type", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint, method and error type", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Prediction pipeline.

// RecordPredictionSubmitted increments the accepted predictions counter.
func RecordPredictionSubmitted() { globalManager.predictionsSubmitted.Inc() }

// RecordPredictionCompleted increments the completed predictions counter.
func RecordPredictionCompleted() { globalManager.predictionsCompleted.Inc() }

// RecordPredictionFailed increments the failed predictions counter.
func RecordPredictionFailed() { globalManager.predictionsFailed.Inc() }

// RecordPredictionRejected counts a request rejected before scheduling, e.g. "not_found" or "backpressure".
func RecordPredictionRejected(reason string) {
	globalManager.predictionsRejected.WithLabelValues(reason).Inc()
}

// RecordScoringLatency records scoring latency in milliseconds.
func RecordScoringLatency(latencyMs float64) { globalManager.scoringLatency.Observe(latencyMs) }

// RecordKernelLatency records kernel evaluation latency for the named kernel.
func RecordKernelLatency(kernel string, latencyMs float64) {
	globalManager.kernelLatency.WithLabelValues(kernel).Observe(latencyMs)
}

// Store.

// RecordStoreUpsert increments the store upsert counter.
func RecordStoreUpsert() { globalManager.storeUpserts.Inc() }

// UpdateStoredPredictions sets the number of live prediction records.
func UpdateStoredPredictions(count int) { globalManager.storedPredictions.Set(float64(count)) }

// RecordStoreUpdateLatency records a store mutation latency in milliseconds.
func RecordStoreUpdateLatency(latencyMs float64) { globalManager.storeUpdateLatency.Observe(latencyMs) }

// RecordPublicationAttached increments the attached publication counter.
func RecordPublicationAttached() { globalManager.publicationsAttached.Inc() }

// RecordPublicationIgnored counts a notification that changed nothing.
func RecordPublicationIgnored(reason string) {
	globalManager.publicationsIgnored.WithLabelValues(reason).Inc()
}

// UpdateTrackedJobs sets the job history size.
func UpdateTrackedJobs(count int) { globalManager.trackedJobs.Set(float64(count)) }

// Queue.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) { globalManager.queueUtilization.Set(utilization) }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueued.Inc() }

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() { globalManager.queueDequeued.Inc() }

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// Workers.

// UpdateWorkerCount sets the number of workers.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// AddWorkerBusy adjusts the busy worker gauge by delta.
func AddWorkerBusy(delta float64) { globalManager.workerBusy.Add(delta) }

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// RecordWorkerPanic increments the recovered panic counter.
func RecordWorkerPanic() { globalManager.workerPanics.Inc() }

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordRateLimited counts a request rejected by the rate limiter.
func RecordRateLimited(endpoint string) { globalManager.rateLimited.WithLabelValues(endpoint).Inc() }

// Errors.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
