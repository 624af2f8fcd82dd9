// Package metrics provides Prometheus metrics for the matchboard service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector the service exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Reconciliation
	ticks          *prometheus.CounterVec
	tickLatency    *prometheus.HistogramVec
	liveMatches    prometheus.Gauge
	newMatches     prometheus.Counter
	cards          prometheus.Gauge
	visibleCards   prometheus.Gauge
	matchesEnded   prometheus.Counter
	scoreWrites    prometheus.Counter
	statsPatches   prometheus.Counter
	statsErrors    prometheus.Counter
	periodSwitches *prometheus.CounterVec
	cardSwaps      prometheus.Counter

	// Upstream API
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec

	// Stats job queue and workers
	queueSize         prometheus.Gauge
	queueCapacity     prometheus.Gauge
	queueUtilization  prometheus.Gauge
	queueEnqueued     prometheus.Counter
	queueDequeued     prometheus.Counter
	queueEnqueueError prometheus.Counter
	workerCount       prometheus.Gauge
	workerLatency     prometheus.Histogram
	workerErrors      prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Push channels
	wsClients       prometheus.Gauge
	wsMessages      prometheus.Counter
	wsDropped       prometheus.Counter
	publisherErrors *prometheus.CounterVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var (
	customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry
	globalManager  *Manager                   //nolint:gochecknoglobals // singleton used by package-level recorders
)

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "matchboard",
		subsystem:        "dashboard",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
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
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: m.histogramBuckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.ticks = m.counterVec("reconcile_ticks_total", "Reconciliation ticks by task and result", "task", "result")
	m.tickLatency = m.histogramVec("reconcile_tick_duration_milliseconds", "Reconciliation tick duration in milliseconds", "task")
	m.liveMatches = m.gauge("live_matches", "Matches in the registry after the last refresh")
	m.newMatches = m.counter("new_matches_total", "Matches seen for the first time")
	m.cards = m.gauge("cards", "Cards currently on the board")
	m.visibleCards = m.gauge("visible_cards", "Cards shown by the active league filter")
	m.matchesEnded = m.counter("matches_ended_total", "Scoreboards marked ENDED")
	m.scoreWrites = m.counter("scoreboard_writes_total", "Scoreboard texts rewritten")
	m.statsPatches = m.counter("stats_patches_total", "Statistic lines overwritten")
	m.statsErrors = m.counter("stats_fetch_errors_total", "Failed statistics fetches")
	m.periodSwitches = m.counterVec("period_switches_total", "Period selections by target period", "period")
	m.cardSwaps = m.counter("card_swaps_total", "Drag/drop card swaps")

	m.upstreamRequests = m.counterVec("upstream_requests_total", "Upstream API requests", "endpoint", "status")
	m.upstreamLatency = m.histogramVec("upstream_latency_milliseconds", "Upstream API latency in milliseconds", "endpoint")

	m.queueSize = m.gauge("stats_queue_size", "Pending stats jobs")
	m.queueCapacity = m.gauge("stats_queue_capacity", "Stats queue capacity")
	m.queueUtilization = m.gauge("stats_queue_utilization_ratio", "Stats queue size / capacity")
	m.queueEnqueued = m.counter("stats_queue_enqueue_total", "Stats jobs enqueued")
	m.queueDequeued = m.counter("stats_queue_dequeue_total", "Stats jobs dequeued")
	m.queueEnqueueError = m.counter("stats_queue_enqueue_errors_total", "Stats jobs rejected by the queue")
	m.workerCount = m.gauge("stats_workers", "Stats worker goroutines")
	m.workerLatency = m.histogram("stats_worker_latency_milliseconds", "Stats job processing latency in milliseconds")
	m.workerErrors = m.counter("stats_worker_errors_total", "Stats jobs that failed")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.wsClients = m.gauge("ws_clients", "Connected WebSocket clients")
	m.wsMessages = m.counter("ws_messages_total", "WebSocket messages delivered")
	m.wsDropped = m.counter("ws_messages_dropped_total", "WebSocket messages dropped for slow clients")
	m.publisherErrors = m.counterVec("publisher_errors_total", "Card event publish failures by sink", "sink")

	m.errorsByComponent = m.counterVec("errors_total", "Errors by component and type", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Goroutine count")
	m.systemGCPauseTime = m.histogram("system_gc_pause_milliseconds", "Average GC pause in milliseconds")
}

// Reconciliation recorders.

func RecordTick(task, result string, latencyMs float64) {
	globalManager.ticks.WithLabelValues(task, result).Inc()
	globalManager.tickLatency.WithLabelValues(task).Observe(latencyMs)
}

func UpdateLiveMatches(n int)         { globalManager.liveMatches.Set(float64(n)) }
func RecordNewMatches(n int)          { globalManager.newMatches.Add(float64(n)) }
func RecordMatchEnded()               { globalManager.matchesEnded.Inc() }
func RecordScoreboardWrite()          { globalManager.scoreWrites.Inc() }
func RecordStatsPatches(n int)        { globalManager.statsPatches.Add(float64(n)) }
func RecordStatsFetchError()          { globalManager.statsErrors.Inc() }
func RecordPeriodSwitch(period string) { globalManager.periodSwitches.WithLabelValues(period).Inc() }
func RecordCardSwap()                 { globalManager.cardSwaps.Inc() }

// UpdateCards sets the card and visible-card gauges.
func UpdateCards(total, visible int) {
	globalManager.cards.Set(float64(total))
	globalManager.visibleCards.Set(float64(visible))
}

// Upstream recorders.

func RecordUpstreamRequest(endpoint, status string, latencyMs float64) {
	globalManager.upstreamRequests.WithLabelValues(endpoint, status).Inc()
	globalManager.upstreamLatency.WithLabelValues(endpoint).Observe(latencyMs)
}

// Queue and worker recorders.

func UpdateQueueSize(size int)         { globalManager.queueSize.Set(float64(size)) }
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }
func UpdateQueueUtilization(u float64) { globalManager.queueUtilization.Set(u) }
func RecordQueueEnqueue()              { globalManager.queueEnqueued.Inc() }
func RecordQueueDequeue()              { globalManager.queueDequeued.Inc() }
func RecordQueueEnqueueError()         { globalManager.queueEnqueueError.Inc() }
func UpdateWorkerCount(n int)          { globalManager.workerCount.Set(float64(n)) }
func RecordWorkerLatency(ms float64)   { globalManager.workerLatency.Observe(ms) }
func RecordWorkerError()               { globalManager.workerErrors.Inc() }

// HTTP recorders.

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// Push recorders.

func UpdateWSClients(n int)            { globalManager.wsClients.Set(float64(n)) }
func RecordWSMessage()                 { globalManager.wsMessages.Inc() }
func RecordWSDropped()                 { globalManager.wsDropped.Inc() }
func RecordPublisherError(sink string) { globalManager.publisherErrors.WithLabelValues(sink).Inc() }

// RecordErrorByComponent counts an error raised by a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// System recorders.

func UpdateSystemMemoryUsage(bytes uint64)    { globalManager.systemMemoryUsage.Set(float64(bytes)) }
func UpdateSystemGoroutineCount(count int)    { globalManager.systemGoroutineCount.Set(float64(count)) }
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the registry served on /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
