package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Decrypt metrics
	DecryptTotal    *prometheus.CounterVec
	DecryptDuration *prometheus.HistogramVec
	DecryptInFlight prometheus.Gauge

	// Fetch metrics
	FetchTotal    *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec

	// Circuit breaker metrics
	BreakerState *prometheus.GaugeVec

	// Job metrics
	JobsActive    prometheus.Gauge
	JobsTotal     prometheus.Counter
	ChaptersTotal *prometheus.CounterVec

	// Registry metrics
	SitesRegistered prometheus.Gauge

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	// Latency trackers feeding the /stats endpoint
	DecryptLatency *LatencyTracker
	FetchLatency   *LatencyTracker

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests     int64
	TotalErrors       int64
	ActiveJobs        int64
	ActiveConnections int64
	TotalDuration     float64 // sum of all request durations
	RequestCount      int64   // count for averaging
	DecryptAttempts   int64
	DecryptFailures   int64
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "noveld_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "noveld_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "noveld_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "noveld_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		// Decrypt metrics. Buckets stretch to the 5s deadline so
		// timeouts land in the last finite bucket.
		DecryptTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "noveld_decrypt_total",
				Help: "Total number of decrypt attempts by outcome",
			},
			[]string{"site", "outcome"},
		),
		DecryptDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "noveld_decrypt_duration_seconds",
				Help:    "Decrypt attempt duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"site"},
		),
		DecryptInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "noveld_decrypt_in_flight",
				Help: "Number of decrypt attempts currently executing",
			},
		),

		// Fetch metrics
		FetchTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "noveld_fetch_total",
				Help: "Total number of chapter fetches by status",
			},
			[]string{"site", "status"},
		),
		FetchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "noveld_fetch_duration_seconds",
				Help:    "Chapter fetch duration in seconds",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"site"},
		),

		// Circuit breaker metrics
		BreakerState: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "noveld_breaker_state",
				Help: "Circuit breaker state per site (0=closed, 1=half-open, 2=open)",
			},
			[]string{"site"},
		),

		// Job metrics
		JobsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "noveld_jobs_active",
				Help: "Number of running book fetch jobs",
			},
		),
		JobsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "noveld_jobs_total",
				Help: "Total number of book fetch jobs created",
			},
		),
		ChaptersTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "noveld_chapters_total",
				Help: "Total chapters processed by jobs, by status",
			},
			[]string{"status"},
		),

		// Registry metrics
		SitesRegistered: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "noveld_sites_registered",
				Help: "Number of sites in the capability registry",
			},
		),

		// WebSocket metrics
		WSConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "noveld_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "noveld_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),

		// System metrics
		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "noveld_uptime_seconds",
				Help: "Service uptime in seconds",
			},
		),

		DecryptLatency: NewLatencyTracker(4096),
		FetchLatency:   NewLatencyTracker(4096),
	}

	// Start uptime updater
	go m.updateUptime()

	return m
}

// updateUptime continuously updates the uptime metric
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	// Update snapshot
	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if len(status) > 0 && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordDecrypt records one decrypt attempt
func (m *Metrics) RecordDecrypt(site, outcome string, duration time.Duration) {
	m.DecryptTotal.WithLabelValues(site, outcome).Inc()
	m.DecryptDuration.WithLabelValues(site).Observe(duration.Seconds())
	m.DecryptLatency.Record(duration)

	m.mu.Lock()
	m.snapshot.DecryptAttempts++
	if outcome != "ok" {
		m.snapshot.DecryptFailures++
	}
	m.mu.Unlock()
}

// RecordFetch records one chapter fetch
func (m *Metrics) RecordFetch(site, status string, duration time.Duration) {
	m.FetchTotal.WithLabelValues(site, status).Inc()
	m.FetchDuration.WithLabelValues(site).Observe(duration.Seconds())
	m.FetchLatency.Record(duration)
}

// SetBreakerState records a circuit breaker state change
func (m *Metrics) SetBreakerState(site string, state int) {
	m.BreakerState.WithLabelValues(site).Set(float64(state))
}

// RecordChapter counts one chapter outcome within a job
func (m *Metrics) RecordChapter(status string) {
	m.ChaptersTotal.WithLabelValues(status).Inc()
}

// SetJobsActive sets the number of running jobs
func (m *Metrics) SetJobsActive(count int) {
	m.JobsActive.Set(float64(count))
	m.mu.Lock()
	m.snapshot.ActiveJobs = int64(count)
	m.mu.Unlock()
}

// IncJobsTotal increments the total jobs counter
func (m *Metrics) IncJobsTotal() {
	m.JobsTotal.Inc()
}

// SetSitesRegistered sets the capability registry size
func (m *Metrics) SetSitesRegistered(count int) {
	m.SitesRegistered.Set(float64(count))
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}

// Snapshot returns a copy of the current tallies for the JSON stats API
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
