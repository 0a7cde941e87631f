package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saudadez21/novel-downloader-sub001/internal/monitoring"
)

// StatsReport aggregates service statistics for the JSON stats API.
// Prometheus serves the same numbers for scrapers; this shape is for
// humans and dashboards.
type StatsReport struct {
	Timestamp time.Time         `json:"timestamp"`
	Summary   StatsSummary      `json:"summary"`
	Decrypt   DecryptStats      `json:"decrypt"`
	Fetch     FetchStats        `json:"fetch"`
	Breakers  map[string]string `json:"breakers"`
	Jobs      JobStats          `json:"jobs"`
}

// StatsSummary provides high-level request statistics
type StatsSummary struct {
	TotalRequests     int64   `json:"total_requests"`
	AverageLatencyMs  float64 `json:"average_latency_ms"`
	ErrorRate         float64 `json:"error_rate"`
	ActiveConnections int     `json:"active_connections"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
}

// DecryptStats summarizes unlock bridge activity
type DecryptStats struct {
	Attempts int64                     `json:"attempts"`
	Failures int64                     `json:"failures"`
	Latency  monitoring.LatencySummary `json:"latency"`
}

// FetchStats summarizes chapter fetch latency
type FetchStats struct {
	Latency monitoring.LatencySummary `json:"latency"`
}

// JobStats summarizes the book fetch worker pool
type JobStats struct {
	Active int64 `json:"active"`
	Known  int   `json:"known"`
}

// Stats returns the aggregated statistics report
func (h *Handlers) Stats(c *gin.Context) {
	snapshot := h.metrics.Snapshot()

	var avgLatency float64
	if snapshot.RequestCount > 0 {
		avgLatency = (snapshot.TotalDuration / float64(snapshot.RequestCount)) * 1000
	}
	var errorRate float64
	if snapshot.TotalRequests > 0 {
		errorRate = float64(snapshot.TotalErrors) / float64(snapshot.TotalRequests)
	}

	breakers := make(map[string]string)
	for site, state := range h.orch.BreakerStates() {
		breakers[site] = state.String()
	}

	c.JSON(http.StatusOK, StatsReport{
		Timestamp: time.Now(),
		Summary: StatsSummary{
			TotalRequests:     snapshot.TotalRequests,
			AverageLatencyMs:  avgLatency,
			ErrorRate:         errorRate,
			ActiveConnections: int(snapshot.ActiveConnections),
			UptimeSeconds:     time.Since(h.started).Seconds(),
		},
		Decrypt: DecryptStats{
			Attempts: snapshot.DecryptAttempts,
			Failures: snapshot.DecryptFailures,
			Latency:  h.metrics.DecryptLatency.Summary(),
		},
		Fetch: FetchStats{
			Latency: h.metrics.FetchLatency.Summary(),
		},
		Breakers: breakers,
		Jobs: JobStats{
			Active: snapshot.ActiveJobs,
			Known:  len(h.jobs.List()),
		},
	})
}
