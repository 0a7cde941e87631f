package monitoring

import (
	gomath "math"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// LatencyTracker keeps a bounded ring of recent durations for
// percentile summaries. Prometheus histograms answer the same question
// for scrapers; this feeds the JSON /stats endpoint directly.
type LatencyTracker struct {
	mu      sync.Mutex
	samples []float64 // seconds
	next    int
	full    bool
}

// LatencySummary holds percentile statistics in milliseconds.
type LatencySummary struct {
	Count   int     `json:"count"`
	MeanMs  float64 `json:"mean_ms"`
	StdevMs float64 `json:"stdev_ms"`
	P50Ms   float64 `json:"p50_ms"`
	P90Ms   float64 `json:"p90_ms"`
	P99Ms   float64 `json:"p99_ms"`
	MaxMs   float64 `json:"max_ms"`
}

// NewLatencyTracker creates a tracker retaining the last size samples.
func NewLatencyTracker(size int) *LatencyTracker {
	if size <= 0 {
		size = 1024
	}
	return &LatencyTracker{
		samples: make([]float64, size),
	}
}

// Record adds one observation.
func (t *LatencyTracker) Record(d time.Duration) {
	t.mu.Lock()
	t.samples[t.next] = d.Seconds()
	t.next++
	if t.next == len(t.samples) {
		t.next = 0
		t.full = true
	}
	t.mu.Unlock()
}

// Summary computes percentile statistics over the retained window.
func (t *LatencyTracker) Summary() LatencySummary {
	t.mu.Lock()
	n := t.next
	if t.full {
		n = len(t.samples)
	}
	sorted := make([]float64, n)
	copy(sorted, t.samples[:n])
	t.mu.Unlock()

	if n == 0 {
		return LatencySummary{}
	}

	sort.Float64s(sorted)

	mean := stat.Mean(sorted, nil)
	variance := stat.Variance(sorted, nil)
	if n < 2 {
		variance = 0
	}

	toMs := func(s float64) float64 { return s * 1000 }

	return LatencySummary{
		Count:   n,
		MeanMs:  toMs(mean),
		StdevMs: toMs(gomath.Sqrt(variance)),
		P50Ms:   toMs(stat.Quantile(0.5, stat.Empirical, sorted, nil)),
		P90Ms:   toMs(stat.Quantile(0.9, stat.Empirical, sorted, nil)),
		P99Ms:   toMs(stat.Quantile(0.99, stat.Empirical, sorted, nil)),
		MaxMs:   toMs(sorted[n-1]),
	}
}
