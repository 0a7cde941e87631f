/*
Package resilience provides circuit breaker implementation for graceful degradation.

# Overview

This package implements the circuit breaker pattern to prevent hammering
content sites that have become unavailable or slow. Breakers guard
transport calls only; definitive per-attempt outcomes like a vendor
unlock rejection never count against a site's health.

# Features

- Three-state circuit breaker (Closed, Open, Half-Open)
- Configurable failure thresholds and timeouts
- Automatic state transitions
- Per-site breaker groups with lazy creation
- State change callbacks for monitoring
- Thread-safe operations

# Usage

	// One breaker per site, shared settings
	group := resilience.NewGroup(resilience.Settings{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("breaker state change", zap.String("site_id", name))
		},
	})

	err := group.Do("qidian", func() error {
		return client.Fetch(ctx, url)
	})

# States

- Closed: Normal operation, requests pass through
- Open: Requests fail fast with ErrCircuitOpen until the timeout expires
- Half-Open: A bounded number of probes decide whether to close again
*/
package resilience
