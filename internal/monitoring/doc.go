/*
Package monitoring provides performance monitoring and metrics collection.

# Overview

This package implements Prometheus-based metrics collection for the
service, tracking HTTP requests, decrypt attempts, chapter fetches,
circuit breaker states, and job activity.

# Features

- HTTP request metrics (latency, throughput, size)
- Decrypt attempt metrics (per-site outcomes, durations, in-flight gauge)
- Chapter fetch metrics (per-site status, durations)
- Circuit breaker state per site
- Book fetch job metrics
- WebSocket connection metrics
- Bounded-window latency percentiles for the JSON stats API

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Record custom metrics
	metrics.RecordDecrypt("qidian", "ok", 120*time.Millisecond)

	// Time operations
	timer := monitoring.NewFetchTimer(metrics, "qidian")
	// ... perform fetch ...
	timer.Stop("ok")

# Metrics Endpoint

Expose metrics via the standard Prometheus endpoint:

	import "github.com/prometheus/client_golang/prometheus/promhttp"
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
