/*
Package tracing provides lightweight request tracing for debugging
production issues.

# Overview

This package tracks requests through the fetch and decrypt paths with
parent-child spans. It follows OpenTelemetry concepts with a minimal
implementation tailored to the service's needs.

# Features

- Trace context propagation via HTTP headers
- Span creation and management with parent-child relationships
- Automatic trace ID generation
- Gin middleware for automatic instrumentation
- Structured logging integration
- Low overhead with buffered span collection

# Usage

	// Create tracer
	tracer := tracing.New("noveld", logger)

	// HTTP middleware
	router.Use(tracing.HTTPMiddleware(tracer))

	// Manual span creation
	span, ctx := tracer.StartSpan(ctx, "decrypt")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()

	span.SetTag("site_id", "qidian")

# Trace Format

Traces use standard HTTP headers for propagation: X-Trace-ID carries the
trace identifier and X-Span-ID the caller's span. Both are echoed on
responses so clients can correlate.
*/
package tracing
