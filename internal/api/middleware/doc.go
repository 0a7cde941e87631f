// Package middleware provides the HTTP middleware stack for the novel
// downloader service.
//
// Middleware:
//   - CORS: cross-origin support for reader frontends
//   - RateLimit: per-IP token bucket limiting with idle-client eviction
//   - GlobalRateLimit: process-wide request ceiling
//
// Both limiters honor config.RateLimitConfig.Enabled and degrade to
// pass-through handlers when disabled, so wiring stays unconditional.
//
// Example Usage:
//
//	router.Use(middleware.CORS())
//	router.Use(middleware.RateLimit(cfg.RateLimit))
package middleware
