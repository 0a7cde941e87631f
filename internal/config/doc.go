// Package config provides 12-factor configuration management for the service.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Fetch: outbound HTTP client (timeout, retries, per-site limits)
//   - Decrypt: unlock bridge deadline and interpreter limits
//   - Sites: capability registry overlay directory
//   - Jobs: book fetch worker pool sizing
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - FETCH_TIMEOUT, FETCH_RETRIES, FETCH_UA, FETCH_SITE_RPS, FETCH_SITE_BURST
//   - DECRYPT_DEADLINE, DECRYPT_MAX_STACK
//   - SITES_DIR, JOB_WORKERS, JOB_BUFFER
package config
