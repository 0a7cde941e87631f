// Package main is the entry point for the novel downloader service.
//
// The server exposes the capability registry, chapter and book fetch
// orchestration, the vendor decryption bridge, and job progress
// streaming over one HTTP surface.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8000 -sites-dir /etc/noveld/sites
//
//	# With vendor decryption enabled
//	./server -module /opt/noveld/vendor/unlock.js
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
