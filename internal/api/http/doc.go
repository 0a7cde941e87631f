// Package http provides HTTP handlers and routing for the novel
// downloader REST API.
//
// This package implements all HTTP endpoints using the Gin framework:
// capability registry reads, chapter fetches, direct bridge decryption,
// whole-book jobs, site search, and statistics.
//
// Endpoints:
//   - Health: / and /health
//   - Sites: /sites, /sites/:id
//   - Chapters: /chapters/fetch
//   - Decrypt: /decrypt
//   - Books: /books/fetch
//   - Jobs: /jobs, /jobs/:id
//   - Search: /search
//   - Stats: /stats
//
// Chapter fetches always answer with the outcome envelope
// {status, content?, error?}; failed decryption and site errors are
// reported inside it rather than through HTTP status codes, so the
// three-way result boundary survives transport. The direct /decrypt
// endpoint has no envelope and maps failure classes onto status codes
// instead.
//
// Example Usage:
//
//	handlers := http.NewHandlers(registry, orchestrator, jobs, metrics, version)
//	router.GET("/health", handlers.Health)
//	router.POST("/chapters/fetch", handlers.FetchChapter)
package http
