// Package server provides HTTP server setup and initialization for the
// novel downloader service.
//
// This package orchestrates all components:
//   - Capability registry (builtin table plus overlay seeding)
//   - Source registry (generic CSS sources, vendor-unlocked sources)
//   - Decryption bridge configuration
//   - Fetch orchestrator, rate-limited HTTP client, and job pool
//   - HTTP routing with gin plus the middleware stack
//
// Server Lifecycle:
//  1. Load configuration from environment/flags
//  2. Initialize logger (production or development)
//  3. Seed the capability and source registries
//  4. Wire the bridge, orchestrator, and worker pool
//  5. Setup HTTP routes and middleware
//  6. Start HTTP server
//  7. Graceful shutdown on signal
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.New(cfg, logger)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
