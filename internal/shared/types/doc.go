// Package types provides shared data structures for the service.
//
// This package defines core types used across fetch, decrypt, and API
// components, ensuring consistent shapes at every boundary.
//
// Core Types:
//   - Book, Volume, ChapterMeta: table-of-contents structure
//   - ChapterPayload: raw parser output, including decrypt inputs
//   - ChapterResult: terminal outcome of one chapter fetch
//   - Image: inline image reference or fetched bytes
//   - SearchHit: one result from a site-internal search
//
// Job Types:
//   - Job, JobState, Progress: book fetch lifecycle
//   - Event: progress notification for streaming consumers
//
// Request Types:
//   - FetchChapterRequest, FetchBookRequest, DecryptRequest: HTTP API
//   - WSMessage: WebSocket communication
package types
