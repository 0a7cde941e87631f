// Package ws provides WebSocket streaming of book fetch job progress.
//
// Clients connect to /stream and receive every job event published by
// the worker pool. Sending a subscribe message narrows the stream to
// the listed job ids; further subscribes widen the filter again.
//
// Message Types (Client → Server):
//   - subscribe: {type, job_id} narrow the stream to a job
//   - unsubscribe: {type, job_id} drop a job from the filter
//   - ping: keep-alive ping
//
// Message Types (Server → Client):
//   - system: connection banner
//   - event: one job progress event (started, chapter, done, failed,
//     cancelled)
//   - subscribed / unsubscribed: filter acknowledgements
//   - pong: keep-alive reply
//   - error: protocol error
//
// Example Usage:
//
//	handler := ws.NewHandler(jobs.Hub(), logger, metrics)
//	router.GET("/stream", handler.HandleConnection)
package ws
