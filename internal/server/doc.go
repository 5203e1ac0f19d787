// Package server manages the HTTP server lifecycle: non-blocking start,
// graceful shutdown, and SIGINT/SIGTERM handling. Serve errors surface
// on an asynchronous channel so the caller can monitor the server
// without blocking on it.
package server
