// Package middleware provides the small HTTP middleware chain wrapping the
// admin surface (the Prometheus metrics scrape endpoint).
//
// # Middleware Chain
//
//	handler = RecoveryMiddleware(RequestIDMiddleware(LoggingMiddleware(handler)))
//
// Order (innermost to outermost):
//  1. Logging: log request/response details
//  2. RequestID: generate and propagate a request ID
//  3. Recovery: recover from panics
//
// # Request ID
//
// RequestIDMiddleware assigns a request ID (reusing the caller's
// X-Request-ID header when present), adds it to the context and to the
// response headers.
//
// # Logging
//
// LoggingMiddleware uses structured logging (log/slog) to record method,
// path, status and latency for each scrape.
//
// # Recovery
//
// RecoveryMiddleware catches panics in handlers, logs the stack trace and
// returns a plain 500 response rather than crashing the process.
package middleware
