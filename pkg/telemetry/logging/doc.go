// Package logging wraps log/slog with the proxy's level convention and
// a couple of context helpers for carrying a request's trace id and
// upstream identity into every log line written while handling it.
package logging
