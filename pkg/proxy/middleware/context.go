package middleware

// contextKey is a custom type for context keys to avoid collisions with
// keys set by other packages.
type contextKey string

const (
	// RequestIDKey stores the request ID assigned to an admin request.
	RequestIDKey contextKey = "request_id"

	// StartTimeKey stores the request start time for latency calculation.
	StartTimeKey contextKey = "start_time"
)
