package logging

import "context"

type contextKey string

const (
	traceIDKey  contextKey = "trace_id"
	upstreamKey contextKey = "upstream"
)

// WithTraceID attaches a request's trace id to ctx.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFromContext retrieves the trace id attached by WithTraceID, or
// "" if none is present.
func TraceIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(traceIDKey).(string)
	return v
}

// WithUpstream attaches the identity ("host:port") of the upstream a
// request was routed to.
func WithUpstream(ctx context.Context, upstream string) context.Context {
	return context.WithValue(ctx, upstreamKey, upstream)
}

// UpstreamFromContext retrieves the upstream identity attached by
// WithUpstream, or "" if none is present.
func UpstreamFromContext(ctx context.Context) string {
	v, _ := ctx.Value(upstreamKey).(string)
	return v
}
