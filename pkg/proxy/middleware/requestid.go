package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader is the HTTP header carrying the admin surface's
// per-request correlation id. It is distinct from the proxy's own
// X-Trace-ID, which identifies a proxied connection rather than a
// request to this admin surface.
const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware assigns a request id to every request, reusing
// one supplied by the caller in X-Request-ID if present, and attaches
// it to both the request context and the response headers.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = newRequestID()
		}

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		w.Header().Set(RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// newRequestID generates a 128-bit id, hex-encoded from a UUID's raw
// bytes, matching the convention the proxy's own trace ids use.
func newRequestID() string {
	id := uuid.New()
	return fmt.Sprintf("%x", id[:])
}

// GetRequestID extracts the request id from the context, or "" if none
// was attached.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
