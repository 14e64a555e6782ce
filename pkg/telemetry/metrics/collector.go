package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Sink is the proxy's metrics sink: the exact counters and summary
// named in the external metrics contract, registered against a
// private registry so tests can construct multiple independent sinks
// without colliding on prometheus's global default registry.
type Sink struct {
	registry *prometheus.Registry

	requestsTotal      prometheus.Counter
	parseErrorsTotal   prometheus.Counter
	responsesTotal     *prometheus.CounterVec
	requestDuration    prometheus.Summary
	bytesSentTotal     prometheus.Counter
	upstreamRequests   *prometheus.CounterVec
	upstreamErrors     *prometheus.CounterVec
	timeoutErrorsTotal *prometheus.CounterVec
}

// NewSink builds a Sink with a fresh registry and registers every
// metric in the contract. Metric names match the external consumer
// contract exactly; changing them is a breaking change.
func NewSink() *Sink {
	registry := prometheus.NewRegistry()

	s := &Sink{
		registry: registry,
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "proxy_requests_total",
			Help: "Total number of client requests accepted.",
		}),
		parseErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "proxy_requests_parse_errors_total",
			Help: "Total number of requests that failed preamble parsing.",
		}),
		responsesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "proxy_responses_total",
			Help: "Total number of responses sent to clients (relayed or synthetic), by status class.",
		}, []string{"status_class"}),
		// No Objectives configured: this exposes only _sum and _count,
		// matching the contract (no histogram buckets, no quantiles).
		requestDuration: prometheus.NewSummary(prometheus.SummaryOpts{
			Name: "proxy_request_duration_seconds",
			Help: "End-to-end duration of a proxied request.",
		}),
		bytesSentTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "proxy_bytes_sent_total",
			Help: "Total number of response bytes relayed to clients.",
		}),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "proxy_upstream_requests_total",
			Help: "Total number of requests sent to each upstream.",
		}, []string{"upstream"}),
		upstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "proxy_upstream_errors_total",
			Help: "Total number of upstream connection/request failures, by type.",
		}, []string{"upstream", "type"}),
		timeoutErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "proxy_timeout_errors_total",
			Help: "Total number of deadline expirations, by phase.",
		}, []string{"type"}),
	}

	registry.MustRegister(
		s.requestsTotal,
		s.parseErrorsTotal,
		s.responsesTotal,
		s.requestDuration,
		s.bytesSentTotal,
		s.upstreamRequests,
		s.upstreamErrors,
		s.timeoutErrorsTotal,
	)

	return s
}

// RequestAccepted records that a client connection began framing a
// request.
func (s *Sink) RequestAccepted() {
	s.requestsTotal.Inc()
}

// ParseError records a preamble that failed to parse.
func (s *Sink) ParseError() {
	s.parseErrorsTotal.Inc()
}

// ResponseForwarded records one response sent to the client, either
// relayed from upstream or synthesized by the proxy (400/502/504),
// classified by its status line's leading digit ("2xx".."5xx").
func (s *Sink) ResponseForwarded(statusClass string) {
	s.responsesTotal.WithLabelValues(statusClass).Inc()
}

// RequestCompleted records the end-to-end duration of a proxied
// request and the number of response bytes written to the client.
func (s *Sink) RequestCompleted(duration time.Duration, bytesSent int64) {
	s.requestDuration.Observe(duration.Seconds())
	s.bytesSentTotal.Add(float64(bytesSent))
}

// UpstreamRequest records one request dispatched to upstream.
func (s *Sink) UpstreamRequest(upstream string) {
	s.upstreamRequests.WithLabelValues(upstream).Inc()
}

// UpstreamError records a failed attempt to use an upstream.
// errType is one of "timeout", "connection_refused", or "other".
func (s *Sink) UpstreamError(upstream, errType string) {
	s.upstreamErrors.WithLabelValues(upstream, errType).Inc()
}

// TimeoutError records a deadline expiration. phase is one of
// "connect", "read", "write", or "total".
func (s *Sink) TimeoutError(phase string) {
	s.timeoutErrorsTotal.WithLabelValues(phase).Inc()
}

// Registry returns the private Prometheus registry backing this sink.
func (s *Sink) Registry() *prometheus.Registry {
	return s.registry
}
