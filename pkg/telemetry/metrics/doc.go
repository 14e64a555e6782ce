// Package metrics implements the proxy's metrics sink: a small set of
// Prometheus counters and one summary, registered against a private
// registry and served over HTTP by the admin server in pkg/server.
//
// # Usage
//
//	sink := metrics.NewSink()
//	sink.RequestAccepted()
//	sink.ResponseForwarded("2xx")
//	sink.RequestCompleted(elapsed, bytesSent)
//	http.Handle("/metrics", sink.Handler())
//
// Every method is safe to call from multiple goroutines; each
// connection handler holds its own *Sink reference obtained once at
// startup and calls into it without further synchronization of its own.
package metrics
