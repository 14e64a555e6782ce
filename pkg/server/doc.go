// Package server provides the admin HTTP server that exposes the proxy's
// Prometheus metrics.
//
// It is deliberately small: a net/http.Server bound to the configured
// metrics listen address, serving a Sink's handler at /metrics, wrapped
// in the recovery/logging/request-id middleware chain from
// pkg/proxy/middleware. It has its own lifecycle, independent of the
// proxy's accept loop, so a stall or panic scraping metrics can never
// block or crash request handling.
//
// # Basic Usage
//
//	sink := metrics.NewSink()
//	srv := server.New(cfg.MetricsListen, sink)
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Shutdown(context.Background())
//
// # Graceful Shutdown
//
// Shutdown stops accepting new connections and waits (bounded by the
// context deadline the caller supplies) for in-flight scrapes to finish
// before returning.
package server
