// Package server provides the admin HTTP server exposing Prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/kestrelproxy/kestrel/pkg/proxy/middleware"
	"github.com/kestrelproxy/kestrel/pkg/telemetry/metrics"
)

// Server is the admin HTTP server exposing Prometheus metrics.
type Server struct {
	addr string
	sink *metrics.Sink

	mu           sync.Mutex
	httpServer   *http.Server
	listener     net.Listener
	isRunning    bool
	shutdownOnce sync.Once
}

// New builds a Server that will bind to addr and serve sink's metrics at
// /metrics once Start is called.
func New(addr string, sink *metrics.Sink) *Server {
	return &Server{addr: addr, sink: sink}
}

// Start binds the listen address and begins serving in the background.
// It returns once the listener is bound; a later serve error is logged
// rather than returned, since by then the caller has moved on to its own
// blocking work (the accept loop, signal handling, ...).
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("admin server: already running")
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("admin server: listen %s: %w", s.addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", s.sink.Handler())

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)

	s.httpServer = &http.Server{Handler: handler}
	s.listener = ln
	s.isRunning = true
	s.mu.Unlock()

	slog.InfoContext(ctx, "admin server listening", "address", ln.Addr().String())

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("admin server stopped unexpectedly", "error", err)
		}
	}()

	return nil
}

// Shutdown gracefully stops the admin server, waiting for in-flight
// scrapes to finish until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		running := s.isRunning
		httpServer := s.httpServer
		s.mu.Unlock()

		if !running {
			return
		}

		slog.InfoContext(ctx, "admin server shutting down")

		if err := httpServer.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("admin server: shutdown: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
	})

	return shutdownErr
}

// Addr returns the address the server is bound to, or the empty string if
// Start has not been called yet.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// IsRunning reports whether the server is currently serving.
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}
