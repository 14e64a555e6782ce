package proxy

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/kestrelproxy/kestrel/pkg/limits"
	"github.com/kestrelproxy/kestrel/pkg/routing"
	"github.com/kestrelproxy/kestrel/pkg/telemetry/logging"
	"github.com/kestrelproxy/kestrel/pkg/telemetry/metrics"
)

// Handler orchestrates C1-C5 for one client connection: parse, select an
// upstream, gate concurrency, connect, stream the request, stream the
// response, then release every acquired resource. One Handler is shared
// by every connection; no per-connection state lives on it, only the
// dependencies a connection needs.
type Handler struct {
	Pool           *routing.Pool
	Limits         *limits.Manager
	Policy         Policy
	PreambleLimits Limits
	ChunkSize      int
	Sink           *metrics.Sink
	Logger         *logging.Logger
}

// New builds a Handler. chunkSize <= 0 falls back to DefaultChunkSize.
func New(pool *routing.Pool, lim *limits.Manager, policy Policy, preambleLimits Limits, chunkSize int, sink *metrics.Sink, logger *logging.Logger) *Handler {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Handler{
		Pool:           pool,
		Limits:         lim,
		Policy:         policy,
		PreambleLimits: preambleLimits,
		ChunkSize:      chunkSize,
		Sink:           sink,
		Logger:         logger,
	}
}

// Handle runs the full lifecycle for one accepted client connection. It
// always closes conn before returning and never panics out to the
// caller's accept loop: every failure is mapped to a client response (or
// a silent close) by handleConnectFailure and mapExchangeFailure.
func (h *Handler) Handle(conn net.Conn) {
	defer conn.Close()

	start := time.Now()
	traceID := newTraceID()
	log := h.Logger.WithContext(logging.WithTraceID(context.Background(), traceID))

	h.Sink.RequestAccepted()

	var bytesSent int64
	var statusClass string
	defer func() {
		h.Sink.RequestCompleted(time.Since(start), bytesSent)
		if statusClass != "" {
			h.Sink.ResponseForwarded(statusClass)
		}
	}()

	release, err := h.Limits.ClientConnection(context.Background())
	if err != nil {
		return
	}
	defer release()

	reader := bufio.NewReader(conn)
	preamble, err := ParsePreamble(reader, h.PreambleLimits)
	if err != nil {
		log.Warn("malformed request", "error", err)
		h.Sink.ParseError()
		statusClass = writeSynthetic(conn, 400, "Bad Request", "")
		return
	}

	upstream := h.Pool.GetNext()
	log = log.WithContext(logging.WithUpstream(context.Background(), upstream.Identity()))
	h.Sink.UpstreamRequest(upstream.Identity())

	releaseUpstream, err := h.Limits.UpstreamConnection(context.Background(), upstream.Identity())
	if err != nil {
		return
	}
	defer releaseUpstream()

	ctx := context.Background()
	upstreamConn, err := WithConnect(ctx, h.Policy, "dial upstream", func(ctx context.Context) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, "tcp", upstream.Identity())
	})
	if err != nil {
		statusClass = h.handleConnectFailure(conn, upstream, err, log)
		return
	}
	defer upstreamConn.Close()

	class, sent, err := h.exchange(ctx, conn, reader, upstreamConn, preamble, traceID, log)
	bytesSent = sent
	if class != "" {
		statusClass = class
	}
	if err != nil {
		log.Warn("exchange ended with error", "error", err)
	}
}

// handleConnectFailure maps a failed dial to the client-visible response
// and the corresponding upstream-error/timeout metrics, returning the
// status class recorded for the synthetic response (or "" if none was
// written, e.g. the client had already disconnected).
func (h *Handler) handleConnectFailure(conn net.Conn, upstream routing.Upstream, err error, log *logging.Logger) string {
	if kind, ok := KindOf(err); ok && kind == KindConnectTimeout {
		log.Warn("upstream connect timeout", "upstream", upstream.Identity())
		h.Sink.TimeoutError("connect")
		h.Sink.UpstreamError(upstream.Identity(), "timeout")
		return writeSynthetic(conn, 504, "Gateway Timeout", "")
	}

	errType := classifyConnectError(err)
	log.Warn("upstream connect failed", "upstream", upstream.Identity(), "type", errType, "error", err)
	h.Sink.UpstreamError(upstream.Identity(), errType)
	return writeSynthetic(conn, 502, "Bad Gateway", fmt.Sprintf("Upstream unavailable: %v", err))
}

// classifyConnectError distinguishes a refused connection from other
// dial failures, per the proxy_upstream_errors_total{type} label set.
func classifyConnectError(err error) string {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return "connection_refused"
	}
	return "other"
}

// exchange runs steps 7-9 of the client handler: write the request to
// upstream under the write deadline, pump the response back to the
// client under per-read deadlines, all enveloped by the total deadline.
// It returns the best-effort status class of the response (if the
// exchange failed before any response bytes arrived, the class of the
// synthetic response written instead, or empty if none was written), the number of
// response bytes relayed to the client, and an error describing how the
// exchange ended (nil on a clean upstream EOF).
func (h *Handler) exchange(ctx context.Context, client net.Conn, clientReader *bufio.Reader, upstream net.Conn, preamble *Preamble, traceID string, log *logging.Logger) (string, int64, error) {
	type result struct {
		class     string
		bytesSent int64
		err       error
	}

	r, err := WithTotal(ctx, h.Policy, "proxy exchange", func(ctx context.Context) (result, error) {
		if err := h.writeRequest(ctx, upstream, clientReader, preamble, traceID); err != nil {
			return result{}, err
		}
		class, sent, err := h.pumpResponse(ctx, client, upstream, log)
		return result{class: class, bytesSent: sent, err: err}, err
	})

	if err != nil {
		class, statusErr := h.mapExchangeFailure(client, err, r.bytesSent > 0)
		if class != "" {
			r.class = class
		}
		return r.class, r.bytesSent, statusErr
	}
	return r.class, r.bytesSent, nil
}

// writeRequest emits the request preamble and streams the request body
// (read from clientReader, the same reader the preamble was parsed off
// of) to upstream, all under the write deadline.
func (h *Handler) writeRequest(ctx context.Context, upstream net.Conn, clientReader *bufio.Reader, preamble *Preamble, traceID string) error {
	_, err := WithWrite(ctx, h.Policy, "write request", func(ctx context.Context) (struct{}, error) {
		setDeadline(upstream.SetWriteDeadline, ctx)
		w := bufio.NewWriter(upstream)
		if err := WritePreamble(w, preamble, traceID); err != nil {
			return struct{}{}, err
		}
		if err := w.Flush(); err != nil {
			return struct{}{}, err
		}
		if _, err := CopyBody(w, clientReader, preamble.Body, h.ChunkSize); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})
	return err
}

// pumpResponse relays response bytes verbatim from upstream to client in
// chunks, each read individually bounded by the read deadline, until
// upstream reaches EOF. The response is never parsed except for a
// best-effort peek at the first line to classify the status for
// metrics.
func (h *Handler) pumpResponse(ctx context.Context, client, upstream net.Conn, log *logging.Logger) (string, int64, error) {
	buf := make([]byte, h.ChunkSize)
	var sent int64
	var class string
	var statusBuf []byte
	sawStatusLine := false

	for {
		n, err := WithRead(ctx, h.Policy, "read upstream", func(ctx context.Context) (int, error) {
			setDeadline(upstream.SetReadDeadline, ctx)
			return upstream.Read(buf)
		})

		if n > 0 {
			if !sawStatusLine {
				statusBuf = append(statusBuf, buf[:n]...)
				if class, sawStatusLine = peekStatusClass(statusBuf); sawStatusLine {
					statusBuf = nil
				}
			}

			_, werr := WithWrite(ctx, h.Policy, "write client", func(ctx context.Context) (struct{}, error) {
				setDeadline(client.SetWriteDeadline, ctx)
				if _, err := client.Write(buf[:n]); err != nil {
					return struct{}{}, err
				}
				return struct{}{}, nil
			})
			sent += int64(n)
			if werr != nil {
				return class, sent, werr
			}
		}

		if err != nil {
			if err == io.EOF {
				return class, sent, nil
			}
			return class, sent, err
		}
	}
}

// mapExchangeFailure maps a failure from exchange to the client-visible
// outcome: a synthetic response if nothing has been relayed yet, or a
// silent close if the response had already started. It returns the
// status class of any synthetic response written, and an error
// describing the outcome for logging.
func (h *Handler) mapExchangeFailure(client net.Conn, err error, responseStarted bool) (string, error) {
	kind, _ := KindOf(err)

	switch kind {
	case KindReadTimeout:
		h.Sink.TimeoutError("read")
	case KindWriteTimeout:
		h.Sink.TimeoutError("write")
	case KindTotalTimeout:
		h.Sink.TimeoutError("total")
	}

	if responseStarted {
		// A response is already mid-stream; there is no way to send a
		// well-formed synthetic status line now, so the connection is
		// simply terminated.
		return "", err
	}

	switch kind {
	case KindReadTimeout, KindWriteTimeout, KindTotalTimeout:
		return writeSynthetic(client, 504, "Gateway Timeout", ""), err
	case KindPeerClosed:
		// The client closed the connection while its request body was
		// still being forwarded; always before any response has been
		// read from upstream, so a 502 is still a well-formed reply.
		return writeSynthetic(client, 502, "Bad Gateway", ""), err
	default:
		return "", err
	}
}

// writeSynthetic writes a minimal HTTP response with Connection: close
// and, if body is non-empty, a one-line plain-text body. It returns the
// status class recorded for metrics ("" if the write itself failed,
// meaning the client had likely already disconnected).
func writeSynthetic(conn net.Conn, status int, reason, body string) string {
	w := bufio.NewWriter(conn)
	fmt.Fprintf(w, "HTTP/1.1 %d %s\r\n", status, reason)
	fmt.Fprintf(w, "Connection: close\r\n")
	if body != "" {
		fmt.Fprintf(w, "Content-Type: text/plain; charset=utf-8\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n", len(body)+1)
	} else {
		fmt.Fprintf(w, "Content-Length: 0\r\n")
	}
	w.WriteString("\r\n")
	if body != "" {
		fmt.Fprintf(w, "%s\n", body)
	}
	if err := w.Flush(); err != nil {
		return ""
	}
	return statusClassOf(status)
}

// peekStatusClass looks for a complete CRLF-terminated status line in
// buf and, if found, returns its status class. The second return value
// reports whether a full line was found (a partial line yields "",
// false so the caller keeps buffering).
func peekStatusClass(buf []byte) (string, bool) {
	idx := strings.Index(string(buf), "\r\n")
	if idx < 0 {
		if len(buf) > 4096 {
			// Pathological upstream with no CRLF for 4KiB: give up
			// classifying rather than buffering forever.
			return "", true
		}
		return "", false
	}
	line := string(buf[:idx])
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 {
		return "", true
	}
	code, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", true
	}
	return statusClassOf(code), true
}

func statusClassOf(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500 && code < 600:
		return "5xx"
	default:
		return ""
	}
}

// setDeadline applies ctx's deadline (if any) to a net.Conn's
// Set{Read,Write}Deadline method, clearing it when ctx carries none.
func setDeadline(set func(time.Time) error, ctx context.Context) {
	if dl, ok := ctx.Deadline(); ok {
		_ = set(dl)
		return
	}
	_ = set(time.Time{})
}

// newTraceID generates a 128-bit trace id, hex-encoded from a UUID's raw
// bytes (not its canonical dashed string form).
func newTraceID() string {
	id := uuid.New()
	return fmt.Sprintf("%x", id[:])
}
