package proxy

import (
	"errors"
	"fmt"
)

// Kind identifies the category of failure encountered while handling a
// connection. The handler maps each kind to a client-visible outcome in
// handleConnectFailure and mapExchangeFailure.
type Kind string

const (
	// KindMalformedRequest means the preamble violated HTTP/1.1 grammar
	// or exceeded a configured limit.
	KindMalformedRequest Kind = "malformed_request"

	// KindConnectError means the OS-level dial to the upstream failed
	// (refused, unreachable, DNS failure) before any timeout fired.
	KindConnectError Kind = "connect_error"

	// KindConnectTimeout means the connect deadline elapsed before the
	// upstream dial completed.
	KindConnectTimeout Kind = "connect_timeout"

	// KindReadTimeout means a read deadline elapsed waiting for bytes
	// from a peer.
	KindReadTimeout Kind = "read_timeout"

	// KindWriteTimeout means a write deadline elapsed waiting to send
	// bytes to a peer.
	KindWriteTimeout Kind = "write_timeout"

	// KindTotalTimeout means the umbrella deadline for the whole
	// exchange elapsed.
	KindTotalTimeout Kind = "total_timeout"

	// KindPeerClosed means a peer closed its connection unexpectedly.
	KindPeerClosed Kind = "peer_closed"

	// KindConfigError means static configuration was invalid; only
	// ever produced at startup.
	KindConfigError Kind = "config_error"
)

// Error is the tagged error type produced by the core engine. Every
// error the handler acts on can be unwrapped to one of these via
// errors.As, which is how the handler maps failures to responses without
// depending on any particular error implementation downstream.
type Error struct {
	Kind Kind
	Op   string // what was being attempted, e.g. "dial upstream", "read preamble"
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether e's kind matches one of the Err* sentinels below,
// so callers can write errors.Is(err, proxy.ErrReadTimeout) instead of
// unpacking the kind by hand.
func (e *Error) Is(target error) bool {
	k, ok := target.(kindSentinel)
	return ok && e.Kind == k.kind
}

type kindSentinel struct{ kind Kind }

func (k kindSentinel) Error() string { return string(k.kind) }

// Sentinels usable with errors.Is against a wrapped *Error.
var (
	ErrMalformedRequest = kindSentinel{KindMalformedRequest}
	ErrConnectError     = kindSentinel{KindConnectError}
	ErrConnectTimeout   = kindSentinel{KindConnectTimeout}
	ErrReadTimeout      = kindSentinel{KindReadTimeout}
	ErrWriteTimeout     = kindSentinel{KindWriteTimeout}
	ErrTotalTimeout     = kindSentinel{KindTotalTimeout}
	ErrPeerClosed       = kindSentinel{KindPeerClosed}
	ErrConfigError      = kindSentinel{KindConfigError}
)

// NewError wraps err with a kind and the operation being attempted.
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the Kind from err if it (or something it wraps) is a
// *Error. The second return value is false if no *Error is found.
func KindOf(err error) (Kind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}
