package proxy

import (
	"context"
	"errors"
	"time"
)

// Policy is the four-phase timeout policy described in the package
// documentation: zero for any field means that phase is unbounded.
// Policy values are immutable; a Handler keeps the one it was built
// with, and a later config reload does not change it.
type Policy struct {
	ConnectMs int64
	ReadMs    int64
	WriteMs   int64
	TotalMs   int64
}

// DefaultPolicy matches the documented defaults: 1s connect, 15s read,
// 15s write, 30s total.
var DefaultPolicy = Policy{ConnectMs: 1000, ReadMs: 15000, WriteMs: 15000, TotalMs: 30000}

func msDuration(ms int64) (time.Duration, bool) {
	if ms <= 0 {
		return 0, false
	}
	return time.Duration(ms) * time.Millisecond, true
}

// withDeadline runs fn with a context bounded by d (if d > 0) and maps a
// context deadline/cancellation into a *Error of the given kind. The
// operation owns ctx's cancellation: once withDeadline returns after a
// deadline, fn must stop producing or consuming bytes, which callers
// guarantee by deriving every blocking I/O call in fn from ctx (for
// sockets, via SetDeadline derived from the same clock).
func withDeadline[T any](parent context.Context, d time.Duration, kind Kind, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx := parent
	cancel := func() {}
	if d > 0 {
		ctx, cancel = context.WithTimeout(parent, d)
	}
	defer cancel()

	result, err := fn(ctx)
	if err != nil && ctx.Err() != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)) {
		return result, NewError(kind, op, ctx.Err())
	}
	return result, err
}

// WithConnect bounds fn by p.ConnectMs, mapping expiry to KindConnectTimeout.
func WithConnect[T any](ctx context.Context, p Policy, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	d, _ := msDuration(p.ConnectMs)
	return withDeadline(ctx, d, KindConnectTimeout, op, fn)
}

// WithRead bounds fn by p.ReadMs, mapping expiry to KindReadTimeout.
func WithRead[T any](ctx context.Context, p Policy, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	d, _ := msDuration(p.ReadMs)
	return withDeadline(ctx, d, KindReadTimeout, op, fn)
}

// WithWrite bounds fn by p.WriteMs, mapping expiry to KindWriteTimeout.
func WithWrite[T any](ctx context.Context, p Policy, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	d, _ := msDuration(p.WriteMs)
	return withDeadline(ctx, d, KindWriteTimeout, op, fn)
}

// WithTotal bounds fn by p.TotalMs, mapping expiry to KindTotalTimeout.
// It is meant to envelope WithConnect/WithRead/WithWrite calls: if the
// outer total deadline is smaller than the remaining inner budget, the
// outer one fires first and its cancellation propagates inward through
// ctx.
func WithTotal[T any](ctx context.Context, p Policy, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	d, _ := msDuration(p.TotalMs)
	return withDeadline(ctx, d, KindTotalTimeout, op, fn)
}
