package routing

import (
	"errors"
	"sync/atomic"
)

// ErrEmptyPool is returned by NewPool when constructed with no upstreams.
var ErrEmptyPool = errors.New("upstream pool: endpoint list must not be empty")

// Pool is an immutable, ordered, non-empty list of upstreams plus a
// monotonic cursor. GetNext returns the element at cursor mod N, then
// advances the cursor; the advance is a single atomic fetch-and-add, so
// concurrent callers observe a strict round-robin ordering with no two
// calls ever returning the same cursor value.
type Pool struct {
	upstreams []Upstream
	cursor    atomic.Uint64
}

// NewPool builds a round-robin pool over upstreams. The slice is copied,
// so later mutation of the caller's slice has no effect on the pool.
// Fails with ErrEmptyPool if upstreams is empty.
func NewPool(upstreams []Upstream) (*Pool, error) {
	if len(upstreams) == 0 {
		return nil, ErrEmptyPool
	}
	copied := make([]Upstream, len(upstreams))
	copy(copied, upstreams)
	return &Pool{upstreams: copied}, nil
}

// GetNext returns the upstream at the current cursor position and
// atomically advances the cursor by one, modulo the pool size. For any
// interleaving of K concurrent calls, each upstream is picked either
// floor(K/N) or ceil(K/N) times, in rotation order.
func (p *Pool) GetNext() Upstream {
	n := uint64(len(p.upstreams))
	i := p.cursor.Add(1) - 1
	return p.upstreams[i%n]
}

// All returns a copy of the pool's upstreams in configured order, for
// introspection (e.g. metrics enumeration).
func (p *Pool) All() []Upstream {
	out := make([]Upstream, len(p.upstreams))
	copy(out, p.upstreams)
	return out
}

// Len returns the number of upstreams in the pool.
func (p *Pool) Len() int { return len(p.upstreams) }
