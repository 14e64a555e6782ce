package limits

import (
	"context"
	"sync"
)

// Manager gates two classes of concurrent connection: a single global
// class (capacity MaxClientConns) and a family of per-upstream classes
// (capacity MaxConnsPerUpstream each), keyed by upstream identity.
// Per-upstream semaphores are created lazily on first use and retained
// for the process lifetime, matching the spec's invariant that capacity
// changes on reload never evict outstanding permits — an identity's
// semaphore, once created, keeps its original capacity until process
// exit even if a later config swap changes MaxConnsPerUpstream.
type Manager struct {
	clientCap   int
	upstreamCap int

	client *Semaphore

	mu        sync.Mutex
	upstreams map[string]*Semaphore
}

// NewManager builds a Manager with the given capacities. Both must be
// positive.
func NewManager(maxClientConns, maxConnsPerUpstream int) *Manager {
	return &Manager{
		clientCap:   maxClientConns,
		upstreamCap: maxConnsPerUpstream,
		client:      NewSemaphore(maxClientConns),
		upstreams:   make(map[string]*Semaphore),
	}
}

// ClientConnection blocks until a global client permit is available,
// returning a release function the caller must invoke exactly once —
// typically via `release, err := m.ClientConnection(ctx); defer release()`.
func (m *Manager) ClientConnection(ctx context.Context) (release func(), err error) {
	if err := m.client.Acquire(ctx); err != nil {
		return func() {}, err
	}
	return m.client.Release, nil
}

// UpstreamConnection blocks until a permit for the given upstream
// identity is available. The per-identity semaphore is created on first
// demand under m.mu; the acquire itself happens outside the lock so one
// slow upstream never blocks permit creation for another.
func (m *Manager) UpstreamConnection(ctx context.Context, identity string) (release func(), err error) {
	sem := m.upstreamSemaphore(identity)
	if err := sem.Acquire(ctx); err != nil {
		return func() {}, err
	}
	return sem.Release, nil
}

func (m *Manager) upstreamSemaphore(identity string) *Semaphore {
	m.mu.Lock()
	defer m.mu.Unlock()
	sem, ok := m.upstreams[identity]
	if !ok {
		sem = NewSemaphore(m.upstreamCap)
		m.upstreams[identity] = sem
	}
	return sem
}

// ClientInUse returns the number of outstanding global client permits.
func (m *Manager) ClientInUse() int { return m.client.InUse() }

// UpstreamInUse returns the number of outstanding permits for identity,
// or 0 if no connection to that upstream has ever been attempted.
func (m *Manager) UpstreamInUse(identity string) int {
	m.mu.Lock()
	sem, ok := m.upstreams[identity]
	m.mu.Unlock()
	if !ok {
		return 0
	}
	return sem.InUse()
}
