package limits

import "context"

// Semaphore is a blocking counting semaphore implemented over a
// buffered channel: a full buffer represents "no permits available",
// and taking/putting a token is the acquire/release primitive. Unlike a
// reject-on-exhaustion limiter, Acquire suspends the caller instead of
// returning false, which is what lets callers beyond capacity queue
// rather than fail (spec: PermitDenied is never surfaced).
type Semaphore struct {
	tokens chan struct{}
}

// NewSemaphore creates a semaphore with the given capacity. Capacity
// must be positive.
func NewSemaphore(capacity int) *Semaphore {
	return &Semaphore{tokens: make(chan struct{}, capacity)}
}

// Acquire blocks until a permit is available or ctx is done. On success
// the caller owns the permit and must call Release exactly once,
// typically via defer immediately after a successful Acquire.
func (s *Semaphore) Acquire(ctx context.Context) error {
	select {
	case s.tokens <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a permit to the semaphore. It must be called exactly
// once per successful Acquire, on every exit path including cancellation
// and panics (pair it with defer).
func (s *Semaphore) Release() {
	select {
	case <-s.tokens:
	default:
		// Release without a matching Acquire: a programmer error, not
		// a runtime condition to recover from noisily.
	}
}

// InUse returns the number of outstanding permits.
func (s *Semaphore) InUse() int { return len(s.tokens) }

// Capacity returns the semaphore's total permit capacity.
func (s *Semaphore) Capacity() int { return cap(s.tokens) }
