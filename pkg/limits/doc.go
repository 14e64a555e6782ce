// Package limits implements the connection-limit manager: two levels of
// counting semaphore that bound concurrent client connections and
// concurrent connections to any one upstream.
//
// Acquisition never fails — a caller beyond capacity queues until a
// permit frees up rather than being rejected. This is a deliberate
// choice to get backpressure instead of load shedding; see Semaphore's
// documentation for how Acquire queues callers.
package limits
