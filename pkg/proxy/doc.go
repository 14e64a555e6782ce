// Package proxy implements the request-lifecycle engine of a minimal
// reverse HTTP/1.1 proxy: parsing a client preamble off a raw socket,
// selecting an upstream, gating concurrency, opening the upstream
// connection under a connect deadline, and streaming both legs with
// per-phase timeouts and an umbrella total deadline.
//
// The engine never buffers a full request or response body. Every byte
// read from one peer is written to the other before the next read, so
// memory use is bounded by the configured chunk size regardless of body
// size.
package proxy
