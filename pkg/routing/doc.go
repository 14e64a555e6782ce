// Package routing implements round-robin selection over a fixed,
// non-empty list of upstream endpoints. Selection is safe for
// concurrent callers and linearizable: if call A completes before call
// B begins, A's index is strictly less than B's modulo the pool size.
package routing
