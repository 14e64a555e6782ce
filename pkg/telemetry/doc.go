// Package telemetry groups the proxy's two observability surfaces:
// structured logging (logging) and Prometheus metrics (metrics). Neither
// subpackage depends on the other; each is constructed independently by
// the CLI bootstrap and passed to the components that need it.
package telemetry
