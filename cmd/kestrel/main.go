// Kestrel is a minimal HTTP/1.1 reverse proxy: it accepts client
// connections, round-robins them across a configured set of upstreams,
// and relays request and response bytes verbatim under a four-phase
// timeout policy.
//
// Usage:
//
//	# Start the proxy with a configuration file
//	kestrel run --config /path/to/config.yaml
//
//	# Validate configuration without starting the proxy
//	kestrel run --config /path/to/config.yaml --dry-run
//
//	# Show version information
//	kestrel version
package main

func main() {
	Execute()
}
