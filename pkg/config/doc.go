// Package config loads, validates, and hot-swaps the proxy's
// configuration. Configuration is a YAML file mapping directly onto
// Config; a package-level singleton holds the active value behind an
// atomic pointer so callers reading Get() never observe a
// partially-applied swap. The proxy's handler is built from the
// configuration returned at startup and does not read the singleton
// afterwards, so a reload changes what Get returns but not the running
// proxy's timeouts, upstreams or connection limits.
//
// # Loading
//
//	cfg, err := config.LoadConfig("kestrel.yaml")
//
// # Singleton
//
//	if _, err := config.Initialize("kestrel.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//	cfg := config.Get()
//
// # Hot reload
//
// See Watcher in watcher.go: it watches the config file's directory with
// fsnotify, debounces bursts of filesystem events, and calls Swap on a
// successful reload while leaving the active configuration untouched on
// failure.
package config
