package config

import (
	"fmt"
	"sync/atomic"
)

// active holds the process-wide configuration singleton. Reads and the
// writers (Initialize, and Swap, which Reload and the reload watcher use)
// go through atomic.Pointer so a concurrent Get never observes a
// partially-constructed Config.
var active atomic.Pointer[Config]

// Initialize loads the configuration at path and installs it as the
// active singleton. It must be called once during process startup
// before any call to Get.
func Initialize(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	active.Store(cfg)
	return cfg, nil
}

// Get returns the active configuration. It panics if Initialize has not
// been called, since every caller of Get runs after process startup.
func Get() *Config {
	cfg := active.Load()
	if cfg == nil {
		panic("config: Get called before Initialize")
	}
	return cfg
}

// Swap atomically replaces the active configuration and returns the
// configuration it replaced. Handlers that already captured a snapshot
// of the old *Config via Get are unaffected; only future Get calls see
// the new value.
func Swap(cfg *Config) *Config {
	return active.Swap(cfg)
}

// Reload loads the configuration at path and, if it loads and validates
// successfully, installs it via Swap. On failure the active
// configuration is left untouched and the error is returned with
// context identifying it as a reload failure.
func Reload(path string) error {
	cfg, err := LoadConfig(path)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	Swap(cfg)
	return nil
}
