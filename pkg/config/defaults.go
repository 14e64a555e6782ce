package config

// Default values for configuration fields, matching the documented
// zero-config behavior: an operator who supplies only `upstreams` gets a
// complete, working proxy.
const (
	DefaultListen        = "127.0.0.1:8080"
	DefaultMetricsListen = "127.0.0.1:9090"

	DefaultConnectMs = int64(1000)
	DefaultReadMs    = int64(15000)
	DefaultWriteMs   = int64(15000)
	DefaultTotalMs   = int64(30000)

	DefaultMaxClientConns      = 1000
	DefaultMaxConnsPerUpstream = 100

	DefaultLoggingLevel = "info"

	DefaultDebounceMs = 500
)

// ApplyDefaults fills zero-valued fields of cfg with their defaults. It
// is idempotent: calling it twice has no additional effect, since every
// field it sets is no longer zero on the second call.
func ApplyDefaults(cfg *Config) {
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	if cfg.MetricsListen == "" {
		cfg.MetricsListen = DefaultMetricsListen
	}
	if cfg.Timeouts.ConnectMs == 0 {
		cfg.Timeouts.ConnectMs = DefaultConnectMs
	}
	if cfg.Timeouts.ReadMs == 0 {
		cfg.Timeouts.ReadMs = DefaultReadMs
	}
	if cfg.Timeouts.WriteMs == 0 {
		cfg.Timeouts.WriteMs = DefaultWriteMs
	}
	if cfg.Timeouts.TotalMs == 0 {
		cfg.Timeouts.TotalMs = DefaultTotalMs
	}
	if cfg.Limits.MaxClientConns == 0 {
		cfg.Limits.MaxClientConns = DefaultMaxClientConns
	}
	if cfg.Limits.MaxConnsPerUpstream == 0 {
		cfg.Limits.MaxConnsPerUpstream = DefaultMaxConnsPerUpstream
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Reload.Watch && cfg.Reload.DebounceMs == 0 {
		cfg.Reload.DebounceMs = DefaultDebounceMs
	}
}
