package config

// Config is the root configuration structure, loaded from a single YAML
// document mapping directly onto these fields.
type Config struct {
	// Listen is the address the proxy accepts client connections on.
	// Format: "host:port".
	Listen string `yaml:"listen"`

	// MetricsListen is the address the Prometheus metrics server binds.
	// Format: "host:port".
	MetricsListen string `yaml:"metrics_listen"`

	// Upstreams is the set of backends requests are round-robined across.
	// Must contain at least one entry.
	Upstreams []UpstreamConfig `yaml:"upstreams"`

	// Timeouts configures the four deadline policies applied to each
	// proxied connection.
	Timeouts TimeoutsConfig `yaml:"timeouts"`

	// Limits configures the two connection-concurrency ceilings.
	Limits LimitsConfig `yaml:"limits"`

	// Logging configures the structured logger.
	Logging LoggingConfig `yaml:"logging"`

	// Reload configures the config-file watcher.
	Reload ReloadConfig `yaml:"reload"`
}

// UpstreamConfig names one backend.
type UpstreamConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// TimeoutsConfig holds the four deadline policies, each in
// milliseconds. A value of 0 means unbounded.
type TimeoutsConfig struct {
	ConnectMs int64 `yaml:"connect_ms"`
	ReadMs    int64 `yaml:"read_ms"`
	WriteMs   int64 `yaml:"write_ms"`
	TotalMs   int64 `yaml:"total_ms"`
}

// LimitsConfig holds the two connection-concurrency ceilings.
type LimitsConfig struct {
	MaxClientConns      int `yaml:"max_client_conns"`
	MaxConnsPerUpstream int `yaml:"max_conns_per_upstream"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn" (also accepts "warning"), "error".
	Level string `yaml:"level"`
}

// ReloadConfig configures the config-file watcher.
type ReloadConfig struct {
	// Watch enables hot reload: the directory containing the config
	// file is watched for changes, and a successful reload atomically
	// replaces the active configuration.
	Watch bool `yaml:"watch"`

	// DebounceMs delays reload until no further change has been
	// detected for this long, to coalesce a burst of filesystem events
	// (e.g. an editor's write-then-rename) into a single reload.
	DebounceMs int `yaml:"debounce_ms"`
}
