package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads the YAML document at path, applies defaults to any
// field left unset, validates the result, and returns it. It never
// mutates global state — callers that want hot reload go through
// Initialize/Swap.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %q: %w", path, err)
	}

	// Timeouts the file sets to 0 explicitly stay 0 (unbounded) after ApplyDefaults.
	var explicit struct {
		Timeouts map[string]int64 `yaml:"timeouts"`
	}
	_ = yaml.Unmarshal(data, &explicit)

	ApplyDefaults(&cfg)

	for key, field := range map[string]*int64{
		"connect_ms": &cfg.Timeouts.ConnectMs,
		"read_ms":    &cfg.Timeouts.ReadMs,
		"write_ms":   &cfg.Timeouts.WriteMs,
		"total_ms":   &cfg.Timeouts.TotalMs,
	} {
		if v, ok := explicit.Timeouts[key]; ok && v == 0 {
			*field = 0
		}
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
