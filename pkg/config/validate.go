package config

import (
	"fmt"
	"strings"
)

// FieldError is a validation error for a single configuration field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError aggregates every FieldError found in one pass over a
// Config, so a misconfigured file reports all of its problems at once
// instead of just the first.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0])
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err)
	}
	return sb.String()
}

// Validate checks cfg for the invariants LoadConfig depends on: a
// listen and metrics_listen address, at least one well-formed upstream,
// non-negative timeouts, and positive connection limits. It returns nil
// if cfg is valid, or a *ValidationError aggregating every violation
// otherwise.
func Validate(cfg *Config) error {
	var errs []FieldError

	if cfg.Listen == "" {
		errs = append(errs, FieldError{"listen", "listen address is required"})
	}
	if cfg.MetricsListen == "" {
		errs = append(errs, FieldError{"metrics_listen", "metrics listen address is required"})
	}

	if len(cfg.Upstreams) == 0 {
		errs = append(errs, FieldError{"upstreams", "at least one upstream is required"})
	}
	for i, u := range cfg.Upstreams {
		prefix := fmt.Sprintf("upstreams[%d]", i)
		if u.Host == "" {
			errs = append(errs, FieldError{prefix + ".host", "host is required"})
		}
		if u.Port < 1 || u.Port > 65535 {
			errs = append(errs, FieldError{prefix + ".port", "port must be between 1 and 65535"})
		}
	}

	errs = append(errs, validateTimeouts(&cfg.Timeouts)...)
	errs = append(errs, validateLimits(&cfg.Limits)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)
	errs = append(errs, validateReload(&cfg.Reload)...)

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

func validateTimeouts(cfg *TimeoutsConfig) []FieldError {
	var errs []FieldError
	for _, f := range []struct {
		name string
		val  int64
	}{
		{"timeouts.connect_ms", cfg.ConnectMs},
		{"timeouts.read_ms", cfg.ReadMs},
		{"timeouts.write_ms", cfg.WriteMs},
		{"timeouts.total_ms", cfg.TotalMs},
	} {
		if f.val < 0 {
			errs = append(errs, FieldError{f.name, "must be non-negative (0 means unbounded)"})
		}
	}
	return errs
}

func validateLimits(cfg *LimitsConfig) []FieldError {
	var errs []FieldError
	if cfg.MaxClientConns < 1 {
		errs = append(errs, FieldError{"limits.max_client_conns", "must be positive"})
	}
	if cfg.MaxConnsPerUpstream < 1 {
		errs = append(errs, FieldError{"limits.max_conns_per_upstream", "must be positive"})
	}
	return errs
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "warning": true, "error": true,
}

func validateLogging(cfg *LoggingConfig) []FieldError {
	if cfg.Level != "" && !validLogLevels[strings.ToLower(cfg.Level)] {
		return []FieldError{{"logging.level", fmt.Sprintf(
			"invalid level %q: must be debug, info, warn, or error", cfg.Level)}}
	}
	return nil
}

func validateReload(cfg *ReloadConfig) []FieldError {
	if cfg.DebounceMs < 0 {
		return []FieldError{{"reload.debounce_ms", "must be non-negative"}}
	}
	return nil
}
