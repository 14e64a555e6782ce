package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "kestrel.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
upstreams:
  - host: 127.0.0.1
    port: 9001
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Listen != DefaultListen {
		t.Errorf("Listen = %q, want %q", cfg.Listen, DefaultListen)
	}
	if cfg.MetricsListen != DefaultMetricsListen {
		t.Errorf("MetricsListen = %q, want %q", cfg.MetricsListen, DefaultMetricsListen)
	}
	if cfg.Timeouts.ConnectMs != DefaultConnectMs {
		t.Errorf("ConnectMs = %d, want %d", cfg.Timeouts.ConnectMs, DefaultConnectMs)
	}
	if cfg.Timeouts.TotalMs != DefaultTotalMs {
		t.Errorf("TotalMs = %d, want %d", cfg.Timeouts.TotalMs, DefaultTotalMs)
	}
	if cfg.Limits.MaxClientConns != DefaultMaxClientConns {
		t.Errorf("MaxClientConns = %d, want %d", cfg.Limits.MaxClientConns, DefaultMaxClientConns)
	}
	if cfg.Logging.Level != DefaultLoggingLevel {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, DefaultLoggingLevel)
	}
}

func TestLoadConfig_ExplicitZeroTimeoutStaysUnbounded(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
upstreams:
  - host: 127.0.0.1
    port: 9001
timeouts:
  connect_ms: 0
  read_ms: 500
  write_ms: 500
  total_ms: 2000
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	// connect_ms is written explicitly as 0, so it must stay 0 (unbounded)
	// rather than being replaced by the default.
	if cfg.Timeouts.ConnectMs != 0 {
		t.Errorf("ConnectMs = %d, want 0 (unbounded)", cfg.Timeouts.ConnectMs)
	}
	if cfg.Timeouts.ReadMs != 500 {
		t.Errorf("ReadMs = %d, want 500", cfg.Timeouts.ReadMs)
	}
}

func TestLoadConfig_MissingUpstreams(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `listen: 127.0.0.1:8080`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error for missing upstreams")
	}
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	found := false
	for _, fe := range verr.Errors {
		if fe.Field == "upstreams" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an error on field \"upstreams\", got %v", verr.Errors)
	}
}

func TestLoadConfig_InvalidPort(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
upstreams:
  - host: 127.0.0.1
    port: 99999
`)
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error for out-of-range port")
	}
}

func TestLoadConfig_InvalidLoggingLevel(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
upstreams:
  - host: 127.0.0.1
    port: 9001
logging:
  level: verbose
`)
	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error for invalid logging level")
	}
}

func TestInitializeAndSwap(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
upstreams:
  - host: 127.0.0.1
    port: 9001
`)
	cfg, err := Initialize(path)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if got := Get(); got != cfg {
		t.Fatal("Get() did not return the initialized config")
	}

	other := &Config{Listen: "127.0.0.1:9999"}
	old := Swap(other)
	if old != cfg {
		t.Fatal("Swap did not return the previous config")
	}
	if got := Get(); got != other {
		t.Fatal("Get() did not return the swapped-in config")
	}
}
