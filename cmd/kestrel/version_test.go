package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestVersionVariablesOverridable(t *testing.T) {
	origVersion := Version
	origGitCommit := GitCommit
	origBuildDate := BuildDate

	Version = "0.1.0-test"
	GitCommit = "abc123"
	BuildDate = "2025-11-20"

	if Version != "0.1.0-test" {
		t.Errorf("Version = %q, want %q", Version, "0.1.0-test")
	}
	if GitCommit != "abc123" {
		t.Errorf("GitCommit = %q, want %q", GitCommit, "abc123")
	}
	if BuildDate != "2025-11-20" {
		t.Errorf("BuildDate = %q, want %q", BuildDate, "2025-11-20")
	}

	Version = origVersion
	GitCommit = origGitCommit
	BuildDate = origBuildDate
}

func TestVersionCommandExists(t *testing.T) {
	if versionCmd == nil {
		t.Fatal("versionCmd is nil")
	}
	if versionCmd.Use != "version" {
		t.Errorf("versionCmd.Use = %q, want %q", versionCmd.Use, "version")
	}
	if versionCmd.Short == "" {
		t.Error("versionCmd.Short should not be empty")
	}
	if versionCmd.RunE == nil {
		t.Error("versionCmd.RunE should not be nil")
	}
}

func TestVersionInfoTextOutput(t *testing.T) {
	info := versionInfo{Version: "1.2.3", GitCommit: "abc", BuildDate: "today", GoVersion: "go1.23", OSArch: "linux/amd64"}
	if !strings.Contains(info.String(), "kestrel 1.2.3") {
		t.Errorf("String() = %q, want it to contain %q", info.String(), "kestrel 1.2.3")
	}
}

func TestVersionInfoJSONOutput(t *testing.T) {
	versionOutput = "json"
	defer func() { versionOutput = "text" }()

	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	if err := versionCmd.RunE(versionCmd, nil); err != nil {
		t.Fatalf("RunE: %v", err)
	}
	var decoded versionInfo
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v (output: %q)", err, buf.String())
	}
	if decoded.Version != Version {
		t.Errorf("version = %q, want %q", decoded.Version, Version)
	}
}

func TestVersionInfoJSONRoundTrips(t *testing.T) {
	info := versionInfo{Version: "1.2.3", GitCommit: "abc", BuildDate: "today", GoVersion: "go1.23", OSArch: "linux/amd64"}
	data, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded versionInfo
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != info {
		t.Errorf("round trip = %+v, want %+v", decoded, info)
	}
}
