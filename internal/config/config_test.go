package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Backend.BaseURL != "http://localhost:8090" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if got := cfg.PollInterval(); got != time.Second {
		t.Errorf("PollInterval = %v, want 1s", got)
	}
	if got := cfg.ReopenDelay(); got != 2*time.Second {
		t.Errorf("ReopenDelay = %v, want 2s", got)
	}
	if cfg.Monitor.Port != 8091 {
		t.Errorf("Monitor.Port = %d, want 8091", cfg.Monitor.Port)
	}
	if cfg.Log.Capacity != 300 {
		t.Errorf("Log.Capacity = %d, want 300", cfg.Log.Capacity)
	}
	if cfg.Start.DstIP != "172.30.1.123" || cfg.Start.DstPort != 20000 ||
		cfg.Start.SrcPort != 40000 || cfg.Start.SiteID != "1387787777" {
		t.Errorf("Start defaults = %+v", cfg.Start)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := `
backend:
  base_url: http://10.1.1.1:9000
  poll_interval_ms: 500
log:
  capacity: 50
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend.BaseURL != "http://10.1.1.1:9000" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if got := cfg.PollInterval(); got != 500*time.Millisecond {
		t.Errorf("PollInterval = %v, want 500ms", got)
	}
	if cfg.Log.Capacity != 50 {
		t.Errorf("Log.Capacity = %d, want 50", cfg.Log.Capacity)
	}
	// Untouched keys keep their defaults.
	if cfg.Monitor.Port != 8091 {
		t.Errorf("Monitor.Port = %d, want default 8091", cfg.Monitor.Port)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("monitor:\n  port: 7000\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("UPSMON_MONITOR__PORT", "7777")
	t.Setenv("UPSMON_BACKEND__BASE_URL", "http://override:1234")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Monitor.Port != 7777 {
		t.Errorf("Monitor.Port = %d, want env override 7777", cfg.Monitor.Port)
	}
	if cfg.Backend.BaseURL != "http://override:1234" {
		t.Errorf("BaseURL = %q, want env override", cfg.Backend.BaseURL)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend.BaseURL != "http://localhost:8090" {
		t.Errorf("BaseURL = %q, want default", cfg.Backend.BaseURL)
	}
}
