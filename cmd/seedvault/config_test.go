// ABOUTME: Tests for CLI configuration loading and environment overrides.
// ABOUTME: ConfigPath is swapped for a temp directory so tests never touch $HOME.
package main

import (
	"os"
	"path/filepath"
	"testing"
)

func withTempConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orig := ConfigPath
	ConfigPath = func() string { return filepath.Join(dir, "config.json") }
	t.Cleanup(func() { ConfigPath = orig })
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	withTempConfig(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server == "" {
		t.Fatalf("expected default server")
	}
	if cfg.StoreDB == "" {
		t.Fatalf("expected default store path")
	}
}

func TestInitConfigRoundTrip(t *testing.T) {
	withTempConfig(t)

	cfg, err := InitConfig()
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if cfg.DeviceID == "" {
		t.Fatalf("expected device id")
	}
	if !ConfigExists() {
		t.Fatalf("expected config file on disk")
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.DeviceID != cfg.DeviceID {
		t.Fatalf("device id not persisted")
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	withTempConfig(t)
	t.Setenv("SEEDVAULT_SERVER", "https://backup.example.com")
	t.Setenv("SEEDVAULT_USER_ID", "u-123")
	t.Setenv("SEEDVAULT_TOKEN", "tok")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server != "https://backup.example.com" || cfg.UserID != "u-123" || cfg.Token != "tok" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadConfigCorrupted(t *testing.T) {
	dir := withTempConfig(t)
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{nope"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for corrupted config")
	}
}
