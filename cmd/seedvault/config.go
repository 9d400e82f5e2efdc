// ABOUTME: config.go provides configuration file management for the seedvault CLI.
// ABOUTME: Supports loading, saving, and auto-initialization with environment variable overrides.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oklog/ulid/v2"

	"seedvault/identity"
)

// Config represents the seedvault CLI configuration.
type Config struct {
	Server   string `json:"server"`
	UserID   string `json:"user_id"`
	Token    string `json:"token"`
	DeviceID string `json:"device_id"`
	StoreDB  string `json:"store_db"`
}

// ConfigPath is a function that returns the path to the seedvault config file.
// It can be overridden in tests.
var ConfigPath = func() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".seedvault", "config.json")
	}
	return filepath.Join(home, ".seedvault", "config.json")
}

// ConfigDir returns the directory containing the config file.
func ConfigDir() string {
	return filepath.Dir(ConfigPath())
}

// ConfigExists reports whether a config file is already present.
func ConfigExists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	return os.MkdirAll(ConfigDir(), 0o700)
}

// LoadConfig loads config from file and applies environment variable overrides.
// Returns default config if the file doesn't exist.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err == nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("config file corrupted: %w\nRun 'seedvault init' to create a new config", jsonErr)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyEnvOverrides(cfg)

	if cfg.StoreDB == "" {
		cfg.StoreDB = filepath.Join(ConfigDir(), "identity.db")
	}
	return cfg, nil
}

// SaveConfig writes the config file with restrictive permissions.
func SaveConfig(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(ConfigPath(), data, 0o600)
}

// InitConfig creates a fresh config with a new device ID.
func InitConfig() (*Config, error) {
	cfg := defaultConfig()
	cfg.DeviceID = ulid.Make().String()
	applyEnvOverrides(cfg)
	if cfg.StoreDB == "" {
		cfg.StoreDB = filepath.Join(ConfigDir(), "identity.db")
	}
	if err := SaveConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: "http://localhost:8090",
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SEEDVAULT_SERVER"); v != "" {
		cfg.Server = v
	}
	if v := os.Getenv("SEEDVAULT_USER_ID"); v != "" {
		cfg.UserID = v
	}
	if v := os.Getenv("SEEDVAULT_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("SEEDVAULT_STORE_DB"); v != "" {
		cfg.StoreDB = v
	}
}

// openService builds the service from config: local store plus, when the
// server is configured, the HTTP backup transport.
func openService(cfg *Config) (*identity.Service, *identity.SQLiteStore, error) {
	if err := EnsureConfigDir(); err != nil {
		return nil, nil, err
	}
	store, err := identity.OpenStore(cfg.StoreDB)
	if err != nil {
		return nil, nil, err
	}

	var transport identity.BackupTransport
	if cfg.Server != "" && cfg.UserID != "" {
		transport = identity.NewHTTPTransport(identity.TransportConfig{
			BaseURL:   cfg.Server,
			UserID:    cfg.UserID,
			AuthToken: cfg.Token,
		})
	}
	return identity.NewService(store, transport), store, nil
}
