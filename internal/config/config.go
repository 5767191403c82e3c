// Package config loads grocli configuration from ~/.grocli/config.yaml with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all grocli configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Delivery backend API
	API APIConfig `yaml:"api"`

	// Cart behavior (fee policy, sticky bar timings, animation)
	Cart CartConfig `yaml:"cart"`

	// Session persistence
	Session SessionConfig `yaml:"session"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig configures the delivery backend client.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// SessionConfig configures credential persistence.
type SessionConfig struct {
	// CredentialsPath is where the token+profile JSON lives.
	// Empty means <config dir>/credentials.json.
	CredentialsPath string `yaml:"credentials_path"`

	// WatchCredentials enables the fsnotify watcher so a login/logout in
	// another grocli process is picked up by a running TUI.
	WatchCredentials bool `yaml:"watch_credentials"`
}

// LoggingConfig configures the categorized file logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "grocli",
		Version: "1.2.0",

		API: APIConfig{
			BaseURL: "https://api.quickbasket.example.com",
			Timeout: "15s",
		},

		Cart: DefaultCartConfig(),

		Session: SessionConfig{
			WatchCredentials: true,
		},

		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
		},
	}
}

// Dir returns the grocli config directory (~/.grocli), creating nothing.
func Dir() string {
	if d := os.Getenv("GROCLI_HOME"); d != "" {
		return d
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".grocli"
	}
	return filepath.Join(home, ".grocli")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("GROCLI_API_URL"); url != "" {
		c.API.BaseURL = url
	}
	if timeout := os.Getenv("GROCLI_API_TIMEOUT"); timeout != "" {
		c.API.Timeout = timeout
	}
	if path := os.Getenv("GROCLI_CREDENTIALS"); path != "" {
		c.Session.CredentialsPath = path
	}
	if os.Getenv("GROCLI_DEBUG") == "1" {
		c.Logging.DebugMode = true
		c.Logging.Level = "debug"
	}
}

// CredentialsPath resolves the credentials file location.
func (c *Config) CredentialsPath() string {
	if c.Session.CredentialsPath != "" {
		return c.Session.CredentialsPath
	}
	return filepath.Join(Dir(), "credentials.json")
}

// GetAPITimeout returns the API timeout as a duration.
func (c *Config) GetAPITimeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url not configured (set it in config.yaml or GROCLI_API_URL)")
	}
	if err := c.Cart.Validate(); err != nil {
		return err
	}
	return nil
}
