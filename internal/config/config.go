// Package config handles resolving configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Config holds the process-wide settings for the web app and CLI.
type Config struct {
	// LogLevel is one of debug, info, warn, or error.
	LogLevel string `yaml:"log_level"`
	// WebAddress is the host:port the web app listens on. An empty value
	// disables the web server.
	WebAddress string `yaml:"web_address"`
	// DBFilepath is the location of the SQLite database file.
	DBFilepath string `yaml:"db_filepath"`
	// SecretKey signs session cookies. It must be overridden for any
	// non-development deployment.
	SecretKey string `yaml:"secret_key"`
	// DevMode enables debug logging and the request log.
	DevMode bool `yaml:"dev_mode"`
}

// Default returns a version of the config with all default values populated.
// Note that this configuration is _not_ valid, as the user must set secret_key.
func Default() *Config {
	return &Config{
		LogLevel:   "info",
		WebAddress: "localhost:9999",
		DBFilepath: filepath.Join(xdg.DataHome, "janua", "db.sqlite"),
		SecretKey:  "", // must be set by the user
		DevMode:    false,
	}
}

// Load loads a YAML configuration file from a path, merges it with defaults,
// and validates it for completeness.
func Load(path string) (*Config, error) {
	bytes, err := os.ReadFile(path) //nolint:gosec // allow the config file to be loaded from anywhere
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := Default()
	if err = yaml.Unmarshal(bytes, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file at %s: %w", path, err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the config for completeness.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("secret_key must be set")
	}
	if c.DBFilepath == "" {
		return fmt.Errorf("db_filepath must be set")
	}
	if _, ok := logLevels[c.LogLevel]; !ok {
		return fmt.Errorf("log_level must be one of debug, info, warn, error; got %q", c.LogLevel)
	}
	return nil
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel returns the slog level for the configured log_level. DevMode
// forces debug.
func (c *Config) SlogLevel() slog.Level {
	if c.DevMode {
		return slog.LevelDebug
	}
	if lvl, ok := logLevels[c.LogLevel]; ok {
		return lvl
	}
	return slog.LevelInfo
}
