package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultServerURL is used when config.toml does not name a backend.
const DefaultServerURL = "http://127.0.0.1:8716"

// Config represents the global ~/.pigeon/config.toml.
type Config struct {
	DefaultSession        string `toml:"default_session"`
	ServerURL             string `toml:"server_url"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Server returns the configured backend URL, falling back to the
// default.
func (c *Config) Server() string {
	if c.ServerURL != "" {
		return c.ServerURL
	}
	return DefaultServerURL
}

// Timeout returns the per-request timeout.
func (c *Config) Timeout() time.Duration {
	if c.RequestTimeoutSeconds > 0 {
		return time.Duration(c.RequestTimeoutSeconds) * time.Second
	}
	return 10 * time.Second
}

// Load reads config from the given path. Returns an error if the file
// is missing; callers treat that as "use defaults".
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
