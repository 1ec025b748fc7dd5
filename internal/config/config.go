package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for a fill run. Values come from an
// optional YAML file layered over defaults; CLI flags override on top.
type Config struct {
	Input    string         `yaml:"input"`
	Output   string         `yaml:"output"`
	Columns  ColumnsConfig  `yaml:"columns"`
	Registry RegistryConfig `yaml:"registry"`
	Delay    float64        `yaml:"delay"` // seconds between registry lookups
	Journal  JournalConfig  `yaml:"journal"`
}

// ColumnsConfig names the input columns the pipeline keys on. Defaults
// match the registry export headers.
type ColumnsConfig struct {
	DeviceNumber string `yaml:"device_number"`
	Arshin       string `yaml:"arshin"`
}

// RegistryConfig contains the Arshin registry connection settings.
type RegistryConfig struct {
	BaseURL   string `yaml:"base_url"`
	UserAgent string `yaml:"user_agent"`
	Timeout   int    `yaml:"timeout"`  // seconds per request
	Cooldown  int    `yaml:"cooldown"` // seconds to wait after HTTP 429
}

// JournalConfig contains the audit journal settings.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Input:  "data.csv",
		Output: "filled_data.csv",
		Columns: ColumnsConfig{
			DeviceNumber: "номер прибора",
			Arshin:       "arshin",
		},
		Registry: RegistryConfig{
			Timeout:  30,
			Cooldown: 5,
		},
		Delay: 1.0,
		Journal: JournalConfig{
			Path: "arshin_runs.db",
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the run cannot work with.
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("input path must not be empty")
	}
	if c.Output == "" {
		return fmt.Errorf("output path must not be empty")
	}
	if c.Input == c.Output {
		return fmt.Errorf("input and output must be different files")
	}
	if c.Columns.DeviceNumber == "" {
		return fmt.Errorf("device number column must not be empty")
	}
	if c.Registry.Timeout <= 0 {
		return fmt.Errorf("registry timeout must be positive, got %d", c.Registry.Timeout)
	}
	if c.Registry.Cooldown < 0 {
		return fmt.Errorf("registry cooldown must not be negative, got %d", c.Registry.Cooldown)
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay must not be negative, got %g", c.Delay)
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		return fmt.Errorf("journal path must not be empty when the journal is enabled")
	}
	return nil
}

// RequestTimeout returns the per-request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Registry.Timeout) * time.Second
}

// RateCooldown returns the post-429 pause as a duration.
func (c *Config) RateCooldown() time.Duration {
	return time.Duration(c.Registry.Cooldown) * time.Second
}

// RowDelay returns the inter-row throttle as a duration.
func (c *Config) RowDelay() time.Duration {
	return time.Duration(c.Delay * float64(time.Second))
}
