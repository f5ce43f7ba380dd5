// Package config resolves harness defaults from the environment or an
// optional YAML file.
//
// Precedence, highest first: command-line flags, SIZZLE_* environment
// variables, config file values, built-in defaults. Flag handling lives
// in internal/cli; this package covers the rest.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds process-wide harness settings. All fields are optional;
// zero values mean "use the suite's or runner's own default".
type Config struct {
	// KitchenBaseURL overrides the built-in kitchen suite's base URL.
	KitchenBaseURL string `yaml:"kitchen_base_url" env:"SIZZLE_KITCHEN_BASE_URL"`

	// MealsBaseURL overrides the built-in meals suite's base URL.
	MealsBaseURL string `yaml:"meals_base_url" env:"SIZZLE_MEALS_BASE_URL"`

	// TimeoutSeconds bounds each HTTP request. Zero means the runner's
	// default.
	TimeoutSeconds int `yaml:"timeout_seconds" env:"SIZZLE_TIMEOUT_SECONDS"`

	// EchoJSON turns on response echoing for read steps by default.
	EchoJSON bool `yaml:"echo_json" env:"SIZZLE_ECHO_JSON"`

	// HistoryDB, when set, records every run to this SQLite database.
	HistoryDB string `yaml:"history_db" env:"SIZZLE_HISTORY_DB"`
}

// Load reads configuration from the environment only.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads configuration from a YAML file, then lets the
// environment override it.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative, got %d", c.TimeoutSeconds)
	}
	return nil
}

// Timeout returns the configured request timeout, or zero when unset.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// BaseURLFor returns the configured base URL override for a built-in
// suite name, or empty when none applies.
func (c *Config) BaseURLFor(name string) string {
	switch name {
	case "kitchen":
		return c.KitchenBaseURL
	case "meals":
		return c.MealsBaseURL
	default:
		return ""
	}
}
