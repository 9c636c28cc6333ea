// Package config loads runtime configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds the application configuration loaded from environment
// variables. Command-line flags override these values.
type Config struct {
	// RulesFile overrides the embedded merchant/category tables.
	// Environment variable: SMSPARSE_RULES_FILE
	RulesFile string `koanf:"SMSPARSE_RULES_FILE"`

	// StateFile is the deduplication state path. A ".db" suffix selects the
	// SQLite store; anything else is treated as a JSON state file.
	// Environment variable: SMSPARSE_STATE_FILE
	StateFile string `koanf:"SMSPARSE_STATE_FILE"`

	// Window is the duplicate-suppression window (Go duration string,
	// e.g. "5m"). Environment variable: SMSPARSE_DEDUP_WINDOW
	Window time.Duration `koanf:"SMSPARSE_DEDUP_WINDOW"`

	// LogLevel is the minimum log level: DEBUG, INFO, WARN, ERROR.
	// Environment variable: SMSPARSE_LOG_LEVEL
	LogLevel string `koanf:"SMSPARSE_LOG_LEVEL"`

	// LogJSON enables JSON log output.
	// Environment variable: SMSPARSE_LOG_JSON
	LogJSON bool `koanf:"SMSPARSE_LOG_JSON"`
}

// Load reads configuration from the environment.
// Unset variables leave zero values; callers apply their own defaults.
func Load() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("SMSPARSE_", ".", nil), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment config: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Window < 0 {
		return nil, fmt.Errorf("SMSPARSE_DEDUP_WINDOW cannot be negative, got %s", cfg.Window)
	}

	return &cfg, nil
}
