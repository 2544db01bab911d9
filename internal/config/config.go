// Package config loads the YAML configuration controlling store address,
// task selection, and logging verbosity, falling back to hardcoded
// defaults when no config file is present.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// StoreConfig controls how the shared fact/idea ledger is opened.
type StoreConfig struct {
	Address string `yaml:"address"`
}

// EngineConfig controls the DS/EGG driver loops' polling cadence.
type EngineConfig struct {
	TickMillis int `yaml:"tick_millis"`
}

// LoggingConfig controls the category-based file logger and the zap
// logger used at the CLI boundary.
type LoggingConfig struct {
	Workspace string `yaml:"workspace"`
	Verbose   bool   `yaml:"verbose"`
}

// Config is the top-level configuration document.
type Config struct {
	Store      StoreConfig   `yaml:"store"`
	Engine     EngineConfig  `yaml:"engine"`
	Logging    LoggingConfig `yaml:"logging"`
	Components []string      `yaml:"components"`
}

// DefaultConfig returns the configuration used when no file is present:
// a fresh temporary sqlite store, every task enabled, and the 100ms tick
// cadence.
func DefaultConfig() *Config {
	return &Config{
		Store:      StoreConfig{Address: ""},
		Engine:     EngineConfig{TickMillis: 100},
		Logging:    LoggingConfig{Workspace: ".", Verbose: false},
		Components: []string{"input", "output", "ds", "egg"},
	}
}

// Load reads and parses path. A missing file is not an error: Load
// returns DefaultConfig with env overrides applied. A present-but-invalid
// file is an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("config: reading %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %q: %w", path, err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshaling: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: writing %q: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if addr := os.Getenv("DDSEARCH_STORE_ADDRESS"); addr != "" {
		cfg.Store.Address = addr
	}
	if ws := os.Getenv("DDSEARCH_WORKSPACE"); ws != "" {
		cfg.Logging.Workspace = ws
	}
	if os.Getenv("DDSEARCH_VERBOSE") == "1" {
		cfg.Logging.Verbose = true
	}
}

// Tick returns the configured engine poll cadence as a time.Duration,
// falling back to 100ms if the configured value is not positive.
func (c *Config) Tick() time.Duration {
	if c.Engine.TickMillis <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(c.Engine.TickMillis) * time.Millisecond
}
