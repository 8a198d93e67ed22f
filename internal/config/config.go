// Package config loads CLI defaults from a YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mcncl/jsondiff/internal/models"
)

// Config represents the complete configuration for jsondiff
type Config struct {
	Compare  CompareConfig  `yaml:"compare"`
	Progress ProgressConfig `yaml:"progress"`
	Output   OutputConfig   `yaml:"output"`
}

// CompareConfig holds default comparison options
type CompareConfig struct {
	IgnoreKeyOrder   bool   `yaml:"ignore_key_order"`
	IgnoreArrayOrder bool   `yaml:"ignore_array_order"`
	MaxDiffs         uint32 `yaml:"max_diffs"`
}

// ProgressConfig controls progress reporting
type ProgressConfig struct {
	Enabled    bool `yaml:"enabled"`
	IntervalMS int  `yaml:"interval_ms"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Format string `yaml:"format"` // "text" or "json"
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Compare: CompareConfig{
			IgnoreKeyOrder:   false,
			IgnoreArrayOrder: false,
			MaxDiffs:         models.DefaultMaxDiffs,
		},
		Progress: ProgressConfig{
			Enabled:    true,
			IntervalMS: 50,
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".jsondiff.yml", ".jsondiff.yaml", "jsondiff.yml", "jsondiff.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

func (c *Config) validate() error {
	switch c.Output.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid output format %q: must be \"text\" or \"json\"", c.Output.Format)
	}
	if c.Progress.IntervalMS < 0 {
		return fmt.Errorf("progress interval must not be negative")
	}
	return nil
}

// Options returns the DiffOptions this config describes
func (c *Config) Options() models.DiffOptions {
	return models.DiffOptions{
		IgnoreKeyOrder:   c.Compare.IgnoreKeyOrder,
		IgnoreArrayOrder: c.Compare.IgnoreArrayOrder,
		MaxDiffs:         c.Compare.MaxDiffs,
	}
}

// ProgressInterval returns the configured coalescing interval
func (c *Config) ProgressInterval() time.Duration {
	return time.Duration(c.Progress.IntervalMS) * time.Millisecond
}
