/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/sq/pkg/logging"
	"github.com/ssargent/sq/pkg/stream"
)

// Environment variables
const (
	EnvConfig      = "SQ_CONFIG"
	EnvLogLevel    = "SQ_LOG_LEVEL"
	EnvLogFormat   = "SQ_LOG_FORMAT"
	EnvOnMalformed = "SQ_ON_MALFORMED"
	EnvMetricsFile = "SQ_METRICS_FILE"
	EnvLabel       = "SQ_LABEL"
	EnvDedupeDir   = "SQ_DEDUPE_DIR"
	EnvMaxLine     = "SQ_MAX_LINE_BYTES"
)

// Config represents the sq configuration
type Config struct {
	Defaults      Defaults            `yaml:"defaults"`
	Patterns      map[string]Pattern  `yaml:"patterns,omitempty"`
	PatternGroups map[string][]string `yaml:"pattern_groups,omitempty"`
	Dedupe        Dedupe              `yaml:"dedupe"`
	Logging       Logging             `yaml:"logging"`
	Metrics       Metrics             `yaml:"metrics"`
}

// Defaults holds values used when a command flag is not given
type Defaults struct {
	Label        string `yaml:"label"`
	OnMalformed  string `yaml:"on_malformed"`
	MaxLineBytes int    `yaml:"max_line_bytes"`
}

// Pattern is a named regular expression
type Pattern struct {
	Pattern     string `yaml:"pattern"`
	Description string `yaml:"description,omitempty"`
}

// Dedupe configures the seen-set used by import --dedupe
type Dedupe struct {
	Dir string `yaml:"dir,omitempty"` // empty = temporary directory per run
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Metrics configures the run metrics textfile
type Metrics struct {
	File string `yaml:"file,omitempty"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Defaults: Defaults{
			OnMalformed:  string(stream.PolicyAbort),
			MaxLineBytes: stream.DefaultMaxLineBytes,
		},
		Logging: Logging{
			Level:  "warn",
			Format: logging.FormatText,
		},
	}
}

// LoadConfig loads configuration from the specified path. Values missing from
// the file keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Load resolves the configuration file. A missing file at the default location
// yields the defaults; a missing file that was asked for explicitly is an error.
func Load(configPath string, explicit bool) (*Config, error) {
	if !explicit && !ConfigExists(configPath) {
		return DefaultConfig(), nil
	}
	return LoadConfig(configPath)
}

// SaveConfig saves the configuration to the specified path
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadDotEnv loads a .env file into the process environment if one exists.
// Variables already set are not overridden.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides configuration values from SQ_* environment variables
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.Logging.Level = v
	}
	if v := strings.TrimSpace(getenv(EnvLogFormat)); v != "" {
		c.Logging.Format = v
	}
	if v := strings.TrimSpace(getenv(EnvOnMalformed)); v != "" {
		c.Defaults.OnMalformed = v
	}
	if v := strings.TrimSpace(getenv(EnvMetricsFile)); v != "" {
		c.Metrics.File = v
	}
	if v := getenv(EnvLabel); v != "" {
		c.Defaults.Label = v
	}
	if v := strings.TrimSpace(getenv(EnvDedupeDir)); v != "" {
		c.Dedupe.Dir = v
	}
	if v := strings.TrimSpace(getenv(EnvMaxLine)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvMaxLine, v, err)
		}
		c.Defaults.MaxLineBytes = n
	}
	return nil
}

// Validate rejects values the commands cannot act on
func (c *Config) Validate() error {
	if _, err := stream.ParsePolicy(c.Defaults.OnMalformed); err != nil {
		return err
	}
	if c.Defaults.MaxLineBytes < 0 {
		return fmt.Errorf("max_line_bytes must not be negative, got %d", c.Defaults.MaxLineBytes)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	if err := logging.ValidateFormat(c.Logging.Format); err != nil {
		return err
	}
	for name, p := range c.Patterns {
		if strings.TrimSpace(name) == "" {
			return errors.New("pattern with empty name")
		}
		if p.Pattern == "" {
			return fmt.Errorf("pattern %q has no expression", name)
		}
	}
	for name, members := range c.PatternGroups {
		if len(members) == 0 {
			return fmt.Errorf("pattern group %q is empty", name)
		}
	}
	return nil
}

// ReaderConfig converts the defaults into stream reader settings
func (c *Config) ReaderConfig() (stream.ReaderConfig, error) {
	policy, err := stream.ParsePolicy(c.Defaults.OnMalformed)
	if err != nil {
		return stream.ReaderConfig{}, err
	}
	return stream.ReaderConfig{
		OnMalformed:  policy,
		MaxLineBytes: c.Defaults.MaxLineBytes,
	}, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./sq.yaml"
	}

	// For Linux/macOS, use ~/.config/sq/config.yaml
	return filepath.Join(homeDir, ".config", "sq", "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
