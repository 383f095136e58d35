// Package config provides YAML configuration parsing for ditto.
//
// This package enables running ditto as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
// The standalone binary opens a store from the config and can run a
// synthetic workload against it (see cmd/ditto).
//
// Example configuration:
//
//	path: app-cache
//	table_size: 256
//	max_subscriptions: 100
//	log_level: info
//
//	workload:
//	  keys: 100
//	  value_size: 64
//	  iterations: 3
//	  subscribers: 2
package config

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Default values applied by [Parse] when a field is omitted.
const (
	defaultTableSize        = 256
	defaultMaxSubscriptions = 100
	defaultLogLevel         = "info"

	defaultWorkloadKeys       = 100
	defaultWorkloadValueSize  = 64
	defaultWorkloadIterations = 1
)

// Config is the root configuration structure for ditto.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Path identifies the store in logs and diagnostics. The store is
	// in-memory; the path is never touched on disk.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	Path string `yaml:"path"`

	// TableSize is the hash bucket count, fixed for the store's lifetime.
	// Defaults to 256.
	TableSize int `yaml:"table_size"`

	// MaxSubscriptions is the change-subscription capacity. Defaults to 100.
	MaxSubscriptions int `yaml:"max_subscriptions"`

	// LogLevel is one of "debug", "info", "warn", "error". Defaults to "info".
	LogLevel string `yaml:"log_level"`

	// Workload configures the synthetic workload run by "ditto exercise".
	Workload WorkloadConfig `yaml:"workload"`
}

// WorkloadConfig describes the synthetic workload for the exercise command.
//
// Each iteration puts every key with a fresh value, reads it back through
// the two-call buffer protocol, and finally deletes every key. Subscribers
// count notifications so the fan-out path is exercised too.
type WorkloadConfig struct {
	// Keys is the number of distinct keys to cycle through. Defaults to 100.
	Keys int `yaml:"keys"`

	// ValueSize is the value length in bytes. Defaults to 64.
	ValueSize int `yaml:"value_size"`

	// Iterations is the number of put/get/delete cycles. Defaults to 1.
	Iterations int `yaml:"iterations"`

	// Subscribers is the number of counting subscriptions to register
	// before the workload starts. Defaults to 0.
	Subscribers int `yaml:"subscribers"`
}

// Level returns the [slog.Level] corresponding to LogLevel.
// Call only after validation; unknown levels fall back to Info.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the path field are expanded before validation.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Defaults are applied for TableSize (256), MaxSubscriptions (100),
// LogLevel ("info"), and the workload block; the parsed config is then
// validated.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.TableSize == 0 {
		cfg.TableSize = defaultTableSize
	}
	if cfg.MaxSubscriptions == 0 {
		cfg.MaxSubscriptions = defaultMaxSubscriptions
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.Workload.Keys == 0 {
		cfg.Workload.Keys = defaultWorkloadKeys
	}
	if cfg.Workload.ValueSize == 0 {
		cfg.Workload.ValueSize = defaultWorkloadValueSize
	}
	if cfg.Workload.Iterations == 0 {
		cfg.Workload.Iterations = defaultWorkloadIterations
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	expanded, err := expandEnvVars(c.Path)
	if err != nil {
		return fmt.Errorf("path: %w", err)
	}
	c.Path = expanded
	if c.Path == "" {
		return fmt.Errorf("path expanded to an empty string")
	}

	if c.TableSize < 0 {
		return fmt.Errorf("table_size cannot be negative, got %d", c.TableSize)
	}
	if c.MaxSubscriptions < 0 {
		return fmt.Errorf("max_subscriptions cannot be negative, got %d", c.MaxSubscriptions)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	w := c.Workload
	if w.Keys < 0 {
		return fmt.Errorf("workload: keys cannot be negative, got %d", w.Keys)
	}
	if w.ValueSize < 0 {
		return fmt.Errorf("workload: value_size cannot be negative, got %d", w.ValueSize)
	}
	if w.Iterations < 0 {
		return fmt.Errorf("workload: iterations cannot be negative, got %d", w.Iterations)
	}
	if w.Subscribers < 0 {
		return fmt.Errorf("workload: subscribers cannot be negative, got %d", w.Subscribers)
	}
	if w.Subscribers > c.MaxSubscriptions {
		return fmt.Errorf("workload: subscribers (%d) exceeds max_subscriptions (%d)",
			w.Subscribers, c.MaxSubscriptions)
	}

	return nil
}
