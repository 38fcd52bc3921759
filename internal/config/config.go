// Package config loads and validates xianyi.yml, the per-device
// configuration for the exhibit guide.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file looked up in the working directory
// when no explicit path is given.
const DefaultFileName = "xianyi.yml"

// Config represents the top-level xianyi.yml configuration.
type Config struct {
	Version  string          `yaml:"version"`
	Device   DeviceConfig    `yaml:"device"`
	Sync     *SyncConfig     `yaml:"sync,omitempty"`
	Resolver *ResolverConfig `yaml:"resolver,omitempty"`
}

// DeviceConfig locates the device-local state.
type DeviceConfig struct {
	DataDir    string `yaml:"data_dir"`    // Required: durable store, settings, session logs
	BundledDir string `yaml:"bundled_dir"` // Required: root of the shipped fallback assets
}

// SyncConfig specifies the shared transfer endpoint for cross-device sync.
type SyncConfig struct {
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password,omitempty"`
	RedisDB       int    `yaml:"redis_db,omitempty"`
}

// ResolverConfig tunes asset resolution.
type ResolverConfig struct {
	RemoteTimeoutSeconds *int `yaml:"remote_timeout_seconds,omitempty"` // Default: 10
}

// Validate performs strict validation on the configuration and applies
// defaults for optional sections.
func (c *Config) Validate() error {
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if c.Device.DataDir == "" {
		return fmt.Errorf("device.data_dir is required")
	}
	if c.Device.BundledDir == "" {
		return fmt.Errorf("device.bundled_dir is required")
	}

	if c.Sync != nil {
		if c.Sync.RedisAddr == "" {
			return fmt.Errorf("sync.redis_addr is required when the sync section is present")
		}
		if c.Sync.RedisDB < 0 {
			return fmt.Errorf("sync.redis_db must be >= 0, got %d", c.Sync.RedisDB)
		}
	}

	if c.Resolver == nil {
		c.Resolver = &ResolverConfig{}
	}
	if c.Resolver.RemoteTimeoutSeconds == nil {
		defaultTimeout := 10
		c.Resolver.RemoteTimeoutSeconds = &defaultTimeout
	}
	if *c.Resolver.RemoteTimeoutSeconds <= 0 {
		return fmt.Errorf("resolver.remote_timeout_seconds must be > 0, got %d", *c.Resolver.RemoteTimeoutSeconds)
	}

	return nil
}

// SyncEnabled reports whether a transfer endpoint is configured. Sync
// commands require it; everything else works without one.
func (c *Config) SyncEnabled() bool {
	return c.Sync != nil
}

// Load reads and validates xianyi.yml from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}
