// Copyright 2026 The Zipseal Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for zipseal.
//
// Configuration is loaded from a single file specified by:
//   - ZIPSEAL_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. This ensures
// deterministic, auditable configuration with no hidden overrides.
// Command-line flags take precedence over file values.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zipseal/zipseal/lib/archive"
	"github.com/zipseal/zipseal/lib/password"
)

// EnvVar names the environment variable pointing at the config file.
const EnvVar = "ZIPSEAL_CONFIG"

// Config is the master configuration for zipseal.
type Config struct {
	// Archive configures archive creation.
	Archive ArchiveConfig `yaml:"archive"`

	// Password configures password generation.
	Password PasswordConfig `yaml:"password"`
}

// ArchiveConfig configures archive creation.
type ArchiveConfig struct {
	// CompressionLevel is the compression setting, 0 (store) through
	// 9 (deflate; the engine applies one fixed deflate effort for all
	// non-zero levels).
	// Default: 6
	CompressionLevel int `yaml:"compression_level"`

	// OutputDir is where archives are written. Empty means the
	// source's own directory.
	OutputDir string `yaml:"output_dir"`

	// Verify enables the post-publication verification pass.
	// Default: true
	Verify bool `yaml:"verify"`
}

// PasswordConfig configures password generation.
type PasswordConfig struct {
	// Length is the generated password length.
	// Default: 16, minimum 8
	Length int `yaml:"length"`

	// Symbols enables the symbol character class.
	// Default: true
	Symbols bool `yaml:"symbols"`
}

// Default returns the default configuration. These defaults apply
// when no config file is given; a file merges on top of them.
func Default() *Config {
	policy := password.DefaultPolicy()
	return &Config{
		Archive: ArchiveConfig{
			CompressionLevel: archive.DefaultCompressionLevel,
			OutputDir:        "",
			Verify:           true,
		},
		Password: PasswordConfig{
			Length:  policy.Length,
			Symbols: true,
		},
	}
}

// Load loads configuration from the path in ZIPSEAL_CONFIG, or the
// defaults when the variable is unset. Unlike service deployments, a
// config file is optional for a local archiving tool.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. The file is
// the single source of truth below flags; environment variables never
// override individual values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Archive.CompressionLevel < archive.MinCompressionLevel ||
		c.Archive.CompressionLevel > archive.MaxCompressionLevel {
		errs = append(errs, fmt.Errorf("archive.compression_level must be between %d and %d",
			archive.MinCompressionLevel, archive.MaxCompressionLevel))
	}

	if c.Password.Length < password.MinLength {
		errs = append(errs, fmt.Errorf("password.length must be at least %d", password.MinLength))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Policy returns the password policy implied by the configuration.
func (c *Config) Policy() password.Policy {
	policy := password.DefaultPolicy()
	policy.Length = c.Password.Length
	if !c.Password.Symbols {
		policy.Symbols = ""
	}
	return policy
}
