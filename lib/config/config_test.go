// Copyright 2026 The Zipseal Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zipseal.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Archive.CompressionLevel != 6 {
		t.Errorf("default compression level %d, want 6", cfg.Archive.CompressionLevel)
	}
	if !cfg.Archive.Verify {
		t.Error("verification is off by default")
	}
	if cfg.Password.Length != 16 {
		t.Errorf("default password length %d, want 16", cfg.Password.Length)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config fails validation: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfigFile(t, `
archive:
  compression_level: 9
  output_dir: /srv/archives
  verify: false
password:
  length: 24
  symbols: false
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Archive.CompressionLevel != 9 {
		t.Errorf("compression level %d, want 9", cfg.Archive.CompressionLevel)
	}
	if cfg.Archive.OutputDir != "/srv/archives" {
		t.Errorf("output dir %q, want /srv/archives", cfg.Archive.OutputDir)
	}
	if cfg.Archive.Verify {
		t.Error("verify not overridden to false")
	}

	policy := cfg.Policy()
	if policy.Length != 24 {
		t.Errorf("policy length %d, want 24", policy.Length)
	}
	if policy.Symbols != "" {
		t.Errorf("policy symbols %q, want empty", policy.Symbols)
	}
}

func TestLoadFilePartialOverride(t *testing.T) {
	path := writeConfigFile(t, "archive:\n  compression_level: 1\n")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Archive.CompressionLevel != 1 {
		t.Errorf("compression level %d, want 1", cfg.Archive.CompressionLevel)
	}
	if !cfg.Archive.Verify {
		t.Error("unset verify lost its default")
	}
	if cfg.Password.Length != 16 {
		t.Errorf("unset password length lost its default: %d", cfg.Password.Length)
	}
}

func TestLoadFileRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"level too high", "archive:\n  compression_level: 12\n"},
		{"password too short", "password:\n  length: 4\n"},
		{"malformed yaml", "archive: ["},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := writeConfigFile(t, test.content)
			if _, err := LoadFile(path); err == nil {
				t.Error("invalid config accepted")
			}
		})
	}
}

func TestLoadUsesEnvironmentVariable(t *testing.T) {
	path := writeConfigFile(t, "archive:\n  compression_level: 3\n")
	t.Setenv(EnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Archive.CompressionLevel != 3 {
		t.Errorf("compression level %d, want 3", cfg.Archive.CompressionLevel)
	}
}

func TestLoadWithoutEnvironmentVariable(t *testing.T) {
	t.Setenv(EnvVar, "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Archive.CompressionLevel != Default().Archive.CompressionLevel {
		t.Error("Load without a config file did not return the defaults")
	}
}
