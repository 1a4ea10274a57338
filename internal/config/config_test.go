package config

import (
	"os"
	"path/filepath"
	"testing"
)

// Helper to create a temporary config file.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create temp config file: %v", err)
	}
	return tmpFile
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.DataDir == "" {
		t.Error("DefaultConfig().DataDir should not be empty")
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	tests := []struct {
		name          string
		configContent string
		wantDataDir   string
	}{
		{
			name:          "data_dir set",
			configContent: `data_dir = "/var/lib/timeloop"`,
			wantDataDir:   "/var/lib/timeloop",
		},
		{
			name:          "relative data_dir",
			configContent: `data_dir = "data"`,
			wantDataDir:   "data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := createTempConfigFile(t, tt.configContent)
			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if cfg.DataDir != tt.wantDataDir {
				t.Errorf("DataDir = %q, want %q", cfg.DataDir, tt.wantDataDir)
			}
		})
	}
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	path := createTempConfigFile(t, "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.DataDir != DefaultConfig().DataDir {
		t.Errorf("DataDir = %q, want default %q", cfg.DataDir, DefaultConfig().DataDir)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.toml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() should not fail on a missing file, got: %v", err)
	}
	if cfg.DataDir != DefaultConfig().DataDir {
		t.Errorf("DataDir = %q, want default %q", cfg.DataDir, DefaultConfig().DataDir)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := createTempConfigFile(t, `data_dir = [what`)
	if _, err := Load(path); err == nil {
		t.Error("Load() should fail on malformed TOML")
	}
}
