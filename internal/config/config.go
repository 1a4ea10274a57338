package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	// AppName is the application name used for config and data directories.
	AppName = "timeloop"
	// ConfigFile is the name of the TOML configuration file.
	ConfigFile = "config.toml"
)

// Config holds the process-wide settings assembled once at startup.
type Config struct {
	// DataDir is the directory holding the store file. Empty means the
	// platform default under the user config directory.
	DataDir string `toml:"data_dir"`
}

// DefaultConfig returns a Config pointing at the platform default data
// directory.
func DefaultConfig() Config {
	return Config{
		DataDir: defaultDataDir(),
	}
}

func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		// Fall back to the working directory when the platform gives us
		// no user config dir (e.g. HOME unset).
		return "."
	}
	return filepath.Join(base, AppName)
}

// GetConfigPath returns the path to the config file under the user config
// directory, creating the application directory if needed.
func GetConfigPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	appDir := filepath.Join(base, AppName)
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", err
	}

	return filepath.Join(appDir, ConfigFile), nil
}

// Load reads the TOML config at path. A missing file is not an error and
// yields the defaults; a malformed file is.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}
	return cfg, nil
}

// LoadDefault loads the config from the default location.
func LoadDefault() (Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}
	return Load(path)
}
