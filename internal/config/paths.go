package config

import (
	"os"
	"path/filepath"
)

const (
	ConfigFileName  = "config.toml"
	GlobalConfigDir = ".config/permalink"

	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "PERMALINK_CONFIG"
)

// Path returns the config file path: $PERMALINK_CONFIG if set, otherwise
// ~/.config/permalink/config.toml. Returns "" when no home directory is known.
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, GlobalConfigDir, ConfigFileName)
}
