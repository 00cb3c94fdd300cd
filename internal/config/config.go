// Package config loads the TOML configuration file and applies environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds the user-editable settings.
type Config struct {
	// Token is the personal access token used for API authentication.
	Token string `toml:"token"`
	// APIURL overrides the API base URL, mainly for testing.
	APIURL string `toml:"api_url"`

	Lessons LessonsConfig `toml:"lessons"`
}

// LessonsConfig tunes the lesson flow.
type LessonsConfig struct {
	// BatchSize is how many lessons one session takes on. Zero means the
	// built-in default.
	BatchSize int `toml:"batch_size"`
}

// Load reads the config file at path and applies environment overrides.
// A missing file is not an error; overrides still apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if v := os.Getenv("KODAMA_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("KODAMA_API_URL"); v != "" {
		cfg.APIURL = v
	}
	return cfg, nil
}

// DefaultPath resolves the config file path in priority order:
// 1. KODAMA_CONFIG environment variable
// 2. $XDG_CONFIG_HOME/kodama/config.toml
// 3. ~/.config/kodama/config.toml
func DefaultPath() (string, error) {
	if p := os.Getenv("KODAMA_CONFIG"); p != "" {
		return p, nil
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "kodama", "config.toml"), nil
}
