// Package config loads the optional taskloom.yaml configuration file.
// Every value has a flag counterpart; flags win over file values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPort is where the viewer server listens unless overridden.
const DefaultPort = 7171

// Config is the file-level configuration.
type Config struct {
	// Vault is the root of the markdown vault. Defaults to the working
	// directory.
	Vault string `yaml:"vault"`
	// Settings is the path of the board settings blob, relative to the
	// vault root unless absolute.
	Settings string `yaml:"settings"`
	// Port is the viewer server port.
	Port int `yaml:"port"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Vault:    ".",
		Settings: filepath.Join(".taskloom", "settings.json"),
		Port:     DefaultPort,
		LogLevel: "warn",
	}
}

// Load reads path and overlays it on the defaults. A missing file is not
// an error when the path is the conventional default; an explicitly named
// file must exist.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	if file.Vault != "" {
		cfg.Vault = file.Vault
	}
	if file.Settings != "" {
		cfg.Settings = file.Settings
	}
	if file.Port != 0 {
		cfg.Port = file.Port
	}
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
	return cfg, nil
}

// SettingsPath resolves the settings blob location against the vault root.
func (c Config) SettingsPath() string {
	if filepath.IsAbs(c.Settings) {
		return c.Settings
	}
	return filepath.Join(c.Vault, c.Settings)
}
