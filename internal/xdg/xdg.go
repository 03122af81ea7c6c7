// Package xdg provides XDG Base Directory paths for pwpolicy.
package xdg

import (
	"errors"
	"os"
	"path/filepath"
)

const appName = "pwpolicy"

// ConfigFileName is the config file looked up inside ConfigDir.
const ConfigFileName = "config.yaml"

// ConfigDir returns the XDG config directory for pwpolicy.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, appName)
}

// DefaultConfigFile returns the default config file path and whether it
// exists. A missing file is not an error; callers fall back to defaults.
func DefaultConfigFile() (string, bool) {
	path := filepath.Join(ConfigDir(), ConfigFileName)
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return path, true
		}
		return path, false
	}
	return path, true
}
