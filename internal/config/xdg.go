// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

const appName = "quizgest"

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGStateHome returns the XDG state home or a default fallback.
func XDGStateHome() string {
	if v := os.Getenv("XDG_STATE_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "state")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}

// DefaultCascadePath returns where the hand cascade is looked up by default.
func DefaultCascadePath() string {
	return filepath.Join(XDGConfigHome(), appName, "hand.xml")
}

// DefaultLogPath returns the default log file.
func DefaultLogPath() string {
	return filepath.Join(XDGStateHome(), appName, "quizgest.log")
}
