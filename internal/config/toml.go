// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Quiz    QuizConfig    `toml:"quiz"`
	Gesture GestureConfig `toml:"gesture"`
	Log     LogConfig     `toml:"log"`
}

// QuizConfig maps quiz settings.
type QuizConfig struct {
	Seconds *int `toml:"seconds"`
}

// GestureConfig maps camera and detection settings.
type GestureConfig struct {
	Device        *int     `toml:"device"`
	Cascade       *string  `toml:"cascade"`
	MinSize       *int     `toml:"min-size"`
	FPS           *int     `toml:"fps"`
	MaxInFlight   *int     `toml:"max-in-flight"`
	MinConfidence *float64 `toml:"min-confidence"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
