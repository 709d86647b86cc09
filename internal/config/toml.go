// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	AI       AIConfig       `toml:"ai"`
	Log      LogConfig      `toml:"log"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Set   *string `toml:"set"`
	Level *int    `toml:"level"`
	Seed  *int64  `toml:"seed"`
}

// AIConfig maps the text and speech service settings.
type AIConfig struct {
	Provider  *string `toml:"provider"`
	Model     *string `toml:"model"`
	HintModel *string `toml:"hint-model"`
	TTSModel  *string `toml:"tts-model"`
	Voice     *string `toml:"voice"`
	OllamaURL *string `toml:"ollama-url"`
	Timeout   *string `toml:"timeout"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
}

// TimeoutDuration parses the timeout setting. A missing value yields zero.
func (a AIConfig) TimeoutDuration() (time.Duration, error) {
	if a.Timeout == nil || *a.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(*a.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid ai.timeout %q: %w", *a.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("ai.timeout must be positive, got %s", d)
	}
	return d, nil
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
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
