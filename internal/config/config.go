// Package config persists the user's credential and model choice.
//
// Settings live in a flat TOML file at ~/.medvat/config.toml. A missing file
// is not an error, just an empty configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

const (
	configDir  = ".medvat"
	configFile = "config.toml"
)

// Config is the persisted configuration.
type Config struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model,omitempty"`
}

// Path returns the config file location under the user's home directory.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, configDir, configFile), nil
}

// Load reads the stored configuration. An absent file yields a zero Config
// and no error.
func Load() (Config, error) {
	var cfg Config

	path, err := Path()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration, creating the directory if needed. The file
// is written owner-only since it holds a credential.
func Save(cfg Config) error {
	path, err := Path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// APIKey retrieves the Gemini API key from available sources.
// Priority order:
//  1. GEMINI_API_KEY environment variable
//  2. api_key in ~/.medvat/config.toml
func APIKey() (string, error) {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		log.Debug().Msg("Using API key from environment variable")
		return key, nil
	}

	cfg, err := Load()
	if err == nil && cfg.APIKey != "" {
		log.Debug().Msg("Using API key from config file")
		return cfg.APIKey, nil
	}

	if err != nil {
		log.Error().Err(err).Msg("Failed to load stored configuration")
	}
	return "", fmt.Errorf("API key not found. Set GEMINI_API_KEY or run 'medvat config set-key'")
}
