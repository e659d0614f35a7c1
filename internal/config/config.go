// Package config provides configuration loading for tabula.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug       bool         `yaml:"debug"`
	LogFile     string       `yaml:"log_file"`
	OutputDir   string       `yaml:"output_dir"`
	MaxUploadMB int64        `yaml:"max_upload_mb"`
	InferTypes  *bool        `yaml:"infer_types"`
	Server      ServerConfig `yaml:"server"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host       string        `yaml:"host"`
	Port       int           `yaml:"port"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// InferTypesOrDefault returns whether cell values are typed; defaults to true when unset.
func (c *Config) InferTypesOrDefault() bool {
	if c.InferTypes != nil {
		return *c.InferTypes
	}
	return true
}

// Dir returns ~/.config/tabula.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tabula"), nil
}

// DefaultPath returns the config file location used when none is given.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config file at path and applies defaults. A missing file is
// not an error: the defaults are returned.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	ApplyDefaults(&cfg)
	cfg.OutputDir = expandHome(cfg.OutputDir)
	cfg.LogFile = expandHome(cfg.LogFile)

	return &cfg, nil
}

// Save writes the config to path, creating its directory.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
