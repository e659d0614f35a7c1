package config

import "time"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 200
	}
	if cfg.InferTypes == nil {
		t := true
		cfg.InferTypes = &t
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.SessionTTL <= 0 {
		cfg.Server.SessionTTL = 30 * time.Minute
	}
}
