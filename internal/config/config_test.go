package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.MaxUploadMB != 200 || cfg.MaxUploadBytes() != 200<<20 {
		t.Errorf("Expected 200MB limit, got %dMB", cfg.MaxUploadMB)
	}
	if !cfg.InferTypesOrDefault() {
		t.Error("Type inference should default to on")
	}
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("Unexpected server defaults: %+v", cfg.Server)
	}
	if cfg.Server.SessionTTL != 30*time.Minute {
		t.Errorf("Expected 30m session TTL, got %v", cfg.Server.SessionTTL)
	}
	if cfg.OutputDir != "." {
		t.Errorf("Expected output dir '.', got %q", cfg.OutputDir)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `debug: true
output_dir: /tmp/out
max_upload_mb: 5
infer_types: false
server:
  port: 9000
  session_ttl: 5m
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !cfg.Debug {
		t.Error("Expected debug true")
	}
	if cfg.OutputDir != "/tmp/out" {
		t.Errorf("Expected /tmp/out, got %s", cfg.OutputDir)
	}
	if cfg.MaxUploadBytes() != 5<<20 {
		t.Errorf("Expected 5MB limit, got %d bytes", cfg.MaxUploadBytes())
	}
	if cfg.InferTypesOrDefault() {
		t.Error("Expected type inference off")
	}
	if cfg.Server.Port != 9000 || cfg.Server.Host != "localhost" {
		t.Errorf("Unexpected server config: %+v", cfg.Server)
	}
	if cfg.Server.SessionTTL != 5*time.Minute {
		t.Errorf("Expected 5m TTL, got %v", cfg.Server.SessionTTL)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected a parse error")
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := &Config{OutputDir: "/data", MaxUploadMB: 10}
	ApplyDefaults(cfg)

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.OutputDir != "/data" || loaded.MaxUploadMB != 10 {
		t.Errorf("Round trip mismatch: %+v", loaded)
	}
}
