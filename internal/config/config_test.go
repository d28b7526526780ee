package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `registry:
  path: custom/handlers.yaml
coordinator:
  workers: 8
  timeout: 45s
history:
  disabled: true
output:
  plain: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	if cfg.Registry.Path != "custom/handlers.yaml" {
		t.Errorf("registry.path = %q", cfg.Registry.Path)
	}
	if cfg.Coordinator.Workers != 8 {
		t.Errorf("coordinator.workers = %d, want 8", cfg.Coordinator.Workers)
	}
	if cfg.Coordinator.Timeout != 45*time.Second {
		t.Errorf("coordinator.timeout = %s, want 45s", cfg.Coordinator.Timeout)
	}
	if !cfg.History.Disabled {
		t.Error("history.disabled = false, want true")
	}
	if !cfg.Output.Plain {
		t.Error("output.plain = false, want true")
	}
}

func TestLoadFromPathDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	// Empty config falls back to defaults for every key.
	if err := os.WriteFile(path, []byte("{}\n"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	if cfg.Registry.Path != "handlers.yaml" {
		t.Errorf("registry.path = %q, want handlers.yaml", cfg.Registry.Path)
	}
	if cfg.Coordinator.Workers != 4 {
		t.Errorf("coordinator.workers = %d, want 4", cfg.Coordinator.Workers)
	}
	if cfg.Coordinator.Timeout != 0 {
		t.Errorf("coordinator.timeout = %s, want 0", cfg.Coordinator.Timeout)
	}
	if cfg.History.Disabled {
		t.Error("history.disabled = true, want false")
	}
}

func TestLoadFromPathMissingFile(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Registry.Path != "handlers.yaml" {
		t.Errorf("registry.path = %q", cfg.Registry.Path)
	}
	if cfg.Coordinator.Workers != 4 {
		t.Errorf("coordinator.workers = %d", cfg.Coordinator.Workers)
	}
}
