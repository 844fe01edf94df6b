package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_CreatesDefaultConfigWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	manager, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config file should have been written: %v", err)
	}
	cfg := manager.Get()
	if cfg.Naming.By != "cue" {
		t.Errorf("expected default naming by cue, got %q", cfg.Naming.By)
	}
	if cfg.Removal.Mode != "never" {
		t.Errorf("expected default removal mode never, got %q", cfg.Removal.Mode)
	}
}

func TestLoad_ParsesAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
rootPath: /mnt/roms
naming:
  by: folder
  asciify: true
removal:
  mode: always
merge:
  interpreter: python3
  tool: /opt/binmerge
database:
  path: ./test.db
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	manager, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	cfg := manager.Get()
	if cfg.RootPath != "/mnt/roms" {
		t.Errorf("unexpected root path %q", cfg.RootPath)
	}
	if cfg.Naming.By != "folder" || !cfg.Naming.Asciify {
		t.Errorf("naming not parsed: %+v", cfg.Naming)
	}
	if cfg.Removal.Mode != "always" {
		t.Errorf("removal not parsed: %+v", cfg.Removal)
	}
	// Unset values fall back to defaults before validation.
	if cfg.Server.Port == 0 {
		t.Error("expected default server port")
	}
}

func TestLoad_RejectsInvalidRemovalMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
rootPath: /mnt/roms
removal:
  mode: sometimes
merge:
  tool: /opt/binmerge
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for removal mode")
	}
}

func TestLoad_RejectsMissingTool(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
rootPath: /mnt/roms
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for missing merge tool")
	}
}
