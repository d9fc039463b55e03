package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewDefaultsWhenConfigMissing(t *testing.T) {
	base := t.TempDir()
	if err := InitAdminDir(base); err != nil {
		t.Fatalf("init admin dir: %v", err)
	}
	// InitAdminDir writes the commented template; the loaded values must
	// still resolve to the documented defaults.
	cfg, err := New(base)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if cfg.File.Version != 1 {
		t.Fatalf("expected version 1, got %d", cfg.File.Version)
	}
	if cfg.PageSize() != defaultPageSize {
		t.Fatalf("expected page size %d, got %d", defaultPageSize, cfg.PageSize())
	}
	if got := cfg.BackendURL(); got != DefaultBackendURL {
		t.Fatalf("expected production fallback URL, got %q", got)
	}
}

func TestInitAdminDirCreatesStructure(t *testing.T) {
	base := t.TempDir()
	if err := InitAdminDir(base); err != nil {
		t.Fatalf("init admin dir: %v", err)
	}
	for _, dir := range []string{"logs", "session", "cache"} {
		path := filepath.Join(base, AdminDir, dir)
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", path, err)
		}
	}
	if _, err := os.Stat(filepath.Join(base, AdminDir, "config.yaml")); err != nil {
		t.Fatalf("expected config.yaml to be seeded: %v", err)
	}
}

func TestNewParsesYaml(t *testing.T) {
	base := t.TempDir()
	home := filepath.Join(base, AdminDir)
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatal(err)
	}
	configYAML := strings.TrimSpace(`
version: 1
backend_url: https://staging.baches.example/api
page_size: 25
refresh_seconds: 10
cache:
  enabled: false
  ttl_minutes: 5
  max_entries: 50
`)
	if err := os.WriteFile(filepath.Join(home, "config.yaml"), []byte(configYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := New(base)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if cfg.BackendURL() != "https://staging.baches.example/api" {
		t.Fatalf("backend url = %q", cfg.BackendURL())
	}
	if cfg.PageSize() != 25 {
		t.Fatalf("page size = %d, want 25", cfg.PageSize())
	}
	if cfg.RefreshInterval() != 10 {
		t.Fatalf("refresh = %d, want 10", cfg.RefreshInterval())
	}
	if cfg.File.Cache.Enabled {
		t.Fatalf("cache should be disabled")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	base := t.TempDir()
	home := filepath.Join(base, AdminDir)
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(home, "config.yaml"), []byte("version: 1\nbackend_url: https://file.example/api\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvBackendURL, "https://env.example/api")
	cfg, err := New(base)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if cfg.BackendURL() != "https://env.example/api" {
		t.Fatalf("env should win, got %q", cfg.BackendURL())
	}
}

func TestValidationRejectsBadURL(t *testing.T) {
	base := t.TempDir()
	home := filepath.Join(base, AdminDir)
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(home, "config.yaml"), []byte("version: 1\nbackend_url: not-a-url\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(base); err == nil {
		t.Fatalf("expected validation error for non-http backend_url")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	base := t.TempDir()
	if err := InitAdminDir(base); err != nil {
		t.Fatal(err)
	}
	cfg, err := New(base)
	if err != nil {
		t.Fatal(err)
	}
	cfg.File.PageSize = 42
	if err := cfg.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	reloaded, err := New(base)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.PageSize() != 42 {
		t.Fatalf("page size after reload = %d, want 42", reloaded.PageSize())
	}
}
