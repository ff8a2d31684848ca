// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/verbit/efmt/config"
)

func TestDefault_HasSaneFallbacks(t *testing.T) {
	cfg := config.Default()
	if cfg.MaxColumns != 100 {
		t.Fatalf("Default().MaxColumns = %d, want 100", cfg.MaxColumns)
	}
	if cfg.Workers <= 0 {
		t.Fatalf("Default().Workers = %d, want > 0", cfg.Workers)
	}
}

func TestLoad_ParsesTOMLFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".efmt.toml")
	contents := `
max_columns = 80
include_dirs = ["include", "deps/include"]
exclude = ["vendor/**"]
cache_path = ".efmt-cache.db"
workers = 4

[predefined_macros]
DEBUG = "true"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if cfg.MaxColumns != 80 {
		t.Fatalf("cfg.MaxColumns = %d, want 80", cfg.MaxColumns)
	}
	if got, want := len(cfg.IncludeDirs), 2; got != want {
		t.Fatalf("len(cfg.IncludeDirs) = %d, want %d", got, want)
	}
	if cfg.PredefinedMacros["DEBUG"] != "true" {
		t.Fatalf("cfg.PredefinedMacros[DEBUG] = %q, want %q", cfg.PredefinedMacros["DEBUG"], "true")
	}
	if cfg.Workers != 4 {
		t.Fatalf("cfg.Workers = %d, want 4", cfg.Workers)
	}
}

func TestLoad_NonPositiveMaxColumnsFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".efmt.toml")
	if err := os.WriteFile(path, []byte("max_columns = 0\n"), 0o644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if cfg.MaxColumns != 100 {
		t.Fatalf("cfg.MaxColumns = %d, want the default 100", cfg.MaxColumns)
	}
}

func TestLoad_MissingFileIsAnError(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Fatalf("Load on a missing file returned nil error")
	}
}

func TestDiscover_FindsConfigInAncestorDirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".efmt.toml"), []byte("max_columns = 72\n"), 0o644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}
	nested := filepath.Join(root, "src", "app")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll error = %v", err)
	}

	cfg, path, err := config.Discover(nested)
	if err != nil {
		t.Fatalf("Discover error = %v", err)
	}
	if cfg.MaxColumns != 72 {
		t.Fatalf("cfg.MaxColumns = %d, want 72", cfg.MaxColumns)
	}
	want := filepath.Join(root, ".efmt.toml")
	if path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}
}

func TestDiscover_ReturnsDefaultWhenNoneFound(t *testing.T) {
	dir := t.TempDir()
	cfg, path, err := config.Discover(dir)
	if err != nil {
		t.Fatalf("Discover error = %v", err)
	}
	if path != "" {
		t.Fatalf("path = %q, want empty when no config file exists", path)
	}
	if cfg.MaxColumns != 100 {
		t.Fatalf("cfg.MaxColumns = %d, want the default 100", cfg.MaxColumns)
	}
}
