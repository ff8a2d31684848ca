// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package config loads the ".efmt.toml" project configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config mirrors the options a project can pin in ".efmt.toml" so every
// contributor and the CI formats identically without repeating flags.
type Config struct {
	MaxColumns       int               `toml:"max_columns"`
	IncludeDirs      []string          `toml:"include_dirs"`
	PredefinedMacros map[string]string `toml:"predefined_macros"`
	Exclude          []string          `toml:"exclude"`
	CachePath        string            `toml:"cache_path"`
	Workers          int               `toml:"workers"`
}

// Default returns the configuration used when no ".efmt.toml" is found.
func Default() *Config {
	return &Config{
		MaxColumns: 100,
		Workers:    runtime.NumCPU(),
	}
}

// Load reads and parses the TOML file at path.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if cfg.MaxColumns <= 0 {
		cfg.MaxColumns = 100
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return cfg, nil
}

// Discover walks up from dir looking for ".efmt.toml", returning
// Default() if none is found anywhere up to the filesystem root.
func Discover(dir string) (*Config, string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	for {
		candidate := filepath.Join(dir, ".efmt.toml")
		if _, err := os.Stat(candidate); err == nil {
			cfg, err := Load(candidate)
			if err != nil {
				return nil, "", err
			}
			return cfg, candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), "", nil
		}
		dir = parent
	}
}
