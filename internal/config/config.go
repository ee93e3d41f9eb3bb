// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config is the per-run configuration: root, store URI, exclusion
// globs, size limits, parallelism, watcher tuning, and query-scope
// filtering, loaded from a YAML project file with defaults filled in for
// whatever a hand-edited file omits.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/isograph/internal/errs"
	"github.com/kraklabs/isograph/internal/langs"
)

const (
	configDir     = ".isograph"
	configFile    = "project.yaml"
	configVersion = "1"
)

// Config is the full set of per-project ingestion knobs.
type Config struct {
	Version string `yaml:"version"`

	Root             string   `yaml:"root"`
	DB               string   `yaml:"db"`
	Exclude          []string `yaml:"exclude,omitempty"`
	MaxFileSizeBytes int64    `yaml:"max_file_size_bytes,omitempty"`
	Parallel         int      `yaml:"parallel,omitempty"`
	WatchExtensions  []string `yaml:"watch_extensions,omitempty"`
	DebounceMs       int      `yaml:"debounce_ms,omitempty"`
	ChunkSize        int      `yaml:"chunk_size,omitempty"`
	Scope            string   `yaml:"scope,omitempty"`
}

// defaultExclude is the built-in VCS/package/build exclusion set applied
// on top of any user-supplied patterns.
var defaultExclude = []string{
	".git/**", "node_modules/**", "vendor/**", "dist/**", "build/**",
	"target/**", "__pycache__/**", ".isograph/**",
}

// Default returns a Config with built-in defaults for root.
func Default(root string) *Config {
	return &Config{
		Version:          configVersion,
		Root:             root,
		DB:               "mem",
		Exclude:          append([]string{}, defaultExclude...),
		MaxFileSizeBytes: 1 << 20,
		Parallel:         runtime.GOMAXPROCS(0),
		WatchExtensions:  allWatchExtensions(),
		DebounceMs:       100,
		ChunkSize:        500,
	}
}

func allWatchExtensions() []string {
	var exts []string
	for _, lang := range langs.SupportedLanguages() {
		g, ok := langs.Get(lang)
		if !ok {
			continue
		}
		exts = append(exts, g.Extensions...)
	}
	return exts
}

// Path returns <dir>/.isograph/project.yaml.
func Path(dir string) string { return filepath.Join(dir, configDir, configFile) }

// Load reads and parses the config file at path. A missing or unreadable
// file is reported as a ConfigError wrapping the underlying os error, so
// errors.Is(err, fs.ErrNotExist) still tells a missing file apart.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.New(errs.KindConfig, "config.Load", "cannot read "+path, err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errs.New(errs.KindConfig, "config.Load", "invalid YAML in "+path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes cfg to path as YAML, creating the parent directory if
// needed.
func Save(cfg *Config, path string) error {
	if cfg.Version == "" {
		cfg.Version = configVersion
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errs.New(errs.KindConfig, "config.Save", "cannot encode config", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.New(errs.KindConfig, "config.Save", "cannot create "+filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.New(errs.KindConfig, "config.Save", "cannot write "+path, err)
	}
	return nil
}

// applyDefaults fills in zero-valued knobs with the same values Default
// uses, applied on load since a hand-edited project.yaml is free to omit
// any knob it doesn't care to override.
func (c *Config) applyDefaults() {
	if len(c.Exclude) == 0 {
		c.Exclude = append([]string{}, defaultExclude...)
	} else {
		c.Exclude = append(append([]string{}, defaultExclude...), c.Exclude...)
	}
	if c.MaxFileSizeBytes <= 0 {
		c.MaxFileSizeBytes = 1 << 20
	}
	if c.Parallel <= 0 {
		c.Parallel = runtime.GOMAXPROCS(0)
	}
	if len(c.WatchExtensions) == 0 {
		c.WatchExtensions = allWatchExtensions()
	}
	if c.DebounceMs <= 0 {
		c.DebounceMs = 100
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = 500
	}
	if c.DB == "" {
		c.DB = "mem"
	}
}

// ScopeFilter parses the `scope` knob (`L1` or `L1||L2`) into its
// component folder names, for query-side filtering.
func (c *Config) ScopeFilter() (l1, l2 string, ok bool) {
	if c.Scope == "" {
		return "", "", false
	}
	parts := strings.SplitN(c.Scope, "||", 2)
	l1 = parts[0]
	if len(parts) == 2 {
		l2 = parts[1]
	}
	return l1, l2, true
}

// ResolveScope finds the nearest project config by walking up from dir to
// the filesystem root.
func ResolveScope(dir string) (string, error) {
	for {
		p := Path(dir)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", errs.New(errs.KindConfig, "config.ResolveScope", fmt.Sprintf("no %s/%s found above %s", configDir, configFile, dir), nil)
}
