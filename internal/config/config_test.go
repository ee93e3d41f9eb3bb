// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/isograph/internal/errs"
)

func TestDefault_FillsSpecMandatedDefaults(t *testing.T) {
	cfg := Default("/repo")
	assert.Equal(t, "/repo", cfg.Root)
	assert.Equal(t, "mem", cfg.DB)
	assert.EqualValues(t, 1<<20, cfg.MaxFileSizeBytes)
	assert.Equal(t, 100, cfg.DebounceMs)
	assert.Equal(t, 500, cfg.ChunkSize)
	assert.Contains(t, cfg.Exclude, ".git/**")
	assert.NotEmpty(t, cfg.WatchExtensions)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, configDir, configFile)

	cfg := Default(dir)
	cfg.Scope = "internal||internal/store"
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, dir, loaded.Root)
	assert.Equal(t, cfg.Scope, loaded.Scope)
	assert.Equal(t, cfg.DebounceMs, loaded.DebounceMs)
}

func TestLoad_AppliesDefaultsOnPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.yaml")
	minimal := []byte("version: \"1\"\nroot: " + dir + "\n")
	require.NoError(t, os.WriteFile(path, minimal, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mem", cfg.DB)
	assert.Equal(t, 500, cfg.ChunkSize)
	assert.Equal(t, 100, cfg.DebounceMs)
}

func TestScopeFilter(t *testing.T) {
	cfg := &Config{Scope: "internal||internal/store"}
	l1, l2, ok := cfg.ScopeFilter()
	assert.True(t, ok)
	assert.Equal(t, "internal", l1)
	assert.Equal(t, "internal/store", l2)

	cfg2 := &Config{Scope: "internal"}
	l1, l2, ok = cfg2.ScopeFilter()
	assert.True(t, ok)
	assert.Equal(t, "internal", l1)
	assert.Equal(t, "", l2)

	cfg3 := &Config{}
	_, _, ok = cfg3.ScopeFilter()
	assert.False(t, ok)
}

func TestLoad_MissingFileIsConfigError(t *testing.T) {
	_, err := Load("/nonexistent/project.yaml")
	assert.Error(t, err)
	var cfgErr *errs.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, errs.KindConfig, cfgErr.Kind)
}
