// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/isograph/internal/model"
)

func TestMatchesGlob_DoubleStarSuffix(t *testing.T) {
	assert.True(t, matchesGlob("vendor/pkg/a.go", "vendor/**"))
	assert.True(t, matchesGlob("vendor", "vendor/**"))
	assert.False(t, matchesGlob("src/vendor-ish/a.go", "vendor/**"))
}

func TestMatchesGlob_BareSegment(t *testing.T) {
	assert.True(t, matchesGlob("a/node_modules/b.js", "node_modules"))
	assert.False(t, matchesGlob("a/node_modules_cache/b.js", "node_modules"))
}

func TestMatchesGlob_MidPatternDoubleStar(t *testing.T) {
	assert.True(t, matchesGlob("a/b/c/d.min.js", "a/**/*.min.js"))
}

func TestDiscover_ClassifiesByStatus(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "vendor"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "vendor", "dep.go"), []byte("package dep\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("# readme\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "huge.go"), make([]byte, 2048), 0o644))

	cfg := Config{Root: root, ExcludeGlobs: []string{"vendor/**"}, MaxFileSizeBytes: 1024}
	files, err := discover(cfg)
	require.NoError(t, err)

	byPath := map[string]discoveredFile{}
	for _, f := range files {
		byPath[f.normalizedPath] = f
	}

	assert.Equal(t, model.FileStatus(""), byPath["main.go"].status)
	assert.Equal(t, model.LangGo, byPath["main.go"].language)
	assert.Equal(t, model.StatusExcluded, byPath["vendor/dep.go"].status)
	assert.Equal(t, model.StatusUnsupportedLanguage, byPath["README.md"].status)
	assert.Equal(t, model.StatusTooLarge, byPath["huge.go"].status)
}
