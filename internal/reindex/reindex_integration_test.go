// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build cgo

package reindex

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/isograph/internal/model"
	"github.com/kraklabs/isograph/internal/store"
)

// TestReindexFile_HashCacheFastPath verifies that a second call on an
// unchanged file does zero extraction/matching work and reports Unchanged.
func TestReindexFile_HashCacheFastPath(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "sample.go")
	require.NoError(t, os.WriteFile(filePath, []byte("package sample\n\nfunc Helper() {}\n"), 0o644))

	st, err := store.Open("mem")
	require.NoError(t, err)
	defer st.Close()

	core, err := New(st, filepath.Join(dir, "manifest.json"), nil)
	require.NoError(t, err)

	res1, err := core.ReindexFile(context.Background(), "sample.go", filePath, model.LangGo)
	require.NoError(t, err)
	assert.False(t, res1.Unchanged)
	assert.Equal(t, 1, res1.EntitiesAdded)

	res2, err := core.ReindexFile(context.Background(), "sample.go", filePath, model.LangGo)
	require.NoError(t, err)
	assert.True(t, res2.Unchanged)
	assert.Zero(t, res2.EntitiesAdded)
}

// TestReindexFile_PreservesEntityAcrossLineShift covers the matcher's
// position/content preservation: inserting a line above Helper shifts its
// LineStart but must not register as added+removed.
func TestReindexFile_PreservesEntityAcrossLineShift(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "sample.go")
	require.NoError(t, os.WriteFile(filePath, []byte("package sample\n\nfunc Helper() {}\n"), 0o644))

	st, err := store.Open("mem")
	require.NoError(t, err)
	defer st.Close()

	core, err := New(st, filepath.Join(dir, "manifest.json"), nil)
	require.NoError(t, err)

	_, err = core.ReindexFile(context.Background(), "sample.go", filePath, model.LangGo)
	require.NoError(t, err)

	shifted := "package sample\n\n// a leading comment shifts everything below\nfunc Helper() {}\n"
	require.NoError(t, os.WriteFile(filePath, []byte(shifted), 0o644))

	res, err := core.ReindexFile(context.Background(), "sample.go", filePath, model.LangGo)
	require.NoError(t, err)
	assert.False(t, res.Unchanged)
	assert.Equal(t, 0, res.EntitiesAdded)
	assert.Equal(t, 0, res.EntitiesRemoved)
	assert.Equal(t, 1, res.PreservedByContent)
}

func TestRemoveFile_ReportsEntitiesRemoved(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "sample.go")
	require.NoError(t, os.WriteFile(filePath, []byte("package sample\n\nfunc Helper() {}\n"), 0o644))

	st, err := store.Open("mem")
	require.NoError(t, err)
	defer st.Close()

	core, err := New(st, filepath.Join(dir, "manifest.json"), nil)
	require.NoError(t, err)

	_, err = core.ReindexFile(context.Background(), "sample.go", filePath, model.LangGo)
	require.NoError(t, err)

	res, err := core.RemoveFile("sample.go")
	require.NoError(t, err)
	assert.Equal(t, 1, res.EntitiesRemoved)
}
