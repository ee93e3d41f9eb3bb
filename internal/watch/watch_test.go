// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FallsBackToDefaultDebounce(t *testing.T) {
	w := New(t.TempDir(), 0, []string{".go"}, nil)
	assert.Equal(t, DefaultDebounce, w.debounce)
}

func TestInteresting_EmptyExtensionsMatchesEverything(t *testing.T) {
	w := New(t.TempDir(), time.Millisecond, nil, nil)
	assert.True(t, w.interesting("/any/path/README.md"))
}

func TestInteresting_FiltersByExtensionCaseInsensitive(t *testing.T) {
	w := New(t.TempDir(), time.Millisecond, []string{".go"}, nil)
	assert.True(t, w.interesting("/repo/main.GO"))
	assert.False(t, w.interesting("/repo/README.md"))
}

func TestAddDirsRecursive_SkipsDefaultAndDotDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "vendor", "pkg"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))

	w := New(root, time.Millisecond, []string{".go"}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx, func(paths []string) {}))
	defer w.Stop()

	assert.True(t, w.Running())
	watched := w.fsw.WatchList()
	assert.Contains(t, watched, filepath.Join(root, "src"))
	assert.NotContains(t, watched, filepath.Join(root, "vendor"))
	assert.NotContains(t, watched, filepath.Join(root, ".git"))
}

func TestStartStop_Idempotent(t *testing.T) {
	root := t.TempDir()
	w := New(root, time.Millisecond, []string{".go"}, nil)
	ctx := context.Background()

	require.NoError(t, w.Start(ctx, func(paths []string) {}))
	require.NoError(t, w.Start(ctx, func(paths []string) {}))
	assert.True(t, w.Running())

	require.NoError(t, w.Stop())
	assert.False(t, w.Running())
	require.NoError(t, w.Stop())
}

func TestWatcher_DetectsFileChangeAndDebounces(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "sample.go")
	require.NoError(t, os.WriteFile(target, []byte("package sample\n"), 0o644))

	w := New(root, 20*time.Millisecond, []string{".go"}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan []string, 1)
	require.NoError(t, w.Start(ctx, func(paths []string) {
		select {
		case received <- paths:
		default:
		}
	}))
	defer w.Stop()

	require.NoError(t, os.WriteFile(target, []byte("package sample\n\nfunc Helper() {}\n"), 0o644))

	select {
	case paths := <-received:
		assert.Contains(t, paths, target)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for debounced change notification")
	}
}
