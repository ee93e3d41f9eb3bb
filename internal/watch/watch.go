// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package watch implements a file-change watcher: a kernel event source
// (fsnotify) feeds a debouncer that coalesces a burst of writes into one
// batch, which is handed to a worker over a bounded, non-blocking channel
// that invokes re-index.
//
// The recursive-add/skip-dir/debounce-timer shape is built as a
// standalone, reusable type rather than a function closing over other
// process state, with a short ~100ms debounce window — a parse-only core
// reindexes fast enough to afford it — and default skip dirs covering
// every watched language's usual build/vendor output.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the target event-coalescing window.
const DefaultDebounce = 100 * time.Millisecond

// defaultSkipDirs are never descended into, regardless of extension
// filtering.
var defaultSkipDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true,
	"dist": true, "build": true, "bin": true, "target": true,
	"__pycache__": true, ".isograph": true,
}

// Watcher owns exactly one fsnotify.Watcher kernel handle for its
// lifetime. Callers must keep the Watcher itself alive in long-lived
// shared state — not just a channel or callback derived from it — since
// destruction on scope exit silently kills event delivery.
type Watcher struct {
	root       string
	debounce   time.Duration
	extensions map[string]bool
	logger     *slog.Logger

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	// changed is the bounded, non-blocking channel of debounced batches.
	// A worker that falls behind drops the oldest pending batch rather
	// than blocking event delivery.
	changed chan map[string]struct{}
}

// New creates a Watcher rooted at root. extensions is the set of file
// extensions (e.g. ".go", ".py") worth watching; everything else is
// ignored at the debounce stage so a reindex is never triggered by a
// touched README.
func New(root string, debounce time.Duration, extensions []string, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	extSet := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		extSet[strings.ToLower(e)] = true
	}
	return &Watcher{
		root:       root,
		debounce:   debounce,
		extensions: extSet,
		logger:     logger,
		changed:    make(chan map[string]struct{}, 1),
	}
}

// Running reports whether the watcher is currently delivering events — a
// weak status accessor, safe to poll from a status command without
// touching the kernel handle.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Start opens the kernel watch, adds every non-skipped directory under
// root recursively, and launches the debounce/dispatch goroutines. handler
// is invoked by the cooperative worker with the set of changed file paths
// whenever the debounce window closes.
func (w *Watcher) Start(ctx context.Context, handler func(paths []string)) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.fsw = fsw
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true
	w.mu.Unlock()

	watched, skipped := w.addDirsRecursive(w.root)
	w.logger.Info("watch.started", "root", w.root, "dirs_watched", watched, "dirs_skipped", skipped)

	go w.debounceLoop()
	go w.dispatchLoop(ctx, handler)

	return nil
}

// Stop waits for the debounce goroutine to exit and then closes the kernel
// handle. It does not wait for the dispatch goroutine: that one returns on
// its next select, after any handler call already in progress finishes.
// The caller is responsible for not calling Start again concurrently.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	close(w.stopCh)
	fsw := w.fsw
	w.mu.Unlock()

	<-w.doneCh
	err := fsw.Close()

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
	return err
}

func (w *Watcher) addDirsRecursive(root string) (watched, skipped int) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsPermission(err) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if defaultSkipDirs[base] || (strings.HasPrefix(base, ".") && path != root) {
			skipped++
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("watch.add_dir_failed", "path", path, "err", err)
			if os.IsPermission(err) {
				return filepath.SkipDir
			}
			return nil
		}
		watched++
		return nil
	})
	return watched, skipped
}

// debounceLoop is the kernel-event-source-to-debouncer half: it collects
// fsnotify events into a set of changed paths and, ~debounce after the
// last event, pushes the batch onto the bounded channel.
func (w *Watcher) debounceLoop() {
	defer close(w.doneCh)

	pending := map[string]struct{}{}
	var timer *time.Timer
	var timerCh <-chan time.Time

	flush := func() {
		if len(pending) == 0 {
			return
		}
		batch := pending
		pending = map[string]struct{}{}
		select {
		case w.changed <- batch:
		default:
			// Bounded channel full: drop the oldest pending batch so event
			// delivery never blocks.
			select {
			case <-w.changed:
			default:
			}
			w.changed <- batch
		}
	}

	for {
		select {
		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.interesting(event.Name) {
				continue
			}
			pending[event.Name] = struct{}{}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			timerCh = timer.C
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch.fsnotify_error", "err", err)
		case <-timerCh:
			timerCh = nil
			flush()
		}
	}
}

func (w *Watcher) interesting(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	return w.extensions[strings.ToLower(filepath.Ext(path))]
}

// dispatchLoop is the cooperative-scheduler worker: it blocks on the
// bounded channel and invokes handler for every debounced batch, serially
// — a second batch never runs re-index concurrently with the first.
func (w *Watcher) dispatchLoop(ctx context.Context, handler func(paths []string)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case batch, ok := <-w.changed:
			if !ok {
				return
			}
			paths := make([]string, 0, len(batch))
			for p := range batch {
				paths = append(paths, p)
			}
			handler(paths)
		}
	}
}
