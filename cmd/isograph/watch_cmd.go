// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/isograph/internal/reindex"
	"github.com/kraklabs/isograph/internal/store"
	"github.com/kraklabs/isograph/internal/watch"
)

// runWatch starts the live file-change watcher and keeps the process alive
// until interrupted. The watcher value itself is kept alive for the whole
// command's lifetime — dropping it early would silently kill event
// delivery, since it owns the kernel watch handle.
func runWatch(args []string, configPath string, globals globalFlags) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	debug := fs.Bool("debug", false, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg := loadOrDefaultConfig(configPath, globals)
	logger := newLogger(*debug)

	st, err := store.Open(cfg.DB)
	fatalIfErr(err, globals)
	defer st.Close()

	core, err := reindex.New(st, manifestPath(cfg.Root), logger)
	fatalIfErr(err, globals)

	w := watch.New(cfg.Root, time.Duration(cfg.DebounceMs)*time.Millisecond, cfg.WatchExtensions, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = w.Start(ctx, func(paths []string) {
		for _, absPath := range paths {
			if _, statErr := os.Stat(absPath); os.IsNotExist(statErr) {
				normalized, _, classifyErr := classifyPath(cfg.Root, absPath)
				if classifyErr != nil {
					continue
				}
				if res, rmErr := core.RemoveFile(normalized); rmErr == nil {
					logger.Info("watch.file_removed", "path", normalized, "entities_removed", res.EntitiesRemoved)
				}
				continue
			}
			normalized, lang, classifyErr := classifyPath(cfg.Root, absPath)
			if classifyErr != nil {
				continue
			}
			res, reErr := core.ReindexFile(ctx, normalized, absPath, lang)
			if reErr != nil {
				logger.Warn("watch.reindex_failed", "path", normalized, "err", reErr)
				continue
			}
			if !res.Unchanged {
				logger.Info("watch.reindexed", "path", normalized, "added", res.EntitiesAdded, "removed", res.EntitiesRemoved)
			}
		}
		if err := core.SaveManifest(); err != nil {
			logger.Warn("watch.manifest_save_failed", "err", err)
		}
	})
	fatalIfErr(err, globals)

	fmt.Printf("watching %s (debounce %dms)\n", cfg.Root, cfg.DebounceMs)
	<-ctx.Done()
	_ = w.Stop()
}
