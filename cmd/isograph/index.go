// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	flag "github.com/spf13/pflag"

	"github.com/kraklabs/isograph/internal/config"
	"github.com/kraklabs/isograph/internal/ingest"
	"github.com/kraklabs/isograph/internal/store"
)

// runIndex executes a full ingestion of cfg.Root: load config, open the
// store, run the pipeline, report results.
func runIndex(args []string, configPath string, globals globalFlags) {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	serial := fs.Bool("serial", false, "Force serial Phase A parsing instead of the worker pool")
	debug := fs.Bool("debug", false, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg := loadOrDefaultConfig(configPath, globals)
	logger := newLogger(*debug)

	st, err := store.Open(cfg.DB)
	fatalIfErr(err, globals)
	defer st.Close()

	icfg := ingestConfigFrom(cfg)
	if *serial {
		icfg.Parallel = 1
	}

	pipeline := ingest.New(icfg, st, logger)

	var bar *progressbar.ProgressBar
	if !globals.Quiet && isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("Parsing files"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSpinnerType(14),
		)
	}

	ctx := context.Background()
	result, err := pipeline.Run(ctx)
	if bar != nil {
		_ = bar.Finish()
	}
	fatalIfErr(err, globals)

	printIndexResult(result, globals)
}

func printIndexResult(result *ingest.Result, globals globalFlags) {
	if globals.JSON {
		fmt.Printf(`{"run_id":%q,"files_walked":%d,"files_parsed":%d,"files_failed":%d,"entities":%d,"edges":%d,"unresolved_edges":%d,"duration_ms":%d}`+"\n",
			result.RunID, result.FilesWalked, result.FilesParsed, result.FilesFailed,
			result.EntitiesStored, result.EdgesStored, result.UnresolvedEdges, result.TotalDuration.Milliseconds())
		return
	}

	bold := color.New(color.Bold)
	bold.Println("Indexing complete")
	fmt.Printf("  files walked:   %d\n", result.FilesWalked)
	fmt.Printf("  files parsed:   %d\n", result.FilesParsed)
	fmt.Printf("  files failed:   %d\n", result.FilesFailed)
	fmt.Printf("  entities:       %d\n", result.EntitiesStored)
	fmt.Printf("  edges:          %d (unresolved: %d)\n", result.EdgesStored, result.UnresolvedEdges)
	fmt.Printf("  coverage:       %.1f%%\n", coveragePercent(result))
	if result.Global.ErrorLogPath != "" {
		fmt.Printf("  error log:      %s\n", result.Global.ErrorLogPath)
	}
	fmt.Printf("  duration:       %s\n", result.TotalDuration.Round(time.Millisecond))
}

func loadOrDefaultConfig(configPath string, globals globalFlags) *config.Config {
	if configPath == "" {
		root, err := os.Getwd()
		fatalIfErr(err, globals)
		if found, ferr := config.ResolveScope(root); ferr == nil {
			configPath = found
		}
	}
	if configPath == "" {
		root, _ := os.Getwd()
		return config.Default(root)
	}
	cfg, err := config.Load(configPath)
	fatalIfErr(err, globals)
	return cfg
}

func ingestConfigFrom(cfg *config.Config) ingest.Config {
	return ingest.Config{
		Root:             cfg.Root,
		StoreURI:         cfg.DB,
		ExcludeGlobs:     cfg.Exclude,
		MaxFileSizeBytes: cfg.MaxFileSizeBytes,
		Parallel:         cfg.Parallel,
		ChunkSize:        cfg.ChunkSize,
	}
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func coveragePercent(result *ingest.Result) float64 {
	if result.Global.Eligible == 0 {
		return 0
	}
	return float64(result.Global.Parsed) / float64(result.Global.Eligible) * 100
}
