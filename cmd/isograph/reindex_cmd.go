// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/isograph/internal/errs"
	"github.com/kraklabs/isograph/internal/langs"
	"github.com/kraklabs/isograph/internal/model"
	"github.com/kraklabs/isograph/internal/reindex"
	"github.com/kraklabs/isograph/internal/store"
)

// runReindex re-indexes exactly one file as a synchronous, one-shot
// operation rather than a watcher callback.
func runReindex(args []string, configPath string, globals globalFlags) {
	fs := flag.NewFlagSet("reindex", flag.ExitOnError)
	debug := fs.Bool("debug", false, "Enable debug logging")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: isograph reindex <path>")
		os.Exit(1)
	}

	cfg := loadOrDefaultConfig(configPath, globals)
	logger := newLogger(*debug)

	st, err := store.Open(cfg.DB)
	fatalIfErr(err, globals)
	defer st.Close()

	core, err := reindex.New(st, manifestPath(cfg.Root), logger)
	fatalIfErr(err, globals)

	absPath := fs.Arg(0)
	if !filepath.IsAbs(absPath) {
		absPath = filepath.Join(cfg.Root, absPath)
	}
	normalized, lang, err := classifyPath(cfg.Root, absPath)
	fatalIfErr(err, globals)

	res, err := core.ReindexFile(context.Background(), normalized, absPath, lang)
	fatalIfErr(err, globals)
	fatalIfErr(core.SaveManifest(), globals)

	printReindexResult(res, globals)
}

func printReindexResult(res *reindex.FileResult, globals globalFlags) {
	if globals.JSON {
		fmt.Printf(`{"file":%q,"unchanged":%t,"added":%d,"removed":%d,"preserved_content":%d,"preserved_position":%d,"edges":%d,"duration_ms":%d}`+"\n",
			res.FilePath, res.Unchanged, res.EntitiesAdded, res.EntitiesRemoved,
			res.PreservedByContent, res.PreservedByPosition, res.EdgesWritten, res.Duration.Milliseconds())
		return
	}
	if res.Unchanged {
		fmt.Printf("%s: unchanged (hash cache hit)\n", res.FilePath)
		return
	}
	fmt.Printf("%s: +%d -%d entities (preserved %d by content, %d by position), %d edges, %s\n",
		res.FilePath, res.EntitiesAdded, res.EntitiesRemoved, res.PreservedByContent,
		res.PreservedByPosition, res.EdgesWritten, res.Duration)
}

func manifestPath(root string) string {
	return filepath.Join(root, ".isograph", "manifest.json")
}

// classifyPath normalizes absPath relative to root and resolves its
// language from the extension registry.
func classifyPath(root, absPath string) (normalized string, lang model.Language, err error) {
	rel, relErr := filepath.Rel(root, absPath)
	if relErr != nil {
		return "", "", errs.New(errs.KindIO, "cli.classifyPath", absPath, relErr)
	}
	normalized = filepath.ToSlash(rel)
	l, ok := langs.ForExtension(absPath)
	if !ok {
		return normalized, "", errs.New(errs.KindConfig, "cli.classifyPath", "unsupported extension: "+absPath, nil)
	}
	return normalized, l, nil
}
