// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Command isograph is the thin CLI surface over the ingestion/storage
// core: index, reindex, watch, query.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"

	"github.com/kraklabs/isograph/internal/errs"
)

// globalFlags are the flags every subcommand reads regardless of position.
type globalFlags struct {
	JSON    bool
	NoColor bool
	Verbose int
	Quiet   bool
}

func main() {
	var (
		configPath = flag.StringP("config", "c", "", "Path to .isograph/project.yaml (default: nearest .isograph/project.yaml at or above the working directory, else built-in defaults)")
		jsonOutput = flag.Bool("json", false, "Output in JSON format")
		noColor    = flag.Bool("no-color", false, "Disable color output")
		verbose    = flag.CountP("verbose", "v", "Verbosity count (accepted; no subcommand reads it, debug logging is each subcommand's --debug flag)")
		quiet      = flag.BoolP("quiet", "q", false, "Suppress non-essential output")
	)

	flag.SetInterspersed(false)
	flag.Usage = printUsage

	flag.Parse()

	if os.Getenv("NO_COLOR") != "" {
		*noColor = true
	}
	color.NoColor = *noColor

	if *jsonOutput {
		*quiet = true
	}

	globals := globalFlags{JSON: *jsonOutput, NoColor: *noColor, Verbose: *verbose, Quiet: *quiet}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command, cmdArgs := args[0], args[1:]

	switch command {
	case "index":
		runIndex(cmdArgs, *configPath, globals)
	case "reindex":
		runReindex(cmdArgs, *configPath, globals)
	case "watch":
		runWatch(cmdArgs, *configPath, globals)
	case "query":
		runQuery(cmdArgs, *configPath, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `isograph - code intelligence graph ingestion & storage core

Usage:
  isograph <command> [options]

Commands:
  index             Full ingestion of the configured root
  reindex <path>    Incrementally re-index one file
  watch             Watch the root and re-index changed files live
  query <script>    Run a read-only CozoScript query against the store

Global Options:
  -c, --config      Path to .isograph/project.yaml (default: nearest one above the working directory)
  --json            Output in JSON format
  --no-color        Disable color output
  -v, --verbose     Verbosity count (not read by any subcommand; see --debug)
  -q, --quiet       Suppress non-essential output

`)
}

func fatalIfErr(err error, globals globalFlags) {
	if err == nil {
		return
	}
	if se, ok := err.(*errs.Error); ok {
		errs.Fatal(errs.FromKind(se), globals.JSON)
		return
	}
	errs.Fatal(err, globals.JSON)
}
