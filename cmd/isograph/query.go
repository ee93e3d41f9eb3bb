// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/isograph/internal/store"
)

// runQuery executes a read-only CozoScript query directly against the
// configured store.
func runQuery(args []string, configPath string, globals globalFlags) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: isograph query '<cozoscript>'")
		os.Exit(1)
	}

	cfg := loadOrDefaultConfig(configPath, globals)

	st, err := store.Open(cfg.DB)
	fatalIfErr(err, globals)
	defer st.Close()

	rows, err := st.RawQuery(fs.Arg(0))
	fatalIfErr(err, globals)

	if globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]any{"headers": rows.Headers, "rows": rows.Rows})
		return
	}

	fmt.Println(strings.Join(rows.Headers, "\t"))
	for _, row := range rows.Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = fmt.Sprintf("%v", c)
		}
		fmt.Println(strings.Join(cells, "\t"))
	}
}
