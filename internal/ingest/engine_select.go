// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingest

import "path/filepath"

// SelectEngineURI picks a default store URI for dbDir given the running
// platform. This is a driver-level policy, not a store contract, so it
// lives here rather than in internal/store, and a caller is always free
// to override it with an explicit config.DB URI.
//
// rocksdb is the default persistent engine for single-machine indexing.
// Windows has a rockier cgo/rocksdb build story in CI, so sqlite is
// preferred there instead; it is the same CozoDB engine set, just a
// safer default.
func SelectEngineURI(goos, dbDir string) string {
	if dbDir == "" {
		return "mem"
	}
	switch goos {
	case "windows":
		return "sqlite:" + filepath.ToSlash(dbDir)
	default:
		return "rocksdb:" + filepath.ToSlash(dbDir)
	}
}
