// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingest

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kraklabs/isograph/internal/langs"
	"github.com/kraklabs/isograph/internal/model"
)

// discoveredFile is one file found during the directory walk, already
// classified but not yet read or parsed.
type discoveredFile struct {
	absPath        string
	normalizedPath string // root-relative, forward-slash
	size           int64
	language       model.Language
	status         model.FileStatus // non-empty only when the file will never reach Phase A
}

// discover walks cfg.Root and classifies every regular file: excluded by
// glob, too large, unsupported extension, or a parse candidate. It never
// opens a file's content except for the binary sniff.
func discover(cfg Config) ([]discoveredFile, error) {
	var out []discoveredFile

	err := filepath.WalkDir(cfg.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(cfg.Root, p)
		if relErr != nil {
			return relErr
		}
		normalized := filepath.ToSlash(rel)
		if normalized == "." {
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if matchesAnyGlob(normalized, cfg.ExcludeGlobs) {
			out = append(out, discoveredFile{absPath: p, normalizedPath: normalized, status: model.StatusExcluded})
			return nil
		}

		info, statErr := d.Info()
		if statErr != nil {
			return statErr
		}
		size := info.Size()

		maxSize := cfg.MaxFileSizeBytes
		if maxSize <= 0 {
			maxSize = DefaultMaxFileSizeBytes
		}
		if size > maxSize {
			out = append(out, discoveredFile{absPath: p, normalizedPath: normalized, size: size, status: model.StatusTooLarge})
			return nil
		}

		lang, ok := langs.ForExtension(normalized)
		if !ok {
			out = append(out, discoveredFile{absPath: p, normalizedPath: normalized, size: size, status: model.StatusUnsupportedLanguage})
			return nil
		}

		if looksBinary(p) {
			out = append(out, discoveredFile{absPath: p, normalizedPath: normalized, size: size, status: model.StatusBinary})
			return nil
		}

		out = append(out, discoveredFile{absPath: p, normalizedPath: normalized, size: size, language: lang})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// looksBinary sniffs the first 512 bytes for a NUL byte, the same
// heuristic git and most language-server file classifiers use.
func looksBinary(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	buf := make([]byte, 512)
	n, _ := f.Read(buf)
	return bytes.IndexByte(buf[:n], 0) >= 0
}

// matchesAnyGlob supports "**" as a path-spanning wildcard in addition to
// filepath.Match's single-segment "*", since exclude patterns like
// ".git/**" and "node_modules/**" rely on it.
func matchesAnyGlob(normalizedPath string, globs []string) bool {
	for _, g := range globs {
		if matchesGlob(normalizedPath, g) {
			return true
		}
	}
	return false
}

func matchesGlob(normalizedPath, pattern string) bool {
	if strings.HasSuffix(pattern, "/**") {
		prefix := strings.TrimSuffix(pattern, "/**")
		return normalizedPath == prefix || strings.HasPrefix(normalizedPath, prefix+"/")
	}
	if strings.Contains(pattern, "**") {
		parts := strings.SplitN(pattern, "**", 2)
		if !strings.HasPrefix(normalizedPath, parts[0]) {
			return false
		}
		suffix := strings.TrimPrefix(parts[1], "/")
		if suffix == "" {
			return true
		}
		segs := strings.Split(strings.TrimPrefix(normalizedPath, parts[0]), "/")
		for i := range segs {
			if ok, _ := filepath.Match(suffix, strings.Join(segs[i:], "/")); ok {
				return true
			}
		}
		return false
	}
	ok, _ := filepath.Match(pattern, normalizedPath)
	if ok {
		return true
	}
	// Also try matching the pattern against each path segment, so
	// "node_modules" alone (no slash, no **) still excludes the subtree.
	if !strings.Contains(pattern, "/") {
		for _, seg := range strings.Split(normalizedPath, "/") {
			if ok, _ := filepath.Match(pattern, seg); ok {
				return true
			}
		}
	}
	return false
}
