// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package reindex

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/kraklabs/isograph/internal/extractor"
	"github.com/kraklabs/isograph/internal/identity"
	"github.com/kraklabs/isograph/internal/ingest"
	"github.com/kraklabs/isograph/internal/model"
	"github.com/kraklabs/isograph/internal/store"
)

// FileResult reports how many entities were added, removed, or preserved
// (broken down by which tier of the matcher found them), and whether the
// hash-cache fast path fired.
type FileResult struct {
	FilePath       string
	Unchanged      bool // true: hash cache hit, zero store writes, no matching performed
	EntitiesAdded  int
	EntitiesRemoved int
	PreservedByContent int
	PreservedByPosition int
	EdgesWritten   int
	Duration       time.Duration
}

// Core is the incremental re-index engine for one opened store.
type Core struct {
	st       *store.Store
	manifest *Manifest
	manifestPath string
	logger   *slog.Logger
}

func New(st *store.Store, manifestPath string, logger *slog.Logger) (*Core, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m, err := Load(manifestPath)
	if err != nil {
		return nil, err
	}
	return &Core{st: st, manifest: m, manifestPath: manifestPath, logger: logger}, nil
}

// SaveManifest persists the manifest's current state.
func (c *Core) SaveManifest() error { return c.manifest.Save(c.manifestPath) }

// ReindexFile re-indexes exactly one file: the hash-cache fast path runs
// first and performs zero writes when the file's content is unchanged;
// otherwise it falls through to full re-extraction and three-tier
// matching.
func (c *Core) ReindexFile(ctx context.Context, normalizedPath, absPath string, lang model.Language) (*FileResult, error) {
	start := time.Now()

	source, err := os.ReadFile(absPath)
	if err != nil {
		return nil, err
	}
	fileHash := sha256Hex(source)

	cached, hadCache := c.manifest.Get(normalizedPath)
	if hadCache && cached.ContentHash == fileHash {
		return &FileResult{FilePath: normalizedPath, Unchanged: true, Duration: time.Since(start)}, nil
	}

	class := extractor.ClassifyEntityClass(normalizedPath)
	res, err := extractor.Extract(ctx, lang, normalizedPath, source, class)
	if err != nil {
		return nil, err
	}
	for _, d := range res.Diagnostics {
		c.logger.Warn("reindex.extractor.dropped_capture", "file", d.FilePath, "capture", d.Capture, "reason", d.Reason)
	}

	before := make([]identity.Matchable, 0, len(cached.Entities))
	for _, e := range cached.Entities {
		before = append(before, identity.Matchable{
			EntityType: e.EntityType, Name: e.Name, LineStart: e.LineStart, ContentHash: e.ContentHash,
		})
	}
	after := make([]identity.Matchable, 0, len(res.Entities))
	for _, e := range res.Entities {
		after = append(after, identity.Matchable{
			EntityType: string(e.EntityType), Name: e.Name, LineStart: e.LineStart, ContentHash: e.ContentHash,
		})
	}
	matchResult := identity.Match(before, after)

	result := &FileResult{
		FilePath:        normalizedPath,
		EntitiesAdded:   len(matchResult.Added),
		EntitiesRemoved: len(matchResult.Deleted),
	}
	for _, p := range matchResult.Preserved {
		if p.Tier == identity.TierContent {
			result.PreservedByContent++
		} else {
			result.PreservedByPosition++
		}
	}

	if err := c.st.DeleteEntitiesForFile(normalizedPath); err != nil {
		return nil, err
	}
	if err := c.st.DeleteEdgesForFile(normalizedPath); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	if err := c.st.InsertEntities(runID, res.Entities); err != nil {
		return nil, err
	}

	resolved, _ := ingest.ConsolidatePlaceholders(res.Entities, res.Edges)
	if err := c.st.InsertEdges(runID, resolved); err != nil {
		return nil, err
	}
	result.EdgesWritten = len(resolved)

	manifestEntities := make([]EntityManifestEntry, 0, len(res.Entities))
	for _, e := range res.Entities {
		manifestEntities = append(manifestEntities, EntityManifestEntry{
			Key: e.ISGL1Key(), EntityType: string(e.EntityType), Name: e.Name,
			LineStart: e.LineStart, ContentHash: e.ContentHash,
		})
	}
	c.manifest.Set(normalizedPath, FileManifestEntry{ContentHash: fileHash, Entities: manifestEntities})

	result.Duration = time.Since(start)
	return result, nil
}

// RemoveFile handles a deleted file: every entity it defined is gone, and
// the deletion is reported as an unmatched "before" count, not a silent
// drop.
func (c *Core) RemoveFile(normalizedPath string) (*FileResult, error) {
	cached, ok := c.manifest.Get(normalizedPath)
	if !ok {
		return &FileResult{FilePath: normalizedPath, EntitiesRemoved: 0}, nil
	}
	if err := c.st.DeleteEntitiesForFile(normalizedPath); err != nil {
		return nil, err
	}
	if err := c.st.DeleteEdgesForFile(normalizedPath); err != nil {
		return nil, err
	}
	c.manifest.Delete(normalizedPath)
	return &FileResult{FilePath: normalizedPath, EntitiesRemoved: len(cached.Entities)}, nil
}

func sha256Hex(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}
