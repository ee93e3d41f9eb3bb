// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store is the store adapter: it opens the embedded Datalog/graph
// store behind a <backend>[:<path>] URI, owns the ISGL1 relation schema,
// and writes entities/edges/coverage in chunked batches.
//
// It is built on internal/cozodb, the CGO binding to CozoDB, against a
// language-agnostic CodeGraph/DependencyEdges/coverage relation set
// rather than per-language tables.
package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kraklabs/isograph/internal/cozodb"
	"github.com/kraklabs/isograph/internal/errs"
	"github.com/kraklabs/isograph/internal/model"
)

// chunkSize is the default batch size for relation writes.
const chunkSize = 500

// Store is the embedded graph/Datalog store adapter.
type Store struct {
	db     cozodb.DB
	engine string
	path   string
}

// Open parses a <backend>[:<path>] URI and opens the corresponding
// CozoDB engine.
//
// Recognized backends: "mem" (no path), "sqlite:<path>", "rocksdb:<path>".
// "sled:<path>" is accepted syntactically and passed through verbatim as
// the engine string to the linked cozo_c build: CozoDB's own engine set is
// mem/sqlite/rocksdb, with no native sled support, so rather than hand-roll
// a fourth storage engine nowhere present in the ecosystem this adapter
// defers to the C library's own "unknown engine" error, surfaced here as a
// ConfigError, if the linked build lacks it.
func Open(uri string) (*Store, error) {
	engine, path, err := parseURI(uri)
	if err != nil {
		return nil, err
	}

	db, err := cozodb.Open(engine, path, nil)
	if err != nil {
		kind := errs.KindStore
		if engine == "sled" {
			kind = errs.KindConfig
		}
		return nil, errs.New(kind, "store.Open", fmt.Sprintf("opening %s engine", engine), err)
	}

	s := &Store{db: db, engine: engine, path: path}
	if _, err := s.db.Run(datalogSchema, nil); err != nil {
		return nil, errs.New(errs.KindStore, "store.Open", "creating schema", err)
	}
	return s, nil
}

func parseURI(uri string) (engine, path string, err error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return "", "", errs.New(errs.KindConfig, "store.parseURI", "empty store URI", nil)
	}
	if uri == "mem" {
		return "mem", "", nil
	}
	idx := strings.Index(uri, ":")
	if idx < 0 {
		return "", "", errs.New(errs.KindConfig, "store.parseURI", fmt.Sprintf("URI %q has no <backend>: prefix", uri), nil)
	}
	backend, rest := uri[:idx], uri[idx+1:]
	switch backend {
	case "sqlite", "rocksdb", "sled":
		if rest == "" {
			return "", "", errs.New(errs.KindConfig, "store.parseURI", fmt.Sprintf("backend %q requires a path", backend), nil)
		}
		return backend, rest, nil
	case "mem":
		return "mem", "", nil
	default:
		return "", "", errs.New(errs.KindConfig, "store.parseURI", fmt.Sprintf("unknown store backend %q", backend), nil)
	}
}

// Close releases the underlying database handle.
func (s *Store) Close() { s.db.Close() }

// escape applies store-write-time escaping, a concern distinct from
// identity sanitization (internal/identity.Sanitize): every string field
// gets its backslashes
// and single quotes escaped immediately before being embedded in a
// CozoScript literal. Sanitization rewrites a *name* at entity-creation
// time so it is a legal ISGL1 token; escaping protects the *query text*
// at write time and applies to every string field, sanitized or not.
func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return s
}

func quote(s string) string { return "'" + escape(s) + "'" }

// InsertEntities writes CodeGraph rows in chunks of chunkSize.
func (s *Store) InsertEntities(runID string, entities []model.CodeEntity) error {
	for i := 0; i < len(entities); i += chunkSize {
		end := i + chunkSize
		if end > len(entities) {
			end = len(entities)
		}
		if err := s.insertEntityChunk(runID, entities[i:end], i/chunkSize); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) insertEntityChunk(runID string, chunk []model.CodeEntity, chunkIdx int) error {
	var b strings.Builder
	b.WriteString("?[key, name, entity_type, entity_class, language, file_path, line_start, line_end, content_hash, semantic_path, root_subfolder_l1, root_subfolder_l2, signature, run_id] <- [\n")
	for i, e := range chunk {
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "[%s, %s, %s, %s, %s, %s, %d, %d, %s, %s, %s, %s, %s, %s]",
			quote(e.ISGL1Key()), quote(e.Name), quote(string(e.EntityType)), quote(string(e.EntityClass)),
			quote(string(e.Language)), quote(e.FilePath), e.LineStart, e.LineEnd,
			quote(e.ContentHash), quote(e.SemanticPath), quote(e.RootSubfolderL1), quote(e.RootSubfolderL2),
			quote(e.Signature), quote(runID))
	}
	b.WriteString("\n]\n:put CodeGraph { key, name, entity_type, entity_class, language, file_path, line_start, line_end, content_hash, semantic_path, root_subfolder_l1, root_subfolder_l2, signature, run_id }\n")

	if _, err := s.db.Run(b.String(), nil); err != nil {
		return errs.NewStoreChunkError("store.InsertEntities", RelCodeGraph, chunkIdx, err)
	}
	return nil
}

// InsertEdges writes DependencyEdges rows in chunks of chunkSize.
func (s *Store) InsertEdges(runID string, edges []model.DependencyEdge) error {
	for i := 0; i < len(edges); i += chunkSize {
		end := i + chunkSize
		if end > len(edges) {
			end = len(edges)
		}
		if err := s.insertEdgeChunk(runID, edges[i:end], i/chunkSize); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) insertEdgeChunk(runID string, chunk []model.DependencyEdge, chunkIdx int) error {
	var b strings.Builder
	b.WriteString("?[from_key, to_key, edge_type, source_file, source_line, run_id] <- [\n")
	for i, e := range chunk {
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "[%s, %s, %s, %s, %d, %s]",
			quote(e.FromKey.Format()), quote(e.ToKey.Format()), quote(string(e.EdgeType)),
			quote(e.SourceLocation.FilePath), e.SourceLocation.Line, quote(runID))
	}
	b.WriteString("\n]\n:put DependencyEdges { from_key, to_key, edge_type, source_file, source_line, run_id }\n")

	if _, err := s.db.Run(b.String(), nil); err != nil {
		return errs.NewStoreChunkError("store.InsertEdges", RelDependencyEdges, chunkIdx, err)
	}
	return nil
}

// InsertFileCoverage writes IngestionCoverageFiles rows in chunks.
func (s *Store) InsertFileCoverage(runID string, records []model.FileCoverage) error {
	for i := 0; i < len(records); i += chunkSize {
		end := i + chunkSize
		if end > len(records) {
			end = len(records)
		}
		if err := s.insertFileCoverageChunk(runID, records[i:end], i/chunkSize); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) insertFileCoverageChunk(runID string, chunk []model.FileCoverage, chunkIdx int) error {
	var b strings.Builder
	b.WriteString("?[run_id, file_path, status, language, entities, edges, size_bytes, error_message, parse_duration_ms] <- [\n")
	for i, c := range chunk {
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "[%s, %s, %s, %s, %d, %d, %d, %s, %d]",
			quote(runID), quote(c.FilePath), quote(string(c.Status)), quote(string(c.Language)),
			c.Entities, c.Edges, c.SizeBytes, quote(c.ErrorMessage), c.ParseDuration.Milliseconds())
	}
	b.WriteString("\n]\n:put IngestionCoverageFiles { run_id, file_path, status, language, entities, edges, size_bytes, error_message, parse_duration_ms }\n")

	if _, err := s.db.Run(b.String(), nil); err != nil {
		return errs.NewStoreChunkError("store.InsertFileCoverage", RelIngestionCoverageFiles, chunkIdx, err)
	}
	return nil
}

// InsertFolderCoverage writes IngestionCoverageFolders rows. Folder counts
// are few relative to file/entity counts, so there is no chunk-index
// tracking here; a failure always reports chunk 0.
func (s *Store) InsertFolderCoverage(runID string, records []model.FolderCoverage) error {
	if len(records) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("?[run_id, folder_path, folder_depth, total, eligible, parsed, failed, excluded, binary, entities, edges, languages, coverage_percent, entity_density] <- [\n")
	for i, c := range records {
		if i > 0 {
			b.WriteString(",\n")
		}
		langs := make([]string, len(c.Languages))
		for j, l := range c.Languages {
			langs[j] = string(l)
		}
		fmt.Fprintf(&b, "[%s, %s, %d, %d, %d, %d, %d, %d, %d, %d, %d, %s, %s, %s]",
			quote(runID), quote(c.FolderPath), int(c.FolderDepth), c.Total, c.Eligible, c.Parsed,
			c.Failed, c.Excluded, c.Binary, c.Entities, c.Edges,
			quote(strings.Join(langs, ",")), floatLit(c.CoveragePercent), floatLit(c.EntityDensity))
	}
	b.WriteString("\n]\n:put IngestionCoverageFolders { run_id, folder_path, folder_depth, total, eligible, parsed, failed, excluded, binary, entities, edges, languages, coverage_percent, entity_density }\n")

	if _, err := s.db.Run(b.String(), nil); err != nil {
		return errs.NewStoreChunkError("store.InsertFolderCoverage", RelIngestionCoverageFolders, 0, err)
	}
	return nil
}

// InsertGlobalCoverage writes the single IngestionCoverageGlobal row for a run.
func (s *Store) InsertGlobalCoverage(g model.GlobalCoverage) error {
	langs := make([]string, len(g.Languages))
	for i, l := range g.Languages {
		langs[i] = string(l)
	}
	script := fmt.Sprintf(`?[run_id, total, eligible, parsed, failed, excluded, binary, too_large, unsupported_languages, entities, edges, languages, unsupported_extensions, duration_ms, timestamp, error_log_path] <- [[%s, %d, %d, %d, %d, %d, %d, %d, %d, %d, %d, %s, %s, %d, %s, %s]]
:put IngestionCoverageGlobal { run_id, total, eligible, parsed, failed, excluded, binary, too_large, unsupported_languages, entities, edges, languages, unsupported_extensions, duration_ms, timestamp, error_log_path }
`,
		quote(g.RunID), g.Total, g.Eligible, g.Parsed, g.Failed, g.Excluded, g.Binary, g.TooLarge,
		g.UnsupportedLanguages, g.Entities, g.Edges, quote(strings.Join(langs, ",")),
		quote(strings.Join(g.UnsupportedExtensions, ",")), g.Duration.Milliseconds(),
		quote(g.Timestamp.Format("2006-01-02T15:04:05Z07:00")), quote(g.ErrorLogPath))

	if _, err := s.db.Run(script, nil); err != nil {
		return errs.NewStoreChunkError("store.InsertGlobalCoverage", RelIngestionCoverageGlobal, 0, err)
	}
	return nil
}

// DeleteEntitiesForFile removes every CodeGraph row whose file_path
// matches, used by the re-index core before re-inserting a changed file's
// surviving entities.
func (s *Store) DeleteEntitiesForFile(filePath string) error {
	script := fmt.Sprintf(`
?[key] := *CodeGraph{key, file_path: %s}
:rm CodeGraph { key }
`, quote(filePath))
	if _, err := s.db.Run(script, nil); err != nil {
		return errs.New(errs.KindStore, "store.DeleteEntitiesForFile", filePath, err)
	}
	return nil
}

// DeleteEdgesForFile removes every DependencyEdges row whose source_file
// matches, the re-index core's counterpart to DeleteEntitiesForFile: one
// call clears both a changed file's stale edges and a deleted file's
// edges, without needing the caller to enumerate from-keys first.
func (s *Store) DeleteEdgesForFile(filePath string) error {
	script := fmt.Sprintf(`
?[from_key, to_key, edge_type, source_file, source_line] := *DependencyEdges{from_key, to_key, edge_type, source_file, source_line}, source_file = %s
:rm DependencyEdges { from_key, to_key, edge_type, source_file, source_line }
`, quote(filePath))
	if _, err := s.db.Run(script, nil); err != nil {
		return errs.New(errs.KindStore, "store.DeleteEdgesForFile", filePath, err)
	}
	return nil
}

// RawQuery runs an arbitrary read-only CozoScript query, the escape hatch
// a thin CLI query subcommand sits on top of.
func (s *Store) RawQuery(script string) (cozodb.NamedRows, error) {
	rows, err := s.db.RunReadOnly(script, nil)
	if err != nil {
		return cozodb.NamedRows{}, errs.New(errs.KindStore, "store.RawQuery", "query failed", err)
	}
	return rows, nil
}

// BackupToSQLiteFile writes a full database backup to outPath, regardless
// of the store's own engine.
func (s *Store) BackupToSQLiteFile(outPath string) error {
	if err := s.db.Backup(outPath); err != nil {
		return errs.New(errs.KindStore, "store.BackupToSQLiteFile", outPath, err)
	}
	return nil
}

func floatLit(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
