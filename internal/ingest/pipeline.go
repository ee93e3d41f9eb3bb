// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kraklabs/isograph/internal/coverage"
	"github.com/kraklabs/isograph/internal/extractor"
	"github.com/kraklabs/isograph/internal/identity"
	"github.com/kraklabs/isograph/internal/model"
	"github.com/kraklabs/isograph/internal/store"
)

// Result summarizes one ingestion run: counts, error rates, and phase
// durations, plus the coverage rollups computed from the same run.
type Result struct {
	RunID          string
	FilesWalked    int
	FilesParsed    int
	FilesFailed    int
	EntitiesStored int
	EdgesStored    int
	UnresolvedEdges int
	ParseDuration  time.Duration
	CommitDuration time.Duration
	TotalDuration  time.Duration
	Global         model.GlobalCoverage
	Folders        []model.FolderCoverage
}

// Pipeline runs the two-phase ingestion process against one opened store.
type Pipeline struct {
	cfg    Config
	st     *store.Store
	logger *slog.Logger
}

func New(cfg Config, st *store.Store, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	ingMetrics.init()
	return &Pipeline{cfg: cfg, st: st, logger: logger}
}

// fileParseOutcome is what one Phase A worker produces for one file.
type fileParseOutcome struct {
	file    discoveredFile
	result  *extractor.Result
	err     error
	elapsed time.Duration
}

// Run executes a full (non-incremental) ingestion of cfg.Root.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()

	files, err := discover(p.cfg)
	if err != nil {
		return nil, fmt.Errorf("ingest: discover: %w", err)
	}

	acc := coverage.NewAccumulator(runID)

	var toParse []discoveredFile
	for _, f := range files {
		ingMetrics.filesDiscovered.Inc()
		if f.status != "" {
			acc.Add(model.FileCoverage{FilePath: f.normalizedPath, Status: f.status, Language: f.language, SizeBytes: f.size})
			switch f.status {
			case model.StatusExcluded:
				ingMetrics.filesExcluded.Inc()
			case model.StatusBinary:
				ingMetrics.filesBinary.Inc()
			}
			continue
		}
		toParse = append(toParse, f)
	}

	parseStart := time.Now()
	outcomes := p.parseParallel(ctx, toParse)
	parseDuration := time.Since(parseStart)
	ingMetrics.parseDuration.Observe(parseDuration.Seconds())

	var allEntities []model.CodeEntity
	var allEdges []model.DependencyEdge
	filesParsed, filesFailed := 0, 0

	for _, o := range outcomes {
		if o.err != nil {
			filesFailed++
			ingMetrics.filesFailed.Inc()
			acc.Add(model.FileCoverage{
				FilePath: o.file.normalizedPath, Status: model.StatusFailed, Language: o.file.language,
				SizeBytes: o.file.size, ErrorMessage: o.err.Error(), ParseDuration: o.elapsed, RunID: runID,
			})
			continue
		}
		filesParsed++
		ingMetrics.filesParsed.Inc()
		for _, d := range o.result.Diagnostics {
			p.logger.Warn("ingest.extractor.dropped_capture", "file", d.FilePath, "capture", d.Capture, "reason", d.Reason)
		}
		allEntities = append(allEntities, o.result.Entities...)
		allEdges = append(allEdges, o.result.Edges...)
		acc.Add(model.FileCoverage{
			FilePath: o.file.normalizedPath, Status: model.StatusParsed, Language: o.file.language,
			Entities: len(o.result.Entities), Edges: len(o.result.Edges), SizeBytes: o.file.size,
			ParseDuration: o.elapsed, RunID: runID,
		})
	}
	ingMetrics.entitiesExtracted.Add(float64(len(allEntities)))
	ingMetrics.edgesExtracted.Add(float64(len(allEdges)))

	commitStart := time.Now()
	resolved, unresolvedCount := ConsolidatePlaceholders(allEntities, allEdges)
	ingMetrics.edgesResolved.Add(float64(len(resolved) - unresolvedCount))
	ingMetrics.edgesUnresolved.Add(float64(unresolvedCount))

	if err := p.st.InsertEntities(runID, allEntities); err != nil {
		ingMetrics.chunkFailures.Inc()
		return nil, err
	}
	ingMetrics.batchesSent.Inc()
	if err := p.st.InsertEdges(runID, resolved); err != nil {
		ingMetrics.chunkFailures.Inc()
		return nil, err
	}
	ingMetrics.batchesSent.Inc()

	folders := acc.FolderRollups(
		func(fp string) string { return extractor.Subfolder(fp, 1) },
		func(fp string) string { return extractor.Subfolder(fp, 2) },
	)
	if err := p.st.InsertFolderCoverage(runID, folders); err != nil {
		return nil, err
	}
	if err := p.st.InsertFileCoverage(runID, acc.Files()); err != nil {
		return nil, err
	}

	global := acc.Global()
	global.Duration = time.Since(start)
	global.Timestamp = timeNow()
	if global.Failed > 0 {
		global.ErrorLogPath = errorLogPath(p.cfg.Root, runID)
		p.writeErrorLog(global.ErrorLogPath, outcomes)
	}
	if err := p.st.InsertGlobalCoverage(global); err != nil {
		return nil, err
	}
	commitDuration := time.Since(commitStart)
	ingMetrics.commitDuration.Observe(commitDuration.Seconds())

	total := time.Since(start)
	ingMetrics.totalDuration.Observe(total.Seconds())

	return &Result{
		RunID:           runID,
		FilesWalked:     len(files),
		FilesParsed:     filesParsed,
		FilesFailed:     filesFailed,
		EntitiesStored:  len(allEntities),
		EdgesStored:     len(resolved),
		UnresolvedEdges: unresolvedCount,
		ParseDuration:   parseDuration,
		CommitDuration:  commitDuration,
		TotalDuration:   total,
		Global:          global,
		Folders:         folders,
	}, nil
}

// parseParallel is Phase A: a fixed pool of workers reading files with
// blocking I/O and pulling indices off a shared jobs channel. Each file is
// parsed by extractor.Extract with a tree-sitter parser it acquires for
// that one file, so no parser is ever shared between workers.
func (p *Pipeline) parseParallel(ctx context.Context, files []discoveredFile) []fileParseOutcome {
	if len(files) == 0 {
		return nil
	}
	numWorkers := p.cfg.workerCount()
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	jobs := make(chan int, len(files))
	results := make(chan fileParseOutcome, len(files))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				f := files[i]
				start := time.Now()
				source, err := os.ReadFile(f.absPath)
				if err != nil {
					results <- fileParseOutcome{file: f, err: err, elapsed: time.Since(start)}
					continue
				}
				class := extractor.ClassifyEntityClass(f.normalizedPath)
				res, err := extractor.Extract(ctx, f.language, f.normalizedPath, source, class)
				results <- fileParseOutcome{file: f, result: res, err: err, elapsed: time.Since(start)}
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	outcomes := make([]fileParseOutcome, 0, len(files))
	for o := range results {
		outcomes = append(outcomes, o)
	}
	return outcomes
}

// ConsolidatePlaceholders resolves same-run unresolved-reference
// placeholders: any reference whose target name matches an entity
// extracted elsewhere in this same run is rewired to that entity's real
// key. Everything else keeps pointing at its identity.Unresolved
// placeholder key, which is the expected terminal state for genuinely
// external references.
func ConsolidatePlaceholders(entities []model.CodeEntity, edges []model.DependencyEdge) ([]model.DependencyEdge, int) {
	byName := make(map[string]identity.Key, len(entities))
	for _, e := range entities {
		k := string(e.Language) + "\x00" + identity.Sanitize(e.Name)
		if _, exists := byName[k]; !exists {
			byName[k] = e.Key
		}
	}

	unresolved := 0
	out := make([]model.DependencyEdge, len(edges))
	for i, e := range edges {
		out[i] = e
		if !e.ToKey.IsUnresolved() {
			continue
		}
		name := refNameFromUnresolved(e.ToKey)
		lang := refLanguageFromEdge(entities, e)
		if target, ok := byName[lang+"\x00"+name]; ok {
			out[i].ToKey = target
			continue
		}
		unresolved++
	}
	return out, unresolved
}

// refNameFromUnresolved recovers the reference name identity.Unresolved
// encoded into the sanitized-name field of its placeholder key.
func refNameFromUnresolved(k identity.Key) string { return k.SanitizedName }

func refLanguageFromEdge(entities []model.CodeEntity, e model.DependencyEdge) string {
	for _, ent := range entities {
		if ent.Key == e.FromKey {
			return string(ent.Language)
		}
	}
	return ""
}

func timeNow() time.Time { return time.Now() }

func errorLogPath(root, runID string) string {
	return root + "/.isograph/errors-" + runID + ".log"
}

func (p *Pipeline) writeErrorLog(path string, outcomes []fileParseOutcome) {
	var b []byte
	for _, o := range outcomes {
		if o.err == nil {
			continue
		}
		b = append(b, []byte(fmt.Sprintf("%s: %v\n", o.file.normalizedPath, o.err))...)
	}
	if len(b) == 0 {
		return
	}
	if err := os.MkdirAll(dirOf(path), 0o755); err != nil {
		p.logger.Warn("ingest.error_log.mkdir_failed", "path", path, "err", err)
		return
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		p.logger.Warn("ingest.error_log.write_failed", "path", path, "err", err)
	}
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}
