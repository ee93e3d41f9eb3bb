// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package coverage aggregates per-file coverage records into per-folder
// (depth 1 and 2) and per-run global summaries.
package coverage

import (
	"sort"

	"github.com/kraklabs/isograph/internal/model"
)

// Accumulator collects FileCoverage records for one run and produces the
// folder and global rollups on demand. It enforces parsed ≤ eligible ≤
// total at every aggregation level.
type Accumulator struct {
	runID string
	files []model.FileCoverage
}

func NewAccumulator(runID string) *Accumulator {
	return &Accumulator{runID: runID}
}

func (a *Accumulator) Add(fc model.FileCoverage) {
	fc.RunID = a.runID
	a.files = append(a.files, fc)
}

func (a *Accumulator) Files() []model.FileCoverage { return a.files }

// isEligible reports whether a file counts toward the "eligible"
// denominator: everything except files excluded by config and binary
// files, neither of which were ever candidates for parsing.
func isEligible(status model.FileStatus) bool {
	return status != model.StatusExcluded && status != model.StatusBinary
}

type folderKey struct {
	path  string
	depth model.FolderDepth
}

// FolderRollups aggregates a's files by (RootSubfolder, depth) — the
// caller supplies the subfolder for each file since FileCoverage itself
// doesn't carry one; ingest passes extractor.Subfolder, which derives it
// from the project-relative path.
func (a *Accumulator) FolderRollups(subfolderL1, subfolderL2 func(filePath string) string) []model.FolderCoverage {
	agg := map[folderKey]*model.FolderCoverage{}
	langSeen := map[folderKey]map[model.Language]bool{}

	bump := func(key folderKey, fc model.FileCoverage) {
		fco, ok := agg[key]
		if !ok {
			fco = &model.FolderCoverage{FolderPath: key.path, FolderDepth: key.depth, RunID: a.runID}
			agg[key] = fco
			langSeen[key] = map[model.Language]bool{}
		}
		fco.Total++
		if isEligible(fc.Status) {
			fco.Eligible++
		}
		switch fc.Status {
		case model.StatusParsed:
			fco.Parsed++
		case model.StatusFailed:
			fco.Failed++
		case model.StatusExcluded:
			fco.Excluded++
		case model.StatusBinary:
			fco.Binary++
		}
		fco.Entities += fc.Entities
		fco.Edges += fc.Edges
		if fc.Language != "" {
			langSeen[key][fc.Language] = true
		}
	}

	for _, fc := range a.files {
		l1 := subfolderL1(fc.FilePath)
		l2 := subfolderL2(fc.FilePath)
		if l1 != "" {
			bump(folderKey{path: l1, depth: model.FolderDepthL1}, fc)
		}
		if l2 != "" {
			bump(folderKey{path: l2, depth: model.FolderDepthL2}, fc)
		}
	}

	out := make([]model.FolderCoverage, 0, len(agg))
	for key, fco := range agg {
		for l := range langSeen[key] {
			fco.Languages = append(fco.Languages, l)
		}
		sort.Slice(fco.Languages, func(i, j int) bool { return fco.Languages[i] < fco.Languages[j] })
		if fco.Eligible > 0 {
			fco.CoveragePercent = 100 * float64(fco.Parsed) / float64(fco.Eligible)
			fco.EntityDensity = float64(fco.Entities) / float64(fco.Eligible)
		}
		out = append(out, *fco)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FolderDepth != out[j].FolderDepth {
			return out[i].FolderDepth < out[j].FolderDepth
		}
		return out[i].FolderPath < out[j].FolderPath
	})
	return out
}

// Global produces the single per-run GlobalCoverage summary.
func (a *Accumulator) Global() model.GlobalCoverage {
	g := model.GlobalCoverage{RunID: a.runID}
	langSeen := map[model.Language]bool{}
	extSeen := map[string]bool{}

	for _, fc := range a.files {
		g.Total++
		if isEligible(fc.Status) {
			g.Eligible++
		}
		switch fc.Status {
		case model.StatusParsed:
			g.Parsed++
		case model.StatusFailed:
			g.Failed++
		case model.StatusExcluded:
			g.Excluded++
		case model.StatusBinary:
			g.Binary++
		case model.StatusTooLarge:
			g.TooLarge++
		case model.StatusUnsupportedLanguage:
			g.UnsupportedLanguages++
		}
		g.Entities += fc.Entities
		g.Edges += fc.Edges
		if fc.Language != "" {
			langSeen[fc.Language] = true
		}
		if fc.Status == model.StatusUnsupportedLanguage {
			extSeen[extOf(fc.FilePath)] = true
		}
	}

	for l := range langSeen {
		g.Languages = append(g.Languages, l)
	}
	sort.Slice(g.Languages, func(i, j int) bool { return g.Languages[i] < g.Languages[j] })
	for e := range extSeen {
		g.UnsupportedExtensions = append(g.UnsupportedExtensions, e)
	}
	sort.Strings(g.UnsupportedExtensions)
	return g
}

func extOf(filePath string) string {
	for i := len(filePath) - 1; i >= 0; i-- {
		if filePath[i] == '.' {
			return filePath[i:]
		}
		if filePath[i] == '/' {
			break
		}
	}
	return ""
}
