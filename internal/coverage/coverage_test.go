// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kraklabs/isograph/internal/model"
)

func l1(p string) string { return Subfolder(p, 1) }
func l2(p string) string { return Subfolder(p, 2) }

// Subfolder mirrors extractor.Subfolder without importing it, to keep this
// package's tests independent of internal/extractor.
func Subfolder(normalizedPath string, depth int) string {
	var parts []string
	start := 0
	for i := 0; i < len(normalizedPath); i++ {
		if normalizedPath[i] == '/' {
			parts = append(parts, normalizedPath[start:i])
			start = i + 1
		}
	}
	if len(parts) == 0 {
		return ""
	}
	if depth > len(parts) {
		depth = len(parts)
	}
	out := parts[0]
	for i := 1; i < depth; i++ {
		out += "/" + parts[i]
	}
	return out
}

func TestAccumulator_GlobalInvariant(t *testing.T) {
	acc := NewAccumulator("run-1")
	acc.Add(model.FileCoverage{FilePath: "internal/a.go", Status: model.StatusParsed, Language: model.LangGo, Entities: 2})
	acc.Add(model.FileCoverage{FilePath: "internal/b.go", Status: model.StatusFailed, Language: model.LangGo})
	acc.Add(model.FileCoverage{FilePath: "vendor/c.go", Status: model.StatusExcluded})
	acc.Add(model.FileCoverage{FilePath: "assets/logo.png", Status: model.StatusBinary})
	acc.Add(model.FileCoverage{FilePath: "notes.xyz", Status: model.StatusUnsupportedLanguage})

	g := acc.Global()
	assert.Equal(t, 5, g.Total)
	assert.Equal(t, 3, g.Eligible) // everything but excluded and binary
	assert.Equal(t, 1, g.Parsed)
	assert.LessOrEqual(t, g.Parsed, g.Eligible)
	assert.LessOrEqual(t, g.Eligible, g.Total)
	assert.Equal(t, []string{".xyz"}, g.UnsupportedExtensions)
	assert.Equal(t, []model.Language{model.LangGo}, g.Languages)
}

func TestAccumulator_FolderRollups(t *testing.T) {
	acc := NewAccumulator("run-1")
	acc.Add(model.FileCoverage{FilePath: "internal/store/a.go", Status: model.StatusParsed, Language: model.LangGo, Entities: 3})
	acc.Add(model.FileCoverage{FilePath: "internal/store/b.go", Status: model.StatusParsed, Language: model.LangGo, Entities: 1})
	acc.Add(model.FileCoverage{FilePath: "internal/ingest/c.go", Status: model.StatusFailed, Language: model.LangGo})

	folders := acc.FolderRollups(l1, l2)
	require := map[string]model.FolderCoverage{}
	for _, f := range folders {
		require[f.FolderPath] = f
	}

	internal := require["internal"]
	assert.Equal(t, 3, internal.Total)
	assert.Equal(t, 2, internal.Parsed)
	assert.InDelta(t, 66.67, internal.CoveragePercent, 0.01)

	store := require["internal/store"]
	assert.Equal(t, 2, store.Total)
	assert.Equal(t, 2, store.Parsed)
	assert.Equal(t, 100.0, store.CoveragePercent)
}

func TestAssessFor(t *testing.T) {
	assert.Equal(t, model.AssessmentComplete, model.AssessFor(100))
	assert.Equal(t, model.AssessmentHigh, model.AssessFor(80))
	assert.Equal(t, model.AssessmentMedium, model.AssessFor(50))
	assert.Equal(t, model.AssessmentLow, model.AssessFor(1))
	assert.Equal(t, model.AssessmentNone, model.AssessFor(0))
}
