// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package langs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/isograph/internal/model"
)

func TestForExtension(t *testing.T) {
	cases := []struct {
		path string
		want model.Language
	}{
		{"main.go", model.LangGo},
		{"SCRIPT.PY", model.LangPython},
		{"app.tsx", model.LangTypeScript},
		{"widget.swift", model.LangSwift},
		{"migration.SQL", model.LangSQL},
	}
	for _, c := range cases {
		got, ok := ForExtension(c.path)
		require.True(t, ok, c.path)
		assert.Equal(t, c.want, got)
	}
}

func TestForExtension_Unsupported(t *testing.T) {
	_, ok := ForExtension("README.md")
	assert.False(t, ok)
}

func TestSupportedLanguages_CoversThirteen(t *testing.T) {
	assert.Len(t, SupportedLanguages(), 13)
}

func TestAcquireParser(t *testing.T) {
	p, err := AcquireParser(model.LangGo)
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestAcquireParser_UnknownLanguage(t *testing.T) {
	_, err := AcquireParser(model.Language("cobol"))
	assert.Error(t, err)
}

func TestGet_ReturnsQueriesForEveryLanguage(t *testing.T) {
	for _, lang := range SupportedLanguages() {
		g, ok := Get(lang)
		require.True(t, ok, string(lang))
		assert.NotEmpty(t, g.EntitiesQuery, string(lang))
	}
}
