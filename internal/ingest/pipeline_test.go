// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kraklabs/isograph/internal/identity"
	"github.com/kraklabs/isograph/internal/model"
)

func TestConsolidatePlaceholders_ResolvesSameRunReference(t *testing.T) {
	helperKey := identity.New(string(model.LangGo), string(model.EntityFunction), "helper", "pkg/sample.go")
	entities := []model.CodeEntity{
		{Key: helperKey, Name: "helper", EntityType: model.EntityFunction, Language: model.LangGo, FilePath: "pkg/sample.go"},
	}
	edges := []model.DependencyEdge{
		{
			FromKey:  helperKey,
			ToKey:    identity.Unresolved(string(model.LangGo), "helper"),
			EdgeType: model.EdgeCalls,
		},
		{
			FromKey:  helperKey,
			ToKey:    identity.Unresolved(string(model.LangGo), "trulyExternal"),
			EdgeType: model.EdgeCalls,
		},
	}

	resolved, unresolvedCount := ConsolidatePlaceholders(entities, edges)

	require := resolved[0]
	assert.Equal(t, helperKey, require.ToKey)
	assert.True(t, resolved[1].ToKey.IsUnresolved())
	assert.Equal(t, 1, unresolvedCount)
}

func TestConsolidatePlaceholders_LeavesResolvedEdgesAlone(t *testing.T) {
	a := identity.New(string(model.LangGo), string(model.EntityFunction), "a", "pkg/a.go")
	b := identity.New(string(model.LangGo), string(model.EntityFunction), "b", "pkg/b.go")
	entities := []model.CodeEntity{
		{Key: a, Name: "a", EntityType: model.EntityFunction, Language: model.LangGo, FilePath: "pkg/a.go"},
		{Key: b, Name: "b", EntityType: model.EntityFunction, Language: model.LangGo, FilePath: "pkg/b.go"},
	}
	edges := []model.DependencyEdge{{FromKey: a, ToKey: b, EdgeType: model.EdgeCalls}}

	resolved, unresolvedCount := ConsolidatePlaceholders(entities, edges)
	assert.Equal(t, 0, unresolvedCount)
	assert.Equal(t, b, resolved[0].ToKey)
}

func TestSelectEngineURI(t *testing.T) {
	assert.Equal(t, "mem", SelectEngineURI("linux", ""))
	assert.Equal(t, "rocksdb:/data/db", SelectEngineURI("linux", "/data/db"))
	assert.Equal(t, "sqlite:/data/db", SelectEngineURI("windows", "/data/db"))
}
