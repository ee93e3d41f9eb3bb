// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/isograph/internal/identity"
	"github.com/kraklabs/isograph/internal/model"
)

const goSample = `package sample

type Widget struct {
	Name string
}

func (w *Widget) Greet() string {
	return helper(w.Name)
}

func helper(name string) string {
	return "hello " + name
}
`

func TestExtract_Go_Definitions(t *testing.T) {
	res, err := Extract(context.Background(), model.LangGo, "pkg/sample.go", []byte(goSample), model.ClassCode)
	require.NoError(t, err)

	names := map[string]model.EntityType{}
	for _, e := range res.Entities {
		names[e.Name] = e.EntityType
		assert.Equal(t, "pkg/sample.go", e.FilePath)
		assert.Equal(t, model.ClassCode, e.EntityClass)
		assert.NotEmpty(t, e.ContentHash)
		assert.Equal(t, "pkg", e.RootSubfolderL1)
	}

	assert.Equal(t, model.EntityStruct, names["Widget"])
	assert.Equal(t, model.EntityMethod, names["Greet"])
	assert.Equal(t, model.EntityFunction, names["helper"])
}

func TestExtract_Go_CallEdges(t *testing.T) {
	res, err := Extract(context.Background(), model.LangGo, "pkg/sample.go", []byte(goSample), model.ClassCode)
	require.NoError(t, err)

	var sawHelperCall bool
	for _, e := range res.Edges {
		if e.EdgeType == model.EdgeCalls && e.ToKey.SanitizedName == identity.Sanitize("helper") {
			sawHelperCall = true
		}
	}
	assert.True(t, sawHelperCall, "expected a calls edge targeting helper")
}

func TestExtract_TestFileClassification(t *testing.T) {
	class := ClassifyEntityClass("pkg/sample_test.go")
	assert.Equal(t, model.ClassTest, class)
}

func TestSubfolder(t *testing.T) {
	assert.Equal(t, "internal", Subfolder("internal/store/store.go", 1))
	assert.Equal(t, "internal/store", Subfolder("internal/store/store.go", 2))
	assert.Equal(t, "", Subfolder("main.go", 1))
}

const pythonDecoratorSample = `class Widget:
    @staticmethod
    def greet():
        return "hi"
`

func TestExtract_Python_AnnotationProducesImplementsEdge(t *testing.T) {
	res, err := Extract(context.Background(), model.LangPython, "pkg/sample.py", []byte(pythonDecoratorSample), model.ClassCode)
	require.NoError(t, err)

	var sawImplements bool
	for _, e := range res.Edges {
		if e.EdgeType == model.EdgeImplements && e.ToKey.SanitizedName == identity.Sanitize("staticmethod") {
			sawImplements = true
		}
	}
	assert.True(t, sawImplements, "expected an implements edge for the @staticmethod annotation")
}

const sqlBareStatementSample = "SELECT * FROM widgets;\n"

func TestExtract_SQL_ReferenceOutsideDefinitionIsDropped(t *testing.T) {
	res, err := Extract(context.Background(), model.LangSQL, "queries/report.sql", []byte(sqlBareStatementSample), model.ClassCode)
	require.NoError(t, err)

	for _, e := range res.Edges {
		assert.NotEqual(t, identity.Sanitize("widgets"), e.ToKey.SanitizedName,
			"a reference with no enclosing definition must be dropped, not attached to a fabricated from_key")
	}

	var sawDiagnostic bool
	for _, d := range res.Diagnostics {
		if d.Reason == "no enclosing definition for reference" {
			sawDiagnostic = true
		}
	}
	assert.True(t, sawDiagnostic, "expected a diagnostic recording the dropped bare-statement reference")
}
