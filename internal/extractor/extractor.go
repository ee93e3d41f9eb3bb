// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package extractor runs the declarative tree-sitter queries registered in
// internal/langs against a parsed file and turns the matches into
// model.CodeEntity/model.DependencyEdge values.
//
// One query-execution loop drives every language; per-language knowledge
// lives entirely in the query patterns (internal/langs/queries.go), not in
// hand-written per-node-kind Go switch statements.
package extractor

import (
	"context"
	"fmt"
	"path"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/isograph/internal/identity"
	"github.com/kraklabs/isograph/internal/langs"
	"github.com/kraklabs/isograph/internal/model"
)

// captureKindPrefix splits the fixed vocabulary into the two families the
// extractor treats differently: defines an entity, or references one.
const (
	definitionPrefix = "definition."
	referencePrefix  = "reference."
	nameCaptureName  = "name"
)

var definitionEntityTypes = map[string]model.EntityType{
	"function":  model.EntityFunction,
	"method":    model.EntityMethod,
	"class":     model.EntityClassDecl,
	"struct":    model.EntityStruct,
	"enum":      model.EntityEnum,
	"trait":     model.EntityTrait,
	"impl":      model.EntityImpl,
	"module":    model.EntityModule,
	"macro":     model.EntityMacro,
	"variable":  model.EntityVariable,
	"constant":  model.EntityConstant,
	"table":     model.EntityTable,
	"view":      model.EntityView,
	"procedure": model.EntityProcedure,
	"trigger":   model.EntityTrigger,
	"index":     model.EntityIndex,
}

var referenceEdgeTypes = map[string]model.EdgeType{
	"call":         model.EdgeCalls,
	"method":       model.EdgeCalls,
	"constructor":  model.EdgeCalls,
	"field_access": model.EdgeUses,
	"generic_type": model.EdgeUses,
	"annotation":   model.EdgeImplements,
}

// Diagnostic records a dropped capture — what it was and why — so a
// caller can log it instead of failing silently.
type Diagnostic struct {
	FilePath string
	Capture  string
	Reason   string
}

// Result is everything one file's extraction produces.
type Result struct {
	Entities    []model.CodeEntity
	Edges       []model.DependencyEdge
	Diagnostics []Diagnostic
}

type definitionSpan struct {
	entity    model.CodeEntity
	lineStart int
	lineEnd   int
}

// Extract parses source with lang's grammar and runs both declarative
// queries against the resulting tree. normalizedPath is the project-
// relative, forward-slash path used for semantic-path derivation;
// entityClass classifies every entity found in this file as code or
// test, decided by the caller from the file's path.
func Extract(ctx context.Context, lang model.Language, normalizedPath string, source []byte, entityClass model.EntityClass) (*Result, error) {
	grammar, ok := langs.Get(lang)
	if !ok {
		return nil, fmt.Errorf("extractor: no grammar for language %q", lang)
	}

	parser, err := langs.AcquireParser(lang)
	if err != nil {
		return nil, err
	}

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("extractor: parse %s: %w", normalizedPath, err)
	}
	root := tree.RootNode()

	res := &Result{}

	spans, diags := extractDefinitions(grammar, root, source, lang, normalizedPath, entityClass)
	res.Entities = make([]model.CodeEntity, 0, len(spans))
	for _, s := range spans {
		res.Entities = append(res.Entities, s.entity)
	}
	res.Diagnostics = append(res.Diagnostics, diags...)

	edges, diags2 := extractDependencies(grammar, root, source, lang, normalizedPath, spans)
	res.Edges = edges
	res.Diagnostics = append(res.Diagnostics, diags2...)

	return res, nil
}

func runQuery(grammar *langs.Grammar, pattern string, root *sitter.Node, source []byte) (*sitter.Query, *sitter.QueryCursor, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, nil, nil
	}
	q, err := sitter.NewQuery([]byte(pattern), grammar.SitterLanguage())
	if err != nil {
		return nil, nil, fmt.Errorf("extractor: compile query: %w", err)
	}
	cursor := sitter.NewQueryCursor()
	cursor.Exec(q, root)
	return q, cursor, nil
}

func extractDefinitions(grammar *langs.Grammar, root *sitter.Node, source []byte, lang model.Language, normalizedPath string, entityClass model.EntityClass) ([]definitionSpan, []Diagnostic) {
	var spans []definitionSpan
	var diags []Diagnostic

	q, cursor, err := runQuery(grammar, grammar.EntitiesQuery, root, source)
	if err != nil {
		diags = append(diags, Diagnostic{FilePath: normalizedPath, Capture: "definition.*", Reason: err.Error()})
		return spans, diags
	}
	if q == nil {
		return spans, diags
	}

	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		var defNode *sitter.Node
		var defKind string
		var nameNode *sitter.Node
		for _, cap := range match.Captures {
			capName := q.CaptureNameForId(cap.Index)
			switch {
			case capName == nameCaptureName:
				n := cap.Node
				nameNode = n
			case strings.HasPrefix(capName, definitionPrefix):
				n := cap.Node
				defNode = n
				defKind = strings.TrimPrefix(capName, definitionPrefix)
			}
		}
		if defNode == nil || nameNode == nil {
			diags = append(diags, Diagnostic{FilePath: normalizedPath, Capture: defKind, Reason: "missing node or name capture"})
			continue
		}
		entType, ok := definitionEntityTypes[defKind]
		if !ok {
			diags = append(diags, Diagnostic{FilePath: normalizedPath, Capture: defKind, Reason: "unmapped definition kind"})
			continue
		}

		name := nameNode.Content(source)
		lineStart := int(defNode.StartPoint().Row) + 1
		lineEnd := int(defNode.EndPoint().Row) + 1
		bodyText := defNode.Content(source)

		key := identity.New(string(lang), string(entType), name, normalizedPath)
		entity := model.CodeEntity{
			Key:             key,
			Name:            name,
			EntityType:      entType,
			EntityClass:     entityClass,
			Language:        lang,
			FilePath:        normalizedPath,
			LineStart:       lineStart,
			LineEnd:         lineEnd,
			ContentHash:     identity.ContentHashFor(string(lang), string(entType), name, bodyText),
			SemanticPath:    identity.SemanticPathFor(normalizedPath),
			RootSubfolderL1: Subfolder(normalizedPath, 1),
			RootSubfolderL2: Subfolder(normalizedPath, 2),
		}
		spans = append(spans, definitionSpan{entity: entity, lineStart: lineStart, lineEnd: lineEnd})
	}
	return spans, diags
}

func extractDependencies(grammar *langs.Grammar, root *sitter.Node, source []byte, lang model.Language, normalizedPath string, spans []definitionSpan) ([]model.DependencyEdge, []Diagnostic) {
	var edges []model.DependencyEdge
	var diags []Diagnostic

	q, cursor, err := runQuery(grammar, grammar.DependenciesQuery, root, source)
	if err != nil {
		diags = append(diags, Diagnostic{FilePath: normalizedPath, Capture: "reference.*", Reason: err.Error()})
		return edges, diags
	}
	if q == nil {
		return edges, diags
	}

	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		for _, cap := range match.Captures {
			capName := q.CaptureNameForId(cap.Index)
			if !strings.HasPrefix(capName, referencePrefix) {
				continue
			}
			refKind := strings.TrimPrefix(capName, referencePrefix)
			edgeType, ok := referenceEdgeTypes[refKind]
			if !ok {
				diags = append(diags, Diagnostic{FilePath: normalizedPath, Capture: refKind, Reason: "unmapped reference kind"})
				continue
			}
			node := cap.Node
			refName := node.Content(source)
			if refName == "" {
				diags = append(diags, Diagnostic{FilePath: normalizedPath, Capture: refKind, Reason: "empty reference text"})
				continue
			}
			line := int(node.StartPoint().Row) + 1

			from, ok := containingEntityKey(spans, line)
			if !ok {
				diags = append(diags, Diagnostic{FilePath: normalizedPath, Capture: refKind, Reason: "no enclosing definition for reference"})
				continue
			}
			to := identity.Unresolved(string(lang), refName)

			edges = append(edges, model.DependencyEdge{
				FromKey:        from,
				ToKey:          to,
				EdgeType:       edgeType,
				SourceLocation: model.SourceLocation{FilePath: normalizedPath, Line: line},
			})
		}
	}
	return edges, diags
}

// containingEntityKey returns the key of the innermost entity whose line
// range encloses line. A reference with no enclosing definition (a
// top-level import, a module-level call, a bare SQL statement) has no
// stored entity to attach to, so the caller drops it rather than invent one.
func containingEntityKey(spans []definitionSpan, line int) (identity.Key, bool) {
	var best *definitionSpan
	for i := range spans {
		s := &spans[i]
		if line < s.lineStart || line > s.lineEnd {
			continue
		}
		if best == nil || (s.lineEnd-s.lineStart) < (best.lineEnd-best.lineStart) {
			best = s
		}
	}
	if best == nil {
		return identity.Key{}, false
	}
	return best.entity.Key, true
}

// Subfolder returns the first (depth=1) or first two (depth=2) path
// segments of normalizedPath, for folder-coverage aggregation.
func Subfolder(normalizedPath string, depth int) string {
	dir := path.Dir(normalizedPath)
	if dir == "." {
		return ""
	}
	parts := strings.Split(dir, "/")
	if depth > len(parts) {
		depth = len(parts)
	}
	return strings.Join(parts[:depth], "/")
}
