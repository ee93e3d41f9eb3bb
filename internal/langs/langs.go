// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package langs is the parser registry: it maps file extensions onto
// supported languages, hands out one tree-sitter parser per call (parsers
// are not thread-safe and must not be shared across goroutines/OS
// threads), and carries the declarative entities/dependency query
// pattern for each language.
//
// Every grammar comes from github.com/smacker/go-tree-sitter's bundled
// language subpackages.
package langs

import (
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/sql"
	"github.com/smacker/go-tree-sitter/swift"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/kraklabs/isograph/internal/model"
)

// Grammar bundles everything the extractor needs for one language: the
// tree-sitter grammar handle and the two declarative query patterns
// written against that grammar's node vocabulary.
type Grammar struct {
	Language          model.Language
	Extensions        []string
	sitterLanguage    *sitter.Language
	EntitiesQuery     string
	DependenciesQuery string
}

var registry = map[model.Language]*Grammar{}
var extIndex = map[string]model.Language{}

func register(g *Grammar) {
	registry[g.Language] = g
	for _, ext := range g.Extensions {
		extIndex[ext] = g.Language
	}
}

func init() {
	register(&Grammar{
		Language:          model.LangGo,
		Extensions:        []string{".go"},
		sitterLanguage:    golang.GetLanguage(),
		EntitiesQuery:     goEntitiesQuery,
		DependenciesQuery: goDependenciesQuery,
	})
	register(&Grammar{
		Language:          model.LangPython,
		Extensions:        []string{".py", ".pyi"},
		sitterLanguage:    python.GetLanguage(),
		EntitiesQuery:     pythonEntitiesQuery,
		DependenciesQuery: pythonDependenciesQuery,
	})
	register(&Grammar{
		Language:          model.LangJavaScript,
		Extensions:        []string{".js", ".jsx", ".mjs", ".cjs"},
		sitterLanguage:    javascript.GetLanguage(),
		EntitiesQuery:     javascriptEntitiesQuery,
		DependenciesQuery: javascriptDependenciesQuery,
	})
	register(&Grammar{
		Language:          model.LangTypeScript,
		Extensions:        []string{".ts", ".tsx", ".mts", ".cts"},
		sitterLanguage:    typescript.GetLanguage(),
		EntitiesQuery:     typescriptEntitiesQuery,
		DependenciesQuery: typescriptDependenciesQuery,
	})
	register(&Grammar{
		Language:          model.LangJava,
		Extensions:        []string{".java"},
		sitterLanguage:    java.GetLanguage(),
		EntitiesQuery:     javaEntitiesQuery,
		DependenciesQuery: javaDependenciesQuery,
	})
	register(&Grammar{
		Language:          model.LangRust,
		Extensions:        []string{".rs"},
		sitterLanguage:    rust.GetLanguage(),
		EntitiesQuery:     rustEntitiesQuery,
		DependenciesQuery: rustDependenciesQuery,
	})
	register(&Grammar{
		Language:          model.LangC,
		Extensions:        []string{".c", ".h"},
		sitterLanguage:    c.GetLanguage(),
		EntitiesQuery:     cEntitiesQuery,
		DependenciesQuery: cDependenciesQuery,
	})
	register(&Grammar{
		Language:          model.LangCPP,
		Extensions:        []string{".cc", ".cpp", ".cxx", ".hpp", ".hh"},
		sitterLanguage:    cpp.GetLanguage(),
		EntitiesQuery:     cppEntitiesQuery,
		DependenciesQuery: cppDependenciesQuery,
	})
	register(&Grammar{
		Language:          model.LangCSharp,
		Extensions:        []string{".cs"},
		sitterLanguage:    csharp.GetLanguage(),
		EntitiesQuery:     csharpEntitiesQuery,
		DependenciesQuery: csharpDependenciesQuery,
	})
	register(&Grammar{
		Language:          model.LangPHP,
		Extensions:        []string{".php"},
		sitterLanguage:    php.GetLanguage(),
		EntitiesQuery:     phpEntitiesQuery,
		DependenciesQuery: phpDependenciesQuery,
	})
	register(&Grammar{
		Language:          model.LangRuby,
		Extensions:        []string{".rb"},
		sitterLanguage:    ruby.GetLanguage(),
		EntitiesQuery:     rubyEntitiesQuery,
		DependenciesQuery: rubyDependenciesQuery,
	})
	register(&Grammar{
		Language:          model.LangSwift,
		Extensions:        []string{".swift"},
		sitterLanguage:    swift.GetLanguage(),
		EntitiesQuery:     swiftEntitiesQuery,
		DependenciesQuery: swiftDependenciesQuery,
	})
	register(&Grammar{
		Language:          model.LangSQL,
		Extensions:        []string{".sql"},
		sitterLanguage:    sql.GetLanguage(),
		EntitiesQuery:     sqlEntitiesQuery,
		DependenciesQuery: sqlDependenciesQuery,
	})
}

// ForExtension resolves a file path's extension to a supported language.
// The lookup is case-insensitive.
func ForExtension(path string) (model.Language, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	lang, ok := extIndex[ext]
	return lang, ok
}

// Get returns the registered grammar for a language.
func Get(lang model.Language) (*Grammar, bool) {
	g, ok := registry[lang]
	return g, ok
}

// SupportedLanguages lists every language the registry knows about, for
// status/config reporting. The order is not defined.
func SupportedLanguages() []model.Language {
	out := make([]model.Language, 0, len(registry))
	for l := range registry {
		out = append(out, l)
	}
	return out
}

// AcquireParser returns a fresh *sitter.Parser bound to lang's grammar.
// Tree-sitter parsers are not safe for concurrent use or for reuse across
// OS threads, so callers must not share the returned parser across
// goroutines. A fresh parser per call rather than a pool: extractor.Extract
// acquires one per file and drops it when that file is done.
func AcquireParser(lang model.Language) (*sitter.Parser, error) {
	g, ok := registry[lang]
	if !ok {
		return nil, fmt.Errorf("langs: no grammar registered for %q", lang)
	}
	p := sitter.NewParser()
	p.SetLanguage(g.sitterLanguage)
	return p, nil
}

// SitterLanguage exposes the raw grammar handle, needed to compile a
// sitter.Query against it.
func (g *Grammar) SitterLanguage() *sitter.Language { return g.sitterLanguage }
