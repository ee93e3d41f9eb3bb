// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import "strings"

// escapeTokens maps each ISGL1-reserved character (or character sequence) to
// a fixed, reversible escape token. Order matters: "::" must be replaced
// before the other tokens, and the single-character tokens must not collide
// with any of the literal escape strings below.
var escapeTokens = []struct {
	token string
	repl  string
}{
	{"::", "__"},
	{"\\", "__bs__"},
	{"'", "__sq__"},
	{"<", "__lt__"},
	{">", "__gt__"},
	{",", "__c__"},
	{" ", "_"},
	{"[", "__lb__"},
	{"]", "__rb__"},
	{"{", "__lc__"},
	{"}", "__rc__"},
}

// Sanitize rewrites a source-level entity name into the ISGL1 character set.
// The result is guaranteed to contain none of `\ ' < > , space [ ] { }` or a
// raw `:`, which is what keeps Format's five-colon-field structure intact
// for every legal input name.
func Sanitize(name string) string {
	out := name
	for _, t := range escapeTokens {
		out = strings.ReplaceAll(out, t.token, t.repl)
	}
	// A bare ':' that didn't participate in a "::" pair (e.g. Ruby's
	// `Namespace::Class` already collapsed above, but a lone ':' can still
	// appear in some grammars' qualified names) must also be escaped, since
	// Parse relies on exactly five colon-delimited fields.
	out = strings.ReplaceAll(out, ":", "__colon__")
	return out
}

// SemanticPathFor derives the `semantic_path` key component from a
// project-relative file path: '/' becomes '_' and the extension is
// stripped.
func SemanticPathFor(normalizedFilePath string) string {
	p := normalizedFilePath
	if idx := strings.LastIndex(p, "."); idx > strings.LastIndex(p, "/") {
		p = p[:idx]
	}
	p = strings.ReplaceAll(p, "/", "_")
	return p
}
