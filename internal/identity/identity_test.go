// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyRoundTrip(t *testing.T) {
	k := New("rust", "fn", "alpha", "src_lib")
	parsed, err := Parse(k.Format())
	require.NoError(t, err)
	assert.Equal(t, k, parsed)
}

func TestParseRejectsWrongFieldCount(t *testing.T) {
	_, err := Parse("rust:fn:alpha:src_lib")
	require.Error(t, err)
	var kerr *ErrKeyFormat
	require.ErrorAs(t, err, &kerr)
}

func TestParseRejectsBadBirth(t *testing.T) {
	_, err := Parse("rust:fn:alpha:src_lib:Tnotanumber")
	require.Error(t, err)
}

func TestSanitizationCoverage(t *testing.T) {
	reserved := []string{"\\", "'", "<", ">", ",", " ", "[", "]", "{", "}", "::"}
	names := []string{
		`MyApp\Services`,
		`global::System.Resources.ResourceManager`,
		`Vec<Option<'a, String>>`,
		`foo, bar`,
		`name with spaces`,
		`arr[0]`,
		`Obj{field}`,
	}
	for _, n := range names {
		s := Sanitize(n)
		for _, r := range reserved {
			assert.NotContains(t, s, r, "sanitize(%q) must not contain %q, got %q", n, r, s)
		}
		assert.NotContains(t, s, ":", "sanitize(%q) must not contain a raw ':' , got %q", n, s)
	}
}

func TestSemanticPathFor(t *testing.T) {
	assert.Equal(t, "src_lib_mod", SemanticPathFor("src/lib/mod.rs"))
	assert.Equal(t, "main", SemanticPathFor("main.go"))
}

func TestBirthTimestampDeterministic(t *testing.T) {
	a := BirthTimestampFor("src/lib.rs", "alpha")
	b := BirthTimestampFor("src/lib.rs", "alpha")
	assert.Equal(t, a, b)

	c := BirthTimestampFor("src/lib.rs", "beta")
	assert.NotEqual(t, a, c)
}

func TestContentHashPureFunction(t *testing.T) {
	h1 := ContentHashFor("rust", "fn", "alpha", "fn alpha() {}")
	h2 := ContentHashFor("rust", "fn", "alpha", "fn alpha() {}")
	assert.Equal(t, h1, h2)

	h3 := ContentHashFor("rust", "fn", "alpha", "fn alpha() { different }")
	assert.NotEqual(t, h1, h3)
}

func TestUnresolvedSentinel(t *testing.T) {
	k := Unresolved("go", "pkg.Foo")
	assert.True(t, k.IsUnresolved())
	assert.Equal(t, int64(0), k.BirthTimestamp)
	assert.Equal(t, UnresolvedSemanticPath, k.SemanticPath)
}
