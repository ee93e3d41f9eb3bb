// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package identity implements the ISGL1 v2.1 canonical entity-key scheme:
// a position-independent identity that survives line shifts and is used to
// match entities across ingestion runs (see internal/identity/match.go).
//
// A key is five colon-separated fields:
//
//	<language>:<entity_type>:<sanitized_name>:<semantic_path>:T<birth_timestamp>
//
// Keys are pure functions of (language, entity_type, name, file path, birth
// timestamp) — never of line numbers — which is what lets the three-tier
// matcher in match.go carry a key forward across a body edit or a line shift.
package identity

import (
	"fmt"
	"strconv"
	"strings"
)

// UnresolvedSemanticPath is the sentinel semantic path used for placeholder
// entities that back unresolved (cross-file or external) references.
const UnresolvedSemanticPath = "unresolved-reference"

// Key is a parsed ISGL1 v2.1 identity.
type Key struct {
	Language       string
	EntityType     string
	SanitizedName  string
	SemanticPath   string
	BirthTimestamp int64
}

// Format renders the key in canonical `:`-separated form.
func (k Key) Format() string {
	return fmt.Sprintf("%s:%s:%s:%s:T%d", k.Language, k.EntityType, k.SanitizedName, k.SemanticPath, k.BirthTimestamp)
}

func (k Key) String() string { return k.Format() }

// IsUnresolved reports whether this key is the placeholder for an
// unresolved/external reference.
func (k Key) IsUnresolved() bool {
	return k.SemanticPath == UnresolvedSemanticPath
}

// ErrKeyFormat is returned by Parse when a string does not have exactly
// five colon-delimited fields or the birth-timestamp field is malformed.
// It is always a program bug: callers in production code should treat it
// as fatal, tests may assert on it directly.
type ErrKeyFormat struct {
	Raw    string
	Reason string
}

func (e *ErrKeyFormat) Error() string {
	return fmt.Sprintf("identity: malformed ISGL1 key %q: %s", e.Raw, e.Reason)
}

// Parse splits a formatted key back into its five fields. It does not
// re-validate that SanitizedName/SemanticPath only contain the ISGL1
// character set — callers that need that guarantee should route names
// through Sanitize and paths through SemanticPathFor first.
func Parse(raw string) (Key, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 5 {
		return Key{}, &ErrKeyFormat{Raw: raw, Reason: fmt.Sprintf("expected 5 fields, got %d", len(parts))}
	}
	birthField := parts[4]
	if !strings.HasPrefix(birthField, "T") {
		return Key{}, &ErrKeyFormat{Raw: raw, Reason: "birth timestamp field must start with 'T'"}
	}
	birth, err := strconv.ParseInt(birthField[1:], 10, 64)
	if err != nil {
		return Key{}, &ErrKeyFormat{Raw: raw, Reason: "birth timestamp is not an integer: " + err.Error()}
	}
	return Key{
		Language:       parts[0],
		EntityType:     parts[1],
		SanitizedName:  parts[2],
		SemanticPath:   parts[3],
		BirthTimestamp: birth,
	}, nil
}

// New builds a Key for a resolved entity, sanitizing the name and deriving
// the semantic path and birth timestamp from the normalized file path.
func New(language, entityType, name, normalizedFilePath string) Key {
	return Key{
		Language:       language,
		EntityType:     entityType,
		SanitizedName:  Sanitize(name),
		SemanticPath:   SemanticPathFor(normalizedFilePath),
		BirthTimestamp: BirthTimestampFor(normalizedFilePath, name),
	}
}

// Unresolved builds the sentinel placeholder key for an external/unknown
// reference target: semantic path `unresolved-reference`, birth timestamp
// zero since there is no file position to derive a nonce from.
func Unresolved(language, name string) Key {
	return Key{
		Language:       language,
		EntityType:     "ref",
		SanitizedName:  Sanitize(name),
		SemanticPath:   UnresolvedSemanticPath,
		BirthTimestamp: 0,
	}
}
