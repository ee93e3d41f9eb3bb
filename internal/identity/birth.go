// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"hash/fnv"
)

// BirthTimestampFor derives a deterministic, stable integer nonce from
// (normalized file path, entity name). It is explicitly NOT wall-clock
// time: the same (path, name) pair always produces the same birth
// timestamp, which is what lets a re-indexed entity that matched on
// content or position carry its original key forward untouched, while a
// genuinely new entity gets a fresh, collision-resistant value.
//
// FNV-1a is used rather than a cryptographic hash because birth timestamps
// are a disambiguating nonce, not a security boundary — collisions only
// matter in that they could merge two distinct (path, name) pairs' identity,
// which FNV-1a's 64-bit output makes negligible for realistic repository
// sizes.
func BirthTimestampFor(normalizedFilePath, name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(normalizedFilePath))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(name))
	sum := h.Sum64()
	// Mask off the sign bit: birth timestamps are rendered as a decimal
	// integer in the key and must not print a leading '-'.
	return int64(sum &^ (1 << 63))
}

// ContentHashFor computes the stable content hash of an entity: a pure
// function of language, entity_type, name, and source text. Changing any
// of those four inputs changes the hash; line position never enters into
// it, which is the property the three-tier matcher's content-match tier
// (match.go) depends on.
//
// SHA-256 is used here (rather than FNV, used for the birth nonce above)
// because the content hash is the matcher's equality test between two
// versions of an entity, where a collision would silently pair unrelated
// entities; the birth nonce only disambiguates keys that already share
// language, type, name and path.
func ContentHashFor(language, entityType, name, sourceText string) string {
	h := sha256.New()
	_, _ = h.Write([]byte(language))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(entityType))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(name))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(sourceText))
	return hex.EncodeToString(h.Sum(nil))
}
