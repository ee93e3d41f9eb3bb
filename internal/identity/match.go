// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

// Matchable is the minimal view of a CodeEntity the three-tier matcher
// needs. internal/model.CodeEntity satisfies it; kept narrow here so
// identity has no dependency on internal/model.
type Matchable struct {
	Key         Key
	EntityType  string
	Name        string
	LineStart   int
	ContentHash string
}

// MatchResult is the outcome of matching a fresh extraction (`After`)
// against the entities previously stored for a file (`Before`), via the
// three-tier algorithm below (content, then position, then new/deleted).
type MatchResult struct {
	// Preserved pairs an index into After with the Before entity it matched
	// (by content or position). Only indices are returned; no Key is
	// rewritten here.
	Preserved []Pair
	// Added holds indices into After that matched nothing in Before; these
	// entities keep their freshly computed birth timestamp.
	Added []int
	// Deleted holds indices into Before that matched nothing in After.
	Deleted []int
}

// Pair records a matched (after-index, before-index) relationship and which
// tier produced the match, since reindex.go uses Tier to count preserved
// entities by content (untouched) vs by position (body edited).
type Pair struct {
	AfterIndex  int
	BeforeIndex int
	Tier        MatchTier
}

// MatchTier names which rule paired two entities.
type MatchTier int

const (
	// TierContent: identical content_hash — the dominant case for a pure
	// line shift.
	TierContent MatchTier = iota
	// TierPosition: same (entity_type, name, line_start) — the dominant
	// case for an in-place body edit.
	TierPosition
)

// Match runs the three-tier match of `after` (freshly extracted entities
// for one file) against `before` (entities previously stored for that
// file). It never mutates its inputs and copies no Key across a pair.
// reindex.go upserts the freshly extracted entities as they are: their keys
// come from New over (language, type, name, path), and both tiers only
// pair entities of the same type and name in the same file, so a matched
// entity's fresh key equals the key it had before.
func Match(before, after []Matchable) MatchResult {
	result := MatchResult{}

	beforeMatched := make([]bool, len(before))
	afterMatched := make([]bool, len(after))

	// Tier 1: content match. A hash index gives O(|after|+|before|); a
	// single content_hash can in principle recur for multiple before-rows
	// only if the same exact entity text appears twice in the file history,
	// which the first-seen assignment below resolves deterministically.
	byHash := make(map[string][]int, len(before))
	for bi, b := range before {
		byHash[b.ContentHash] = append(byHash[b.ContentHash], bi)
	}
	for ai, a := range after {
		candidates := byHash[a.ContentHash]
		for _, bi := range candidates {
			if beforeMatched[bi] {
				continue
			}
			beforeMatched[bi] = true
			afterMatched[ai] = true
			result.Preserved = append(result.Preserved, Pair{AfterIndex: ai, BeforeIndex: bi, Tier: TierContent})
			break
		}
	}

	// Tier 2: position match for everything tier 1 left unmatched — pairs
	// on (entity_type, name, line_start), which survives a body-only edit
	// that changed the content hash but left the declaration's own line in
	// place.
	type posKey struct {
		entityType string
		name       string
		lineStart  int
	}
	byPos := make(map[posKey][]int, len(before))
	for bi, b := range before {
		if beforeMatched[bi] {
			continue
		}
		k := posKey{b.EntityType, b.Name, b.LineStart}
		byPos[k] = append(byPos[k], bi)
	}
	for ai, a := range after {
		if afterMatched[ai] {
			continue
		}
		k := posKey{a.EntityType, a.Name, a.LineStart}
		candidates := byPos[k]
		for _, bi := range candidates {
			if beforeMatched[bi] {
				continue
			}
			beforeMatched[bi] = true
			afterMatched[ai] = true
			result.Preserved = append(result.Preserved, Pair{AfterIndex: ai, BeforeIndex: bi, Tier: TierPosition})
			break
		}
	}

	// Tier 3: new. Remaining after-entities receive their own freshly
	// computed birth timestamp (already set by the caller via identity.New).
	for ai := range after {
		if !afterMatched[ai] {
			result.Added = append(result.Added, ai)
		}
	}

	// Tier 4: deleted. Remaining before-entities are removed.
	for bi := range before {
		if !beforeMatched[bi] {
			result.Deleted = append(result.Deleted, bi)
		}
	}

	return result
}
