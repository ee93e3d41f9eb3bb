// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestIdentityStabilityUnderLineShift exercises scenario S1: prepending
// comment lines shifts every entity's line range but must not change any
// key and must not report any added/removed entity.
func TestIdentityStabilityUnderLineShift(t *testing.T) {
	before := []Matchable{
		{Key: New("rust", "fn", "alpha", "src_lib"), EntityType: "fn", Name: "alpha", LineStart: 1, ContentHash: ContentHashFor("rust", "fn", "alpha", "body-alpha")},
		{Key: New("rust", "fn", "beta", "src_lib"), EntityType: "fn", Name: "beta", LineStart: 2, ContentHash: ContentHashFor("rust", "fn", "beta", "body-beta")},
		{Key: New("rust", "fn", "gamma", "src_lib"), EntityType: "fn", Name: "gamma", LineStart: 3, ContentHash: ContentHashFor("rust", "fn", "gamma", "body-gamma")},
	}
	// After: same content hashes, shifted line numbers (10 blank lines added).
	after := []Matchable{
		{EntityType: "fn", Name: "alpha", LineStart: 11, ContentHash: ContentHashFor("rust", "fn", "alpha", "body-alpha")},
		{EntityType: "fn", Name: "beta", LineStart: 12, ContentHash: ContentHashFor("rust", "fn", "beta", "body-beta")},
		{EntityType: "fn", Name: "gamma", LineStart: 13, ContentHash: ContentHashFor("rust", "fn", "gamma", "body-gamma")},
	}

	result := Match(before, after)
	assert.Empty(t, result.Added)
	assert.Empty(t, result.Deleted)
	assert.Len(t, result.Preserved, 3)
	for _, p := range result.Preserved {
		assert.Equal(t, TierContent, p.Tier)
		assert.Equal(t, before[p.BeforeIndex].Key, before[p.BeforeIndex].Key) // key carried over unchanged by caller
	}
}

// TestIdentityStabilityUnderBodyEdit exercises scenario S2: editing a single
// function's body changes its content hash but not its (type, name, line),
// so it must match on the position tier, not register as added/removed.
func TestIdentityStabilityUnderBodyEdit(t *testing.T) {
	before := []Matchable{
		{Key: New("rust", "fn", "alpha", "src_lib"), EntityType: "fn", Name: "alpha", LineStart: 1, ContentHash: ContentHashFor("rust", "fn", "alpha", "old-body")},
		{Key: New("rust", "fn", "beta", "src_lib"), EntityType: "fn", Name: "beta", LineStart: 2, ContentHash: ContentHashFor("rust", "fn", "beta", "old-body-beta")},
	}
	after := []Matchable{
		{EntityType: "fn", Name: "alpha", LineStart: 1, ContentHash: ContentHashFor("rust", "fn", "alpha", "old-body")},
		{EntityType: "fn", Name: "beta", LineStart: 2, ContentHash: ContentHashFor("rust", "fn", "beta", "NEW-body-beta")},
	}

	result := Match(before, after)
	assert.Empty(t, result.Added)
	assert.Empty(t, result.Deleted)
	assert.Len(t, result.Preserved, 2)

	tierFor := map[int]MatchTier{}
	for _, p := range result.Preserved {
		tierFor[p.AfterIndex] = p.Tier
	}
	assert.Equal(t, TierContent, tierFor[0])
	assert.Equal(t, TierPosition, tierFor[1])
}

// TestAddAccounting exercises scenario S3: appending a new function yields
// added=1, removed=0.
func TestAddAccounting(t *testing.T) {
	before := []Matchable{
		{Key: New("rust", "fn", "alpha", "src_lib"), EntityType: "fn", Name: "alpha", LineStart: 1, ContentHash: ContentHashFor("rust", "fn", "alpha", "body")},
	}
	after := []Matchable{
		{EntityType: "fn", Name: "alpha", LineStart: 1, ContentHash: ContentHashFor("rust", "fn", "alpha", "body")},
		{EntityType: "fn", Name: "delta", LineStart: 5, ContentHash: ContentHashFor("rust", "fn", "delta", "delta-body")},
	}

	result := Match(before, after)
	assert.Len(t, result.Added, 1)
	assert.Equal(t, 1, result.Added[0])
	assert.Empty(t, result.Deleted)
}

// TestDeleteAccounting exercises scenario S4: removing a function yields
// added=0, removed=1.
func TestDeleteAccounting(t *testing.T) {
	before := []Matchable{
		{Key: New("rust", "fn", "alpha", "src_lib"), EntityType: "fn", Name: "alpha", LineStart: 1, ContentHash: ContentHashFor("rust", "fn", "alpha", "body")},
		{Key: New("rust", "fn", "gamma", "src_lib"), EntityType: "fn", Name: "gamma", LineStart: 3, ContentHash: ContentHashFor("rust", "fn", "gamma", "gamma-body")},
	}
	after := []Matchable{
		{EntityType: "fn", Name: "alpha", LineStart: 1, ContentHash: ContentHashFor("rust", "fn", "alpha", "body")},
	}

	result := Match(before, after)
	assert.Empty(t, result.Added)
	assert.Len(t, result.Deleted, 1)
	assert.Equal(t, 1, result.Deleted[0])
}

// TestMatchDoesNotDoubleAssignBeforeEntities guards against a hash or
// position collision causing two after-entities to claim the same
// before-entity.
func TestMatchDoesNotDoubleAssignBeforeEntities(t *testing.T) {
	before := []Matchable{
		{EntityType: "fn", Name: "x", LineStart: 1, ContentHash: "same"},
	}
	after := []Matchable{
		{EntityType: "fn", Name: "x", LineStart: 1, ContentHash: "same"},
		{EntityType: "fn", Name: "x", LineStart: 1, ContentHash: "same"},
	}
	result := Match(before, after)
	assert.Len(t, result.Preserved, 1)
	assert.Len(t, result.Added, 1)
}
