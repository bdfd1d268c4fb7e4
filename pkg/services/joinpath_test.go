package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skankhunt44/schema-snap/pkg/models"
)

func TestResolveJoinPathForward(t *testing.T) {
	rels := []models.Relationship{
		rel("donations", "donor_id", "donors", "donor_id", 0.8, models.SuggestedByHeuristic),
	}

	path, ok := ResolveJoinPath(rels, "donations", "donors")
	require.True(t, ok)
	assert.False(t, path.Reversed)
	assert.Equal(t, "donor_id", path.BaseColumn())
	assert.Equal(t, "donor_id", path.MatchColumn())
}

func TestResolveJoinPathReverse(t *testing.T) {
	rels := []models.Relationship{
		rel("donations", "donor_id", "donors", "id", 0.8, models.SuggestedByHeuristic),
	}

	path, ok := ResolveJoinPath(rels, "donors", "donations")
	require.True(t, ok)
	assert.True(t, path.Reversed)
	assert.Equal(t, "id", path.BaseColumn(), "base side sits on the relationship's To when reversed")
	assert.Equal(t, "donor_id", path.MatchColumn())
}

func TestResolveJoinPathForwardBeatsStrongerReverse(t *testing.T) {
	rels := []models.Relationship{
		rel("donors", "donor_id", "donations", "donor_id", 0.99, models.SuggestedByAI),
		rel("donations", "donor_id", "donors", "donor_id", 0.60, models.SuggestedByHeuristic),
	}

	path, ok := ResolveJoinPath(rels, "donations", "donors")
	require.True(t, ok)
	assert.False(t, path.Reversed, "direct match wins even when a reverse match has higher confidence")
	assert.Equal(t, 0.60, path.Relationship.Confidence)
}

func TestResolveJoinPathPicksHighestConfidence(t *testing.T) {
	rels := []models.Relationship{
		rel("donations", "donor_id", "donors", "donor_id", 0.60, models.SuggestedByHeuristic),
		rel("donations", "donor_ref", "donors", "donor_id", 0.85, models.SuggestedByAI),
	}

	path, ok := ResolveJoinPath(rels, "donations", "donors")
	require.True(t, ok)
	assert.Equal(t, "donor_ref", path.Relationship.From.Column)
}

func TestResolveJoinPathTieKeepsFirst(t *testing.T) {
	rels := []models.Relationship{
		rel("donations", "donor_id", "donors", "donor_id", 0.7, models.SuggestedByHeuristic),
		rel("donations", "donor_ref", "donors", "donor_id", 0.7, models.SuggestedByAI),
	}

	path, ok := ResolveJoinPath(rels, "donations", "donors")
	require.True(t, ok)
	assert.Equal(t, "donor_id", path.Relationship.From.Column, "ties keep the first match in set order")
}

func TestResolveJoinPathNoPath(t *testing.T) {
	rels := []models.Relationship{
		rel("donations", "donor_id", "donors", "donor_id", 0.8, models.SuggestedByHeuristic),
	}

	_, ok := ResolveJoinPath(rels, "donations", "campaigns")
	assert.False(t, ok)
}
