package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skankhunt44/schema-snap/pkg/models"
)

func rel(fromTable, fromCol, toTable, toCol string, confidence float64, suggestedBy string) models.Relationship {
	return models.Relationship{
		From:        models.ColumnRef{Table: fromTable, Column: fromCol},
		To:          models.ColumnRef{Table: toTable, Column: toCol},
		Type:        models.RelationshipOneToMany,
		Confidence:  confidence,
		SuggestedBy: suggestedBy,
	}
}

func TestMergeRelationshipsFirstWriterWins(t *testing.T) {
	heuristic := []models.Relationship{
		rel("donations", "donor_id", "donors", "donor_id", 0.82, models.SuggestedByHeuristic),
	}
	ai := []models.Relationship{
		rel("donations", "donor_id", "donors", "donor_id", 0.99, models.SuggestedByAI),
		rel("pledges", "donor_id", "donors", "donor_id", 0.70, models.SuggestedByAI),
	}

	merged := MergeRelationships(heuristic, ai)
	require.Len(t, merged, 2)
	assert.Equal(t, 0.82, merged[0].Confidence, "heuristic entry must survive the collision")
	assert.Equal(t, models.SuggestedByHeuristic, merged[0].SuggestedBy)
	assert.Equal(t, "pledges", merged[1].From.Table)
}

func TestMergeRelationshipsNotCommutativeOnCollision(t *testing.T) {
	a := []models.Relationship{rel("t1", "c", "t2", "c", 0.6, models.SuggestedByHeuristic)}
	b := []models.Relationship{rel("t1", "c", "t2", "c", 0.9, models.SuggestedByAI)}

	ab := MergeRelationships(a, b)
	ba := MergeRelationships(b, a)
	require.Len(t, ab, 1)
	require.Len(t, ba, 1)
	assert.Equal(t, 0.6, ab[0].Confidence)
	assert.Equal(t, 0.9, ba[0].Confidence)
}

func TestMergeRelationshipsIdempotent(t *testing.T) {
	a := []models.Relationship{
		rel("t1", "c1", "t2", "c2", 0.7, models.SuggestedByHeuristic),
		rel("t2", "c2", "t1", "c1", 0.7, models.SuggestedByHeuristic), // reverse direction is a distinct key
	}
	b := []models.Relationship{
		rel("t1", "c1", "t2", "c2", 0.95, models.SuggestedByAI),
		rel("t3", "x", "t1", "c1", 0.65, models.SuggestedByAI),
	}

	once := MergeRelationships(a, b)
	twice := MergeRelationships(once, b)
	assert.Equal(t, once, twice)
}

func TestMergeRelationshipsDirectionMatters(t *testing.T) {
	forward := rel("t1", "c", "t2", "c", 0.8, models.SuggestedByHeuristic)
	reverse := rel("t2", "c", "t1", "c", 0.8, models.SuggestedByHeuristic)

	merged := MergeRelationships([]models.Relationship{forward}, []models.Relationship{reverse})
	assert.Len(t, merged, 2)
}

func TestMergeRelationshipsEmptyOracle(t *testing.T) {
	heuristic := []models.Relationship{rel("t1", "c", "t2", "c", 0.8, models.SuggestedByHeuristic)}

	merged := MergeRelationships(heuristic, nil)
	assert.Equal(t, heuristic, merged)

	assert.Empty(t, MergeRelationships(nil, nil))
}
