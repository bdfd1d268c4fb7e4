package services

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/skankhunt44/schema-snap/pkg/models"
)

// MergeRelationships combines two relationship lists into one
// deduplicated set keyed by the directed quadruple (from.table,
// from.column, to.table, to.column). Entries from primary always win
// on key collision and first-seen order is preserved, so a heuristic
// relationship is never silently replaced by an externally supplied
// one for the same directed pair.
func MergeRelationships(primary, secondary []models.Relationship) []models.Relationship {
	merged := orderedmap.New[models.RelationshipKey, models.Relationship]()

	for _, rel := range primary {
		if _, exists := merged.Get(rel.Key()); !exists {
			merged.Set(rel.Key(), rel)
		}
	}
	for _, rel := range secondary {
		if _, exists := merged.Get(rel.Key()); !exists {
			merged.Set(rel.Key(), rel)
		}
	}

	out := make([]models.Relationship, 0, merged.Len())
	for pair := merged.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}
