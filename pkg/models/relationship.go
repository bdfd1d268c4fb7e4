package models

// Relationship origins.
const (
	SuggestedByHeuristic = "heuristic" // scored by the inference engine
	SuggestedByAI        = "ai"        // returned by the external oracle
)

// RelationshipType classifies the cardinality of an inferred relationship.
type RelationshipType string

const (
	RelationshipOneToMany  RelationshipType = "ONE_TO_MANY"
	RelationshipOneToOne   RelationshipType = "ONE_TO_ONE"
	RelationshipManyToMany RelationshipType = "MANY_TO_MANY"
)

// ValidRelationshipTypes contains all valid relationship type values.
var ValidRelationshipTypes = []RelationshipType{
	RelationshipOneToMany,
	RelationshipOneToOne,
	RelationshipManyToMany,
}

// IsValidRelationshipType checks if the given type is valid.
func IsValidRelationshipType(t RelationshipType) bool {
	for _, v := range ValidRelationshipTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ColumnRef identifies one column of one table.
type ColumnRef struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

// Evidence records the component scores behind a relationship's
// confidence, each in [0,1].
type Evidence struct {
	NameScore       float64 `json:"name_score"`
	TypeScore       float64 `json:"type_score"`
	OverlapScore    float64 `json:"overlap_score"`
	UniquenessScore float64 `json:"uniqueness_score"`
}

// Relationship is a directed, scored hypothesis that one table's column
// references another table's column. Relationships are immutable value
// objects; A→B and B→A are distinct even when they describe the same
// underlying join.
type Relationship struct {
	From        ColumnRef        `json:"from"`
	To          ColumnRef        `json:"to"`
	Type        RelationshipType `json:"type"`
	Confidence  float64          `json:"confidence"` // 0..1
	Rationale   string           `json:"rationale"`
	Evidence    Evidence         `json:"evidence"`
	SuggestedBy string           `json:"suggested_by"`
}

// RelationshipKey is the canonical dedup identity of a relationship:
// the ordered quadruple of endpoint names. Direction matters.
type RelationshipKey struct {
	FromTable  string
	FromColumn string
	ToTable    string
	ToColumn   string
}

// Key returns the relationship's dedup identity.
func (r Relationship) Key() RelationshipKey {
	return RelationshipKey{
		FromTable:  r.From.Table,
		FromColumn: r.From.Column,
		ToTable:    r.To.Table,
		ToColumn:   r.To.Column,
	}
}
