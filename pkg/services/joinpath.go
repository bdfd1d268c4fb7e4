package services

import "github.com/skankhunt44/schema-snap/pkg/models"

// JoinPath is a resolved relationship between two tables plus the
// direction it must be read in. When Reversed is true the query's
// "from" table sits on the relationship's To side.
type JoinPath struct {
	Relationship models.Relationship
	Reversed     bool
}

// BaseColumn returns the column on the query's "from" side.
func (p JoinPath) BaseColumn() string {
	if p.Reversed {
		return p.Relationship.To.Column
	}
	return p.Relationship.From.Column
}

// MatchColumn returns the column on the query's "to" side.
func (p JoinPath) MatchColumn() string {
	if p.Reversed {
		return p.Relationship.From.Column
	}
	return p.Relationship.To.Column
}

// ResolveJoinPath finds the best relationship connecting fromTable to
// toTable. Forward matches always win over reverse matches, even when
// a reverse match has higher confidence. Within a direction the
// highest-confidence relationship wins; ties keep the first match in
// relationship-set order. The second return value is false when no
// path exists; callers treat that as an empty result, not an error.
func ResolveJoinPath(relationships []models.Relationship, fromTable, toTable string) (JoinPath, bool) {
	if path, ok := bestMatch(relationships, fromTable, toTable); ok {
		return JoinPath{Relationship: path}, true
	}
	if path, ok := bestMatch(relationships, toTable, fromTable); ok {
		return JoinPath{Relationship: path, Reversed: true}, true
	}
	return JoinPath{}, false
}

func bestMatch(relationships []models.Relationship, fromTable, toTable string) (models.Relationship, bool) {
	var best models.Relationship
	found := false
	for _, rel := range relationships {
		if rel.From.Table != fromTable || rel.To.Table != toTable {
			continue
		}
		if !found || rel.Confidence > best.Confidence {
			best = rel
			found = true
		}
	}
	return best, found
}
