package services

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/skankhunt44/schema-snap/pkg/models"
)

const (
	// nameScoreGate bounds the all-pairs search: column pairs whose
	// name similarity falls below it are never scored further.
	nameScoreGate = 0.6
	// confidenceFloor discards weak candidates after full scoring.
	confidenceFloor = 0.55
)

// Confidence component weights.
const (
	weightName       = 0.5
	weightType       = 0.2
	weightOverlap    = 0.1
	weightUniqueness = 0.2
)

// InferRelationships scores every candidate column pair across every
// ordered pair of distinct tables and returns the relationships that
// clear the confidence floor. The output is not deduplicated: both
// directions of a table pair are evaluated and may both be emitted.
func InferRelationships(tables []models.TableSchema, logger *zap.Logger) []models.Relationship {
	if logger == nil {
		logger = zap.NewNop()
	}

	var relationships []models.Relationship
	evaluated := 0

	for i := range tables {
		for j := range tables {
			if i == j {
				continue
			}
			source := &tables[i]
			target := &tables[j]

			for _, srcCol := range source.Columns {
				for _, tgtCol := range target.Columns {
					nameScore := NameSimilarity(srcCol.Name, tgtCol.Name)
					if nameScore < nameScoreGate {
						continue
					}
					evaluated++

					typeScore := typeCompatibility(srcCol.DataType, tgtCol.DataType)
					overlapScore := sampleOverlap(srcCol.SampleValues, tgtCol.SampleValues)
					uniqueness := math.Max(srcCol.UniqueRatio, tgtCol.UniqueRatio)

					confidence := nameScore*weightName +
						typeScore*weightType +
						overlapScore*weightOverlap +
						uniqueness*weightUniqueness
					confidence = math.Round(math.Min(confidence, 1)*100) / 100
					if confidence < confidenceFloor {
						continue
					}

					relType := models.RelationshipManyToMany
					if isLikelyPrimaryKey(tgtCol.Name, target.Name) {
						relType = models.RelationshipOneToMany
					}

					relationships = append(relationships, models.Relationship{
						From:       models.ColumnRef{Table: source.Name, Column: srcCol.Name},
						To:         models.ColumnRef{Table: target.Name, Column: tgtCol.Name},
						Type:       relType,
						Confidence: confidence,
						Rationale: fmt.Sprintf(
							"name similarity %.2f, type compatibility %.2f, value overlap %.2f",
							nameScore, typeScore, overlapScore),
						Evidence: models.Evidence{
							NameScore:       nameScore,
							TypeScore:       typeScore,
							OverlapScore:    overlapScore,
							UniquenessScore: uniqueness,
						},
						SuggestedBy: models.SuggestedByHeuristic,
					})
				}
			}
		}
	}

	logger.Debug("Heuristic relationship inference complete",
		zap.Int("tables", len(tables)),
		zap.Int("pairs_scored", evaluated),
		zap.Int("relationships", len(relationships)))

	return relationships
}

// typeCompatibility scores how well two profiled data types can join.
func typeCompatibility(a, b models.DataType) float64 {
	if a == b {
		return 1.0
	}
	if isNumericFamily(a) && isNumericFamily(b) {
		return 0.8
	}
	if (a == models.DataTypeUUID && b == models.DataTypeString) ||
		(a == models.DataTypeString && b == models.DataTypeUUID) {
		return 0.5
	}
	return 0.2
}

func isNumericFamily(t models.DataType) bool {
	return t == models.DataTypeNumber || t == models.DataTypeCurrency
}

// sampleOverlap returns the fraction of the smaller sample-value set
// found in the other set. 0 when either side has no samples.
func sampleOverlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(a))
	for _, v := range a {
		setA[v] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, v := range b {
		setB[v] = struct{}{}
	}

	small, large := setA, setB
	if len(setB) < len(setA) {
		small, large = setB, setA
	}

	matched := 0
	for v := range small {
		if _, ok := large[v]; ok {
			matched++
		}
	}

	return float64(matched) / float64(len(small))
}

// isLikelyPrimaryKey judges whether a column looks like the primary key
// of its table: its name is "id", or "{base}_id"/"{base}id" where base
// is the table name's last underscore-delimited segment with a trailing
// "s" stripped. Best-effort naming heuristic, nothing more; irregular
// plurals and compound table names will misclassify.
func isLikelyPrimaryKey(columnName, tableName string) bool {
	col := strings.ToLower(strings.TrimSpace(columnName))
	if col == "id" {
		return true
	}

	base := strings.ToLower(tableName)
	if idx := strings.LastIndex(base, "_"); idx >= 0 {
		base = base[idx+1:]
	}
	base = strings.TrimSuffix(base, "s")
	if base == "" {
		return false
	}

	return col == base+"_id" || col == base+"id"
}
