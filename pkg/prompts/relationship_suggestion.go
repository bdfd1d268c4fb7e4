// Package prompts builds the LLM prompts used by the relationship oracle.
package prompts

import (
	"fmt"
	"strings"

	"github.com/skankhunt44/schema-snap/pkg/models"
)

// RelationshipSystemMessage frames the oracle's task.
const RelationshipSystemMessage = "You are a database schema analyst. " +
	"You identify likely key relationships between tables from column names, types, and sample values. " +
	"You respond with JSON only."

const maxPromptSampleValues = 5

// BuildRelationshipSuggestionPrompt creates the prompt asking the model
// for relationship suggestions across the given tables. It includes
// per-column statistics and bounded sample values, then the exact JSON
// response format.
func BuildRelationshipSuggestionPrompt(tables []models.TableSchema) string {
	var b strings.Builder

	b.WriteString("# Schema Relationship Discovery\n\n")
	b.WriteString("Identify likely key relationships between the tables below. ")
	b.WriteString("No foreign keys are declared; infer them from names, types, and sample values.\n\n")

	b.WriteString("## Tables\n\n")
	for _, table := range tables {
		b.WriteString(fmt.Sprintf("### %s\n", table.Name))
		if table.RowCount != nil {
			b.WriteString(fmt.Sprintf("Row count: %d\n", *table.RowCount))
		}
		b.WriteString("Columns:\n")
		for _, col := range table.Columns {
			b.WriteString(fmt.Sprintf("- %s (%s, unique ratio %.2f, null ratio %.2f)",
				col.Name, col.DataType, col.UniqueRatio, col.NullRatio))
			if len(col.SampleValues) > 0 {
				samples := col.SampleValues
				if len(samples) > maxPromptSampleValues {
					samples = samples[:maxPromptSampleValues]
				}
				b.WriteString(fmt.Sprintf(" e.g. %s", strings.Join(samples, ", ")))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("## Response Format\n\n")
	b.WriteString("Return ONLY a JSON array, no prose:\n\n")
	b.WriteString(`[
  {
    "from_table": "donations",
    "from_column": "donor_id",
    "to_table": "donors",
    "to_column": "donor_id",
    "type": "ONE_TO_MANY",
    "confidence": 0.9,
    "rationale": "column names and sample values match"
  }
]
`)
	b.WriteString("\nValid types: ONE_TO_MANY, ONE_TO_ONE, MANY_TO_MANY. ")
	b.WriteString("Confidence is a number between 0 and 1. ")
	b.WriteString("Only reference tables and columns that appear above. ")
	b.WriteString("Return [] if you find no relationships.\n")

	return b.String()
}
