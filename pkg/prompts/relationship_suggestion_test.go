package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skankhunt44/schema-snap/pkg/models"
)

func TestBuildRelationshipSuggestionPrompt(t *testing.T) {
	rowCount := int64(120)
	tables := []models.TableSchema{
		{
			Name:     "donors",
			RowCount: &rowCount,
			Columns: []models.ColumnProfile{
				{Name: "donor_id", DataType: models.DataTypeUUID, UniqueRatio: 1.0, SampleValues: []string{"a", "b"}},
			},
		},
		{
			Name: "donations",
			Columns: []models.ColumnProfile{
				{Name: "amount", DataType: models.DataTypeNumber},
			},
		},
	}

	prompt := BuildRelationshipSuggestionPrompt(tables)

	assert.Contains(t, prompt, "### donors")
	assert.Contains(t, prompt, "### donations")
	assert.Contains(t, prompt, "donor_id")
	assert.Contains(t, prompt, "Row count: 120")
	assert.Contains(t, prompt, "e.g. a, b")
	assert.Contains(t, prompt, "from_table")
	assert.Contains(t, prompt, "ONE_TO_MANY")
}

func TestBuildRelationshipSuggestionPromptBoundsSamples(t *testing.T) {
	tables := []models.TableSchema{
		{
			Name: "t",
			Columns: []models.ColumnProfile{
				{Name: "c", DataType: models.DataTypeString,
					SampleValues: []string{"v1", "v2", "v3", "v4", "v5", "v6", "v7"}},
			},
		},
	}
	prompt := BuildRelationshipSuggestionPrompt(tables)
	assert.Contains(t, prompt, "v5")
	assert.NotContains(t, prompt, "v6")
}
