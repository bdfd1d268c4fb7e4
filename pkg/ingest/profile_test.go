package ingest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skankhunt44/schema-snap/pkg/models"
)

func TestBuildTableSchema_Profiles(t *testing.T) {
	columns := []string{"donor_id", "amount", "active", "note"}
	rows := [][]string{
		{"d1", "$1,200.00", "true", "first gift"},
		{"d2", "$300.00", "false", ""},
		{"d1", "$55.99", "true", "  "},
		{"d3", "$10.00", "yes", "matched"},
	}

	table := BuildTableSchema("donations", columns, rows, Limits{}, "csv")

	assert.Equal(t, "donations", table.Name)
	assert.Equal(t, "donation", table.EntityLabel)
	assert.Equal(t, "csv", table.Source)
	require.NotNil(t, table.RowCount)
	assert.Equal(t, int64(4), *table.RowCount)
	require.Len(t, table.Columns, 4)

	donorID := table.Columns[0]
	assert.Equal(t, models.DataTypeString, donorID.DataType)
	assert.Equal(t, 0.0, donorID.NullRatio)
	assert.InDelta(t, 0.75, donorID.UniqueRatio, 1e-9)
	assert.Equal(t, []string{"d1", "d2", "d3"}, donorID.SampleValues)

	amount := table.Columns[1]
	assert.Equal(t, models.DataTypeCurrency, amount.DataType)
	assert.Equal(t, 1.0, amount.UniqueRatio)

	active := table.Columns[2]
	assert.Equal(t, models.DataTypeBoolean, active.DataType)

	note := table.Columns[3]
	assert.Equal(t, models.DataTypeString, note.DataType)
	assert.InDelta(t, 0.5, note.NullRatio, 1e-9)
}

func TestBuildTableSchema_SampleRowsNullifyBlanks(t *testing.T) {
	table := BuildTableSchema("donors",
		[]string{"id", "name"},
		[][]string{
			{"1", "Ada"},
			{"2", "   "},
			{"3"}, // short row, trailing cells are null
		}, Limits{}, "csv")

	require.Len(t, table.SampleRows, 3)
	assert.Equal(t, map[string]any{"id": "1", "name": "Ada"}, table.SampleRows[0])
	assert.Nil(t, table.SampleRows[1]["name"])
	assert.Nil(t, table.SampleRows[2]["name"])
}

func TestBuildTableSchema_LimitsBoundSamples(t *testing.T) {
	var rows [][]string
	for i := 0; i < 20; i++ {
		rows = append(rows, []string{fmt.Sprintf("v%d", i)})
	}

	table := BuildTableSchema("events", []string{"code"},
		rows, Limits{SampleRows: 5, SampleValues: 3}, "csv")

	assert.Len(t, table.SampleRows, 5)
	require.Len(t, table.Columns, 1)
	assert.Len(t, table.Columns[0].SampleValues, 3)
	// Row count still reflects everything profiled, not the retained sample.
	require.NotNil(t, table.RowCount)
	assert.Equal(t, int64(20), *table.RowCount)
}

func TestInferDataType(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   models.DataType
	}{
		{"empty column", nil, models.DataTypeUnknown},
		{"uuids", []string{"550e8400-e29b-41d4-a716-446655440000", "6ba7b810-9dad-11d1-80b4-00c04fd430c8"}, models.DataTypeUUID},
		{"booleans", []string{"true", "No", "YES"}, models.DataTypeBoolean},
		{"currency", []string{"$12.50", "€1,000.00", "£3"}, models.DataTypeCurrency},
		{"integers", []string{"1", "-42", "1,000"}, models.DataTypeNumber},
		{"scientific", []string{"1.5e3", "2E-2"}, models.DataTypeNumber},
		{"dates", []string{"2024-01-15", "2024-02-01T10:00:00Z", "01/15/2024"}, models.DataTypeDate},
		{"mixed falls back", []string{"42", "hello"}, models.DataTypeString},
		{"whitespace trimmed", []string{" 42 ", "7"}, models.DataTypeNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inferDataType(tt.values))
		})
	}
}

func TestProfileColumn_AllNull(t *testing.T) {
	profile := profileColumn("memo", []string{"", "  ", ""}, 10)

	assert.Equal(t, models.DataTypeUnknown, profile.DataType)
	assert.Equal(t, 1.0, profile.NullRatio)
	assert.Equal(t, 0.0, profile.UniqueRatio)
	assert.Empty(t, profile.SampleValues)
}

func TestLimits_OrDefaults(t *testing.T) {
	assert.Equal(t, DefaultLimits(), Limits{}.orDefaults())
	assert.Equal(t, Limits{SampleRows: 7, SampleValues: 50}, Limits{SampleRows: 7}.orDefaults())
}
