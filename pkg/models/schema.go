package models

import (
	"time"

	"github.com/google/uuid"
)

// DataType classifies the values observed in a column during profiling.
type DataType string

const (
	DataTypeString   DataType = "string"
	DataTypeNumber   DataType = "number"
	DataTypeBoolean  DataType = "boolean"
	DataTypeDate     DataType = "date"
	DataTypeUUID     DataType = "uuid"
	DataTypeCurrency DataType = "currency"
	DataTypeUnknown  DataType = "unknown"
)

// ValidDataTypes contains all valid data type values.
var ValidDataTypes = []DataType{
	DataTypeString,
	DataTypeNumber,
	DataTypeBoolean,
	DataTypeDate,
	DataTypeUUID,
	DataTypeCurrency,
	DataTypeUnknown,
}

// IsValidDataType checks if the given type is valid.
func IsValidDataType(t DataType) bool {
	for _, v := range ValidDataTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ColumnProfile holds the profiled statistics for one column.
// Profiles are produced at ingestion time and never mutated afterward.
type ColumnProfile struct {
	Name         string   `json:"name"`
	DataType     DataType `json:"data_type"`
	NullRatio    float64  `json:"null_ratio"`    // fraction of sampled values absent, 0..1
	UniqueRatio  float64  `json:"unique_ratio"`  // fraction of non-null sampled values that are distinct, 0..1
	SampleValues []string `json:"sample_values,omitempty"`
}

// TableSchema describes one ingested table: its profiled columns plus a
// bounded set of sample rows used by the output assembler.
type TableSchema struct {
	Name        string           `json:"name"`
	EntityLabel string           `json:"entity_label,omitempty"` // singular display label, e.g. "donor" for "donors"
	Columns     []ColumnProfile  `json:"columns"`
	RowCount    *int64           `json:"row_count,omitempty"`
	SampleRows  []map[string]any `json:"sample_rows,omitempty"`
	Source      string           `json:"source,omitempty"` // provenance: "csv", "postgres", "mssql", ...
}

// Column returns the profile for the named column, or nil if absent.
func (t *TableSchema) Column(name string) *ColumnProfile {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// SchemaSnapshot pairs the ingested table schemas with the merged
// relationship set. The rest of the system treats it as ground truth
// for one ingestion session.
type SchemaSnapshot struct {
	ID            uuid.UUID      `json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	Tables        []TableSchema  `json:"tables"`
	Relationships []Relationship `json:"relationships"`
}

// Table returns the named table schema, or nil if the snapshot has no
// table with that name.
func (s *SchemaSnapshot) Table(name string) *TableSchema {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}
