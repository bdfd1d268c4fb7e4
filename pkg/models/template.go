package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AggregateOp is the operation applied to a related-row set when
// computing one output field.
type AggregateOp string

const (
	OpDirect        AggregateOp = "DIRECT"
	OpCount         AggregateOp = "COUNT"
	OpCountDistinct AggregateOp = "COUNT_DISTINCT"
	OpSum           AggregateOp = "SUM"
	OpAverage       AggregateOp = "AVERAGE"
	OpFirst         AggregateOp = "FIRST"
	OpLast          AggregateOp = "LAST"
)

// ValidAggregateOps contains all valid aggregation operations.
var ValidAggregateOps = []AggregateOp{
	OpDirect,
	OpCount,
	OpCountDistinct,
	OpSum,
	OpAverage,
	OpFirst,
	OpLast,
}

// IsValidAggregateOp checks if the given operation is valid.
func IsValidAggregateOp(op AggregateOp) bool {
	for _, v := range ValidAggregateOps {
		if v == op {
			return true
		}
	}
	return false
}

// TargetField is one item of a template's required output schema.
type TargetField struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// MappingEntry assigns a source column (and optional aggregation
// operation) to a target field. SourceFieldID encodes "table.column".
// A nil entry means the target field is unmapped.
type MappingEntry struct {
	SourceFieldID string      `json:"source_field_id"`
	Operation     AggregateOp `json:"operation,omitempty"` // defaults to DIRECT
	Confidence    *float64    `json:"confidence,omitempty"`
	Rationale     *string     `json:"rationale,omitempty"`
}

// Op returns the entry's operation, defaulting to DIRECT when unset.
func (m *MappingEntry) Op() AggregateOp {
	if m == nil || m.Operation == "" {
		return OpDirect
	}
	return m.Operation
}

// SourceRef splits SourceFieldID into its table and column parts.
// Column names may themselves contain dots, so only the first dot splits.
func (m *MappingEntry) SourceRef() (table, column string, ok bool) {
	if m == nil {
		return "", "", false
	}
	parts := strings.SplitN(m.SourceFieldID, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// Template is a user-defined target schema plus the field mappings
// authored against a schema snapshot.
type Template struct {
	ID          uuid.UUID                `json:"id"`
	Name        string                   `json:"name"`
	Description string                   `json:"description,omitempty"`
	Fields      []TargetField            `json:"fields"`
	Mappings    map[string]*MappingEntry `json:"mappings,omitempty"` // keyed by TargetField.ID
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

// MappedFieldCount returns the number of fields with a non-nil mapping.
func (t *Template) MappedFieldCount() int {
	n := 0
	for _, f := range t.Fields {
		if t.Mappings[f.ID] != nil {
			n++
		}
	}
	return n
}
