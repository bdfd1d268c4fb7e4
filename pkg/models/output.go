package models

// OutputPayload is the terminal artifact of an output build: one row
// per base-table row (or a single all-null seed row when no base table
// could be selected), keyed by target field display name.
type OutputPayload struct {
	BaseTable string           `json:"base_table"`
	RowCount  int              `json:"row_count"`
	Columns   []string         `json:"columns"`
	Rows      []map[string]any `json:"rows"`
}
