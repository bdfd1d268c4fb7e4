package services

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/skankhunt44/schema-snap/pkg/apperrors"
	"github.com/skankhunt44/schema-snap/pkg/models"
)

// SelectBaseTable determines which table supplies one output row per
// row. Each mapped field whose referenced table has at least one sample
// row casts a vote for that table; the table with the most votes wins,
// ties broken by first-encountered table in field order. With no votes
// at all, the first snapshot table holding sample rows is used. An
// empty result means no base table exists and the caller must emit a
// single all-null seed row.
func SelectBaseTable(fields []models.TargetField, mappings map[string]*models.MappingEntry, snap *models.SchemaSnapshot) string {
	votes := make(map[string]int)
	var order []string

	for _, field := range fields {
		entry := mappings[field.ID]
		table, _, ok := entry.SourceRef()
		if !ok {
			continue
		}
		ts := snap.Table(table)
		if ts == nil || len(ts.SampleRows) == 0 {
			continue
		}
		if _, seen := votes[table]; !seen {
			order = append(order, table)
		}
		votes[table]++
	}

	best := ""
	bestVotes := 0
	for _, table := range order {
		if votes[table] > bestVotes {
			best = table
			bestVotes = votes[table]
		}
	}
	if best != "" {
		return best
	}

	for i := range snap.Tables {
		if len(snap.Tables[i].SampleRows) > 0 {
			return snap.Tables[i].Name
		}
	}
	return ""
}

// fieldPlan is the resolved join plan for one mapped target field.
type fieldPlan struct {
	field     models.TargetField
	entry     *models.MappingEntry
	table     string
	column    string
	sameTable bool
	path      JoinPath
	hasPath   bool
}

// BuildOutput assembles the flattened output payload for a template
// against a snapshot. Planning (base table + per-field join paths)
// happens once up front; execution then walks the base table's sample
// rows. Resolution gaps (missing join paths, absent key values, empty
// related-row sets) degrade to nulls or whole-table fallbacks and
// never raise.
func BuildOutput(tmpl *models.Template, snap *models.SchemaSnapshot, logger *zap.Logger) (*models.OutputPayload, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if snap == nil {
		return nil, apperrors.ErrNoSnapshot
	}
	if tmpl.MappedFieldCount() == 0 {
		return nil, fmt.Errorf("template %q: %w", tmpl.Name, apperrors.ErrNoMappedFields)
	}

	baseTable := SelectBaseTable(tmpl.Fields, tmpl.Mappings, snap)

	plans := make([]fieldPlan, 0, len(tmpl.Fields))
	for _, field := range tmpl.Fields {
		plan := fieldPlan{field: field, entry: tmpl.Mappings[field.ID]}
		if table, column, ok := plan.entry.SourceRef(); ok {
			plan.table = table
			plan.column = column
			plan.sameTable = table == baseTable
			if !plan.sameTable && baseTable != "" {
				plan.path, plan.hasPath = ResolveJoinPath(snap.Relationships, baseTable, table)
			}
		} else {
			plan.entry = nil // unparseable mapping degrades to unmapped
		}
		plans = append(plans, plan)
	}

	columns := make([]string, len(tmpl.Fields))
	for i, field := range tmpl.Fields {
		columns[i] = field.Name
	}

	if baseTable == "" {
		// Empty seed row: exactly one output row, every field null.
		seed := make(map[string]any, len(tmpl.Fields))
		for _, field := range tmpl.Fields {
			seed[field.Name] = nil
		}
		return &models.OutputPayload{
			BaseTable: "",
			RowCount:  1,
			Columns:   columns,
			Rows:      []map[string]any{seed},
		}, nil
	}

	var baseRows []map[string]any
	if ts := snap.Table(baseTable); ts != nil {
		baseRows = ts.SampleRows
	}

	rows := make([]map[string]any, 0, len(baseRows))
	for _, baseRow := range baseRows {
		out := make(map[string]any, len(plans))
		for _, plan := range plans {
			out[plan.field.Name] = resolveField(plan, baseRow, snap)
		}
		rows = append(rows, out)
	}

	logger.Debug("Output build complete",
		zap.String("template", tmpl.Name),
		zap.String("base_table", baseTable),
		zap.Int("rows", len(rows)))

	return &models.OutputPayload{
		BaseTable: baseTable,
		RowCount:  len(rows),
		Columns:   columns,
		Rows:      rows,
	}, nil
}

// resolveField computes one output value for one base row.
func resolveField(plan fieldPlan, baseRow map[string]any, snap *models.SchemaSnapshot) any {
	if plan.entry == nil {
		return nil
	}

	op := plan.entry.Op()
	sourceTable := snap.Table(plan.table)
	var sourceRows []map[string]any
	if sourceTable != nil {
		sourceRows = sourceTable.SampleRows
	}

	if plan.sameTable {
		if op == models.OpDirect {
			if baseRow == nil {
				return nil
			}
			return valueOrNil(baseRow[plan.column])
		}
		// Field and base row share a table, so aggregation spans the
		// whole table rather than a per-row related set.
		return applyAggregate(op, sourceRows, plan.column)
	}

	related := relatedRows(plan, baseRow, sourceRows)

	if op == models.OpDirect {
		if len(related) > 0 {
			return valueOrNil(related[0][plan.column])
		}
		if !plan.hasPath && len(sourceRows) > 0 {
			// Degraded default: no join path at all, best-effort first row.
			return valueOrNil(sourceRows[0][plan.column])
		}
		return nil
	}

	if len(related) == 0 && !plan.hasPath {
		return applyAggregate(op, sourceRows, plan.column)
	}
	return applyAggregate(op, related, plan.column)
}

// relatedRows collects the target-table rows whose match-column value
// equals the base row's key value, compared as strings. An absent base
// key yields no related rows.
func relatedRows(plan fieldPlan, baseRow map[string]any, sourceRows []map[string]any) []map[string]any {
	if !plan.hasPath || baseRow == nil {
		return nil
	}

	key := FormatValue(baseRow[plan.path.BaseColumn()])
	if strings.TrimSpace(key) == "" {
		return nil
	}

	matchColumn := plan.path.MatchColumn()
	var related []map[string]any
	for _, row := range sourceRows {
		if FormatValue(row[matchColumn]) == key {
			related = append(related, row)
		}
	}
	return related
}

// applyAggregate computes one aggregation over a row set and column.
// Numeric parsing is lenient: non-numeric values are excluded rather
// than raising, and empty numeric sets yield 0.
func applyAggregate(op models.AggregateOp, rows []map[string]any, column string) any {
	switch op {
	case models.OpCount:
		n := 0
		for _, row := range rows {
			if isPresent(row[column]) {
				n++
			}
		}
		return n

	case models.OpCountDistinct:
		distinct := make(map[string]struct{})
		for _, row := range rows {
			if isPresent(row[column]) {
				distinct[FormatValue(row[column])] = struct{}{}
			}
		}
		return len(distinct)

	case models.OpSum:
		sum := 0.0
		for _, row := range rows {
			if n, ok := coerceNumber(row[column]); ok {
				sum += n
			}
		}
		return sum

	case models.OpAverage:
		sum := 0.0
		count := 0
		for _, row := range rows {
			if n, ok := coerceNumber(row[column]); ok {
				sum += n
				count++
			}
		}
		if count == 0 {
			return 0.0
		}
		return sum / float64(count)

	case models.OpFirst:
		if len(rows) == 0 {
			return nil
		}
		return valueOrNil(rows[0][column])

	case models.OpLast:
		if len(rows) == 0 {
			return nil
		}
		return valueOrNil(rows[len(rows)-1][column])

	default:
		return nil
	}
}

// isPresent reports whether a cell holds a usable value: non-nil and
// non-empty after trimming.
func isPresent(v any) bool {
	if v == nil {
		return false
	}
	return strings.TrimSpace(FormatValue(v)) != ""
}

// valueOrNil normalizes missing map lookups to an explicit nil.
func valueOrNil(v any) any {
	if v == nil {
		return nil
	}
	return v
}

// FormatValue stringifies a scalar for key comparison and distinct
// counting. Floats render without a trailing ".0" so JSON-decoded
// numbers compare equal to their string forms.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// coerceNumber leniently parses a cell as a number. Currency strings
// may carry a symbol and thousands separators; those are stripped
// before parsing. Returns false for anything non-numeric.
func coerceNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		s := strings.TrimSpace(t)
		s = strings.TrimLeft(s, "$€£")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
