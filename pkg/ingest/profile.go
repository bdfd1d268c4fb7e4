// Package ingest turns raw tabular sources (CSV files, live databases)
// into profiled table schemas.
package ingest

import (
	"regexp"
	"strings"
	"time"

	"github.com/jinzhu/inflection"

	"github.com/skankhunt44/schema-snap/pkg/models"
)

// Limits bounds how much data profiling retains per table.
type Limits struct {
	SampleRows   int // sample rows kept per table
	SampleValues int // distinct sample values kept per column
}

// DefaultLimits returns the profiling bounds used when none are configured.
func DefaultLimits() Limits {
	return Limits{SampleRows: 200, SampleValues: 50}
}

func (l Limits) orDefaults() Limits {
	d := DefaultLimits()
	if l.SampleRows <= 0 {
		l.SampleRows = d.SampleRows
	}
	if l.SampleValues <= 0 {
		l.SampleValues = d.SampleValues
	}
	return l
}

var (
	uuidPattern     = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	numberPattern   = regexp.MustCompile(`^-?\d{1,3}(,\d{3})*(\.\d+)?$|^-?\d+(\.\d+)?([eE][+-]?\d+)?$`)
	currencyPattern = regexp.MustCompile(`^[\$€£]\s?-?\d{1,3}(,\d{3})*(\.\d+)?$|^[\$€£]\s?-?\d+(\.\d+)?$`)
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// BuildTableSchema profiles raw string cells into a TableSchema. The
// rows slice holds one cell slice per row, aligned with columns; short
// rows are treated as trailing nulls.
func BuildTableSchema(name string, columns []string, rows [][]string, limits Limits, source string) models.TableSchema {
	limits = limits.orDefaults()

	table := models.TableSchema{
		Name:        name,
		EntityLabel: inflection.Singular(name),
		Columns:     make([]models.ColumnProfile, 0, len(columns)),
		Source:      source,
	}
	rowCount := int64(len(rows))
	table.RowCount = &rowCount

	for idx, col := range columns {
		values := make([]string, 0, len(rows))
		for _, row := range rows {
			if idx < len(row) {
				values = append(values, row[idx])
			} else {
				values = append(values, "")
			}
		}
		table.Columns = append(table.Columns, profileColumn(col, values, limits.SampleValues))
	}

	sampleCount := len(rows)
	if sampleCount > limits.SampleRows {
		sampleCount = limits.SampleRows
	}
	table.SampleRows = make([]map[string]any, 0, sampleCount)
	for _, row := range rows[:sampleCount] {
		sample := make(map[string]any, len(columns))
		for idx, col := range columns {
			if idx < len(row) && strings.TrimSpace(row[idx]) != "" {
				sample[col] = row[idx]
			} else {
				sample[col] = nil
			}
		}
		table.SampleRows = append(table.SampleRows, sample)
	}

	return table
}

// profileColumn derives one column's profile from its raw values.
func profileColumn(name string, values []string, sampleLimit int) models.ColumnProfile {
	nonNull := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			nonNull = append(nonNull, v)
		}
	}

	profile := models.ColumnProfile{
		Name:     name,
		DataType: inferDataType(nonNull),
	}

	if len(values) > 0 {
		profile.NullRatio = float64(len(values)-len(nonNull)) / float64(len(values))
	}

	distinct := make(map[string]struct{}, len(nonNull))
	for _, v := range nonNull {
		if _, seen := distinct[v]; !seen {
			distinct[v] = struct{}{}
			if len(profile.SampleValues) < sampleLimit {
				profile.SampleValues = append(profile.SampleValues, v)
			}
		}
	}
	if len(nonNull) > 0 {
		profile.UniqueRatio = float64(len(distinct)) / float64(len(nonNull))
	}

	return profile
}

// inferDataType classifies a column from its non-null values. All
// values must agree on a type; mixed columns fall back to string.
func inferDataType(values []string) models.DataType {
	if len(values) == 0 {
		return models.DataTypeUnknown
	}

	allMatch := func(match func(string) bool) bool {
		for _, v := range values {
			if !match(strings.TrimSpace(v)) {
				return false
			}
		}
		return true
	}

	switch {
	case allMatch(uuidPattern.MatchString):
		return models.DataTypeUUID
	case allMatch(isBooleanLiteral):
		return models.DataTypeBoolean
	case allMatch(currencyPattern.MatchString):
		return models.DataTypeCurrency
	case allMatch(numberPattern.MatchString):
		return models.DataTypeNumber
	case allMatch(isDateLiteral):
		return models.DataTypeDate
	default:
		return models.DataTypeString
	}
}

func isBooleanLiteral(v string) bool {
	switch strings.ToLower(v) {
	case "true", "false", "yes", "no":
		return true
	}
	return false
}

func isDateLiteral(v string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}
