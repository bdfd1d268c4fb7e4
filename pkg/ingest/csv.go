package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/skankhunt44/schema-snap/pkg/models"
)

// maxProfileRows caps how many rows feed column profiling, independent
// of how many sample rows are retained.
const maxProfileRows = 1000

// ReadCSVFile parses a CSV file into a profiled table schema. The
// first record is the header; the table name is the file name without
// its extension, lower-cased.
func ReadCSVFile(path string, limits Limits) (TableResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return TableResult{}, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	name := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	return readCSV(f, name, limits)
}

// TableResult pairs a parsed table with parse diagnostics.
type TableResult struct {
	Table       models.TableSchema
	SkippedRows int // rows dropped for column-count mismatches
}

func readCSV(r io.Reader, name string, limits Limits) (TableResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // tolerate ragged rows, we skip them below

	header, err := reader.Read()
	if err != nil {
		return TableResult{}, fmt.Errorf("read csv header: %w", err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	var rows [][]string
	skipped := 0
	for len(rows) < maxProfileRows {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return TableResult{}, fmt.Errorf("read csv row: %w", err)
		}
		if len(record) != len(columns) {
			skipped++
			continue
		}
		rows = append(rows, record)
	}

	return TableResult{
		Table:       BuildTableSchema(name, columns, rows, limits, "csv"),
		SkippedRows: skipped,
	}, nil
}
