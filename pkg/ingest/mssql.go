package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb" // SQL Server driver
	"go.uber.org/zap"

	"github.com/skankhunt44/schema-snap/pkg/logging"
	"github.com/skankhunt44/schema-snap/pkg/models"
)

// MSSQLIngester extracts profiled table schemas from a live SQL
// Server database.
type MSSQLIngester struct {
	db     *sql.DB
	limits Limits
	logger *zap.Logger
}

// NewMSSQLIngester connects to the given connection string.
func NewMSSQLIngester(ctx context.Context, connStr string, limits Limits, logger *zap.Logger) (*MSSQLIngester, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlserver", connStr)
	if err != nil {
		return nil, fmt.Errorf("open sqlserver connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlserver: %w", err)
	}

	logger.Info("Connected to sqlserver datasource",
		zap.String("dsn", logging.SanitizeDSN(connStr)))

	return &MSSQLIngester{db: db, limits: limits.orDefaults(), logger: logger}, nil
}

// Close releases the database connection.
func (m *MSSQLIngester) Close() error {
	return m.db.Close()
}

// IngestTables discovers all user tables and profiles each from a
// bounded sample of its rows. System tables are excluded.
func (m *MSSQLIngester) IngestTables(ctx context.Context) ([]models.TableSchema, error) {
	const query = `
	SET NOCOUNT ON;
	SELECT SCHEMA_NAME(t.schema_id) AS table_schema, t.name AS table_name
	FROM sys.tables t
	WHERE t.is_ms_shipped = 0
	ORDER BY table_schema, table_name
	`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	type tableRef struct{ schema, name string }
	var refs []tableRef
	for rows.Next() {
		var ref tableRef
		if err := rows.Scan(&ref.schema, &ref.name); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}

	tables := make([]models.TableSchema, 0, len(refs))
	for _, ref := range refs {
		table, err := m.ingestTable(ctx, ref.schema, ref.name)
		if err != nil {
			return nil, fmt.Errorf("ingest %s.%s: %w", ref.schema, ref.name, err)
		}
		tables = append(tables, table)
	}

	m.logger.Info("SQL Server ingestion complete", zap.Int("tables", len(tables)))
	return tables, nil
}

func (m *MSSQLIngester) ingestTable(ctx context.Context, schema, name string) (models.TableSchema, error) {
	query := fmt.Sprintf("SET NOCOUNT ON; SELECT TOP (%d) * FROM %s WITH (NOLOCK)",
		maxProfileRows, buildQualifiedName(schema, name))

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return models.TableSchema{}, fmt.Errorf("sample rows: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return models.TableSchema{}, fmt.Errorf("read columns: %w", err)
	}

	var cells [][]string
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return models.TableSchema{}, fmt.Errorf("read row: %w", err)
		}
		record := make([]string, len(values))
		for i, v := range values {
			record[i] = stringifySQLCell(v)
		}
		cells = append(cells, record)
	}
	if err := rows.Err(); err != nil {
		return models.TableSchema{}, fmt.Errorf("iterate rows: %w", err)
	}

	return BuildTableSchema(name, columns, cells, m.limits, "mssql"), nil
}

// buildQualifiedName returns a bracket-quoted [schema].[table] reference.
// Closing brackets inside identifiers are escaped by doubling.
func buildQualifiedName(schema, table string) string {
	return quoteIdentifier(schema) + "." + quoteIdentifier(table)
}

func quoteIdentifier(identifier string) string {
	return "[" + strings.ReplaceAll(identifier, "]", "]]") + "]"
}

// stringifySQLCell converts a database/sql scan result to a cell
// string. Byte slices are returned as-is rather than formatted as a
// slice of integers.
func stringifySQLCell(v any) string {
	switch cell := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(cell)
	default:
		return stringifyCell(cell)
	}
}
