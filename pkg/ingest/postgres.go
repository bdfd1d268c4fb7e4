package ingest

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/skankhunt44/schema-snap/pkg/logging"
	"github.com/skankhunt44/schema-snap/pkg/models"
	"github.com/skankhunt44/schema-snap/pkg/services"
)

// PostgresIngester extracts profiled table schemas from a live
// PostgreSQL database.
type PostgresIngester struct {
	pool   *pgxpool.Pool
	limits Limits
	logger *zap.Logger
}

// NewPostgresIngester connects to the given DSN.
func NewPostgresIngester(ctx context.Context, dsn string, limits Limits, logger *zap.Logger) (*PostgresIngester, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	logger.Info("Connected to postgres datasource",
		zap.String("dsn", logging.SanitizeDSN(dsn)))

	return &PostgresIngester{pool: pool, limits: limits.orDefaults(), logger: logger}, nil
}

// Close releases the connection pool.
func (p *PostgresIngester) Close() {
	p.pool.Close()
}

// IngestTables discovers all user tables and profiles each from a
// bounded sample of its rows.
func (p *PostgresIngester) IngestTables(ctx context.Context) ([]models.TableSchema, error) {
	const query = `
		SELECT table_schema, table_name
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE'
		  AND table_schema NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
		ORDER BY table_schema, table_name
	`

	rows, err := p.pool.Query(ctx, query)
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
		table, err := p.ingestTable(ctx, ref.schema, ref.name)
		if err != nil {
			return nil, fmt.Errorf("ingest %s.%s: %w", ref.schema, ref.name, err)
		}
		tables = append(tables, table)
	}

	p.logger.Info("Postgres ingestion complete", zap.Int("tables", len(tables)))
	return tables, nil
}

func (p *PostgresIngester) ingestTable(ctx context.Context, schema, name string) (models.TableSchema, error) {
	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d",
		qualifiedTableName(schema, name), maxProfileRows)

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return models.TableSchema{}, fmt.Errorf("sample rows: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	var cells [][]string
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return models.TableSchema{}, fmt.Errorf("read row: %w", err)
		}
		record := make([]string, len(values))
		for i, v := range values {
			record[i] = stringifyCell(v)
		}
		cells = append(cells, record)
	}
	if err := rows.Err(); err != nil {
		return models.TableSchema{}, fmt.Errorf("iterate rows: %w", err)
	}

	return BuildTableSchema(name, columns, cells, p.limits, "postgres"), nil
}

// qualifiedTableName returns a properly quoted "schema"."table" reference.
func qualifiedTableName(schema, table string) string {
	quoted := pgx.Identifier{table}.Sanitize()
	if schema == "" {
		return quoted
	}
	return pgx.Identifier{schema}.Sanitize() + "." + quoted
}

func stringifyCell(v any) string {
	if v == nil {
		return ""
	}
	return services.FormatValue(v)
}
