package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/skankhunt44/schema-snap/pkg/apperrors"
	"github.com/skankhunt44/schema-snap/pkg/models"
)

// SnapshotSummary is the listing view of a stored snapshot.
type SnapshotSummary struct {
	ID                uuid.UUID `json:"id"`
	CreatedAt         time.Time `json:"created_at"`
	TableCount        int       `json:"table_count"`
	RelationshipCount int       `json:"relationship_count"`
}

// SaveSnapshot persists a snapshot. A zero ID and CreatedAt are filled in.
func (s *Store) SaveSnapshot(ctx context.Context, snapshot *models.SchemaSnapshot) error {
	if snapshot.ID == uuid.Nil {
		snapshot.ID = uuid.New()
	}
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now().UTC()
	}

	tablesJSON, err := json.Marshal(snapshot.Tables)
	if err != nil {
		return fmt.Errorf("marshal tables: %w", err)
	}
	relsJSON, err := json.Marshal(snapshot.Relationships)
	if err != nil {
		return fmt.Errorf("marshal relationships: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, created_at, tables, relationships) VALUES (?, ?, ?, ?)`,
		snapshot.ID.String(), snapshot.CreatedAt, string(tablesJSON), string(relsJSON))
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// GetSnapshot loads one snapshot by ID. Returns apperrors.ErrNotFound
// when no snapshot with that ID exists.
func (s *Store) GetSnapshot(ctx context.Context, id uuid.UUID) (*models.SchemaSnapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, tables, relationships FROM snapshots WHERE id = ?`,
		id.String())
	return scanSnapshot(row)
}

// LatestSnapshot loads the most recently created snapshot. Returns
// apperrors.ErrNoSnapshot when the store holds none.
func (s *Store) LatestSnapshot(ctx context.Context) (*models.SchemaSnapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, tables, relationships FROM snapshots ORDER BY created_at DESC, id DESC LIMIT 1`)
	snapshot, err := scanSnapshot(row)
	if err == apperrors.ErrNotFound {
		return nil, apperrors.ErrNoSnapshot
	}
	return snapshot, err
}

// ListSnapshots returns summaries of all snapshots, newest first.
func (s *Store) ListSnapshots(ctx context.Context) ([]SnapshotSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, tables, relationships FROM snapshots ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	summaries := []SnapshotSummary{}
	for rows.Next() {
		var (
			idStr     string
			createdAt time.Time
			tablesRaw string
			relsRaw   string
		)
		if err := rows.Scan(&idStr, &createdAt, &tablesRaw, &relsRaw); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}

		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("parse snapshot id %q: %w", idStr, err)
		}

		var tables []models.TableSchema
		if err := json.Unmarshal([]byte(tablesRaw), &tables); err != nil {
			return nil, fmt.Errorf("unmarshal tables: %w", err)
		}
		var rels []models.Relationship
		if err := json.Unmarshal([]byte(relsRaw), &rels); err != nil {
			return nil, fmt.Errorf("unmarshal relationships: %w", err)
		}

		summaries = append(summaries, SnapshotSummary{
			ID:                id,
			CreatedAt:         createdAt,
			TableCount:        len(tables),
			RelationshipCount: len(rels),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return summaries, nil
}

func scanSnapshot(row *sql.Row) (*models.SchemaSnapshot, error) {
	var (
		idStr     string
		createdAt time.Time
		tablesRaw string
		relsRaw   string
	)
	if err := row.Scan(&idStr, &createdAt, &tablesRaw, &relsRaw); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan snapshot: %w", err)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot id %q: %w", idStr, err)
	}

	snapshot := &models.SchemaSnapshot{ID: id, CreatedAt: createdAt}
	if err := json.Unmarshal([]byte(tablesRaw), &snapshot.Tables); err != nil {
		return nil, fmt.Errorf("unmarshal tables: %w", err)
	}
	if err := json.Unmarshal([]byte(relsRaw), &snapshot.Relationships); err != nil {
		return nil, fmt.Errorf("unmarshal relationships: %w", err)
	}
	return snapshot, nil
}
