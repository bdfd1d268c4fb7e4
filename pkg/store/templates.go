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

// CreateTemplate persists a new template. A zero ID and timestamps are
// filled in.
func (s *Store) CreateTemplate(ctx context.Context, tmpl *models.Template) error {
	if tmpl.ID == uuid.Nil {
		tmpl.ID = uuid.New()
	}
	now := time.Now().UTC()
	if tmpl.CreatedAt.IsZero() {
		tmpl.CreatedAt = now
	}
	tmpl.UpdatedAt = tmpl.CreatedAt

	fieldsJSON, mappingsJSON, err := marshalTemplateBody(tmpl)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO templates (id, name, description, fields, mappings, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tmpl.ID.String(), tmpl.Name, tmpl.Description, fieldsJSON, mappingsJSON,
		tmpl.CreatedAt, tmpl.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert template: %w", err)
	}
	return nil
}

// GetTemplate loads one template by ID. Returns apperrors.ErrNotFound
// when absent.
func (s *Store) GetTemplate(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, fields, mappings, created_at, updated_at
		 FROM templates WHERE id = ?`, id.String())
	return scanTemplate(row.Scan)
}

// ListTemplates returns all templates ordered by creation time.
func (s *Store) ListTemplates(ctx context.Context) ([]*models.Template, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, fields, mappings, created_at, updated_at
		 FROM templates ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	templates := []*models.Template{}
	for rows.Next() {
		tmpl, err := scanTemplate(rows.Scan)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tmpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return templates, nil
}

// UpdateTemplate replaces a template's name, description, and fields.
// Mappings are left untouched; use SetMappings for those.
func (s *Store) UpdateTemplate(ctx context.Context, tmpl *models.Template) error {
	fieldsJSON, err := json.Marshal(fieldsOrEmpty(tmpl.Fields))
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	tmpl.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx,
		`UPDATE templates SET name = ?, description = ?, fields = ?, updated_at = ? WHERE id = ?`,
		tmpl.Name, tmpl.Description, string(fieldsJSON), tmpl.UpdatedAt, tmpl.ID.String())
	if err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	return requireRowAffected(result)
}

// SetMappings replaces a template's mapping set wholesale.
func (s *Store) SetMappings(ctx context.Context, id uuid.UUID, mappings map[string]*models.MappingEntry) error {
	if mappings == nil {
		mappings = map[string]*models.MappingEntry{}
	}
	mappingsJSON, err := json.Marshal(mappings)
	if err != nil {
		return fmt.Errorf("marshal mappings: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE templates SET mappings = ?, updated_at = ? WHERE id = ?`,
		string(mappingsJSON), time.Now().UTC(), id.String())
	if err != nil {
		return fmt.Errorf("update mappings: %w", err)
	}
	return requireRowAffected(result)
}

// DeleteTemplate removes a template. Returns apperrors.ErrNotFound when
// no template with that ID exists.
func (s *Store) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return requireRowAffected(result)
}

func marshalTemplateBody(tmpl *models.Template) (fields, mappings string, err error) {
	fieldsJSON, err := json.Marshal(fieldsOrEmpty(tmpl.Fields))
	if err != nil {
		return "", "", fmt.Errorf("marshal fields: %w", err)
	}
	m := tmpl.Mappings
	if m == nil {
		m = map[string]*models.MappingEntry{}
	}
	mappingsJSON, err := json.Marshal(m)
	if err != nil {
		return "", "", fmt.Errorf("marshal mappings: %w", err)
	}
	return string(fieldsJSON), string(mappingsJSON), nil
}

func fieldsOrEmpty(fields []models.TargetField) []models.TargetField {
	if fields == nil {
		return []models.TargetField{}
	}
	return fields
}

func scanTemplate(scan func(...any) error) (*models.Template, error) {
	var (
		idStr       string
		name        string
		description string
		fieldsRaw   string
		mappingsRaw string
		createdAt   time.Time
		updatedAt   time.Time
	)
	if err := scan(&idStr, &name, &description, &fieldsRaw, &mappingsRaw, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan template: %w", err)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse template id %q: %w", idStr, err)
	}

	tmpl := &models.Template{
		ID:          id,
		Name:        name,
		Description: description,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
	if err := json.Unmarshal([]byte(fieldsRaw), &tmpl.Fields); err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}
	if err := json.Unmarshal([]byte(mappingsRaw), &tmpl.Mappings); err != nil {
		return nil, fmt.Errorf("unmarshal mappings: %w", err)
	}
	return tmpl, nil
}

func requireRowAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
