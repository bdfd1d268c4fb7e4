package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skankhunt44/schema-snap/pkg/apperrors"
	"github.com/skankhunt44/schema-snap/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testSnapshot() *models.SchemaSnapshot {
	rowCount := int64(2)
	return &models.SchemaSnapshot{
		Tables: []models.TableSchema{
			{
				Name:        "donors",
				EntityLabel: "donor",
				Columns: []models.ColumnProfile{
					{Name: "donor_id", DataType: models.DataTypeString, UniqueRatio: 1.0},
					{Name: "name", DataType: models.DataTypeString},
				},
				RowCount: &rowCount,
				SampleRows: []map[string]any{
					{"donor_id": "d1", "name": "Ada"},
					{"donor_id": "d2", "name": "Grace"},
				},
				Source: "csv",
			},
		},
		Relationships: []models.Relationship{
			{
				From:        models.ColumnRef{Table: "donations", Column: "donor_id"},
				To:          models.ColumnRef{Table: "donors", Column: "donor_id"},
				Type:        models.RelationshipOneToMany,
				Confidence:  0.9,
				SuggestedBy: models.SuggestedByHeuristic,
			},
		},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	snapshot := testSnapshot()
	require.NoError(t, s.SaveSnapshot(ctx, snapshot))
	assert.NotEqual(t, uuid.Nil, snapshot.ID)
	assert.False(t, snapshot.CreatedAt.IsZero())

	got, err := s.GetSnapshot(ctx, snapshot.ID)
	require.NoError(t, err)
	assert.Equal(t, snapshot.ID, got.ID)
	require.Len(t, got.Tables, 1)
	assert.Equal(t, "donors", got.Tables[0].Name)
	require.NotNil(t, got.Tables[0].RowCount)
	assert.Equal(t, int64(2), *got.Tables[0].RowCount)
	require.Len(t, got.Relationships, 1)
	assert.Equal(t, models.RelationshipOneToMany, got.Relationships[0].Type)
}

func TestGetSnapshot_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetSnapshot(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLatestSnapshot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.LatestSnapshot(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNoSnapshot)

	older := testSnapshot()
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, s.SaveSnapshot(ctx, older))

	newer := testSnapshot()
	require.NoError(t, s.SaveSnapshot(ctx, newer))

	latest, err := s.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, latest.ID)
}

func TestListSnapshots(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	summaries, err := s.ListSnapshots(ctx)
	require.NoError(t, err)
	assert.Empty(t, summaries)

	require.NoError(t, s.SaveSnapshot(ctx, testSnapshot()))

	summaries, err = s.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].TableCount)
	assert.Equal(t, 1, summaries[0].RelationshipCount)
}

func TestTemplateCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tmpl := &models.Template{
		Name:        "Donor Report",
		Description: "Quarterly donor summary",
		Fields: []models.TargetField{
			{ID: "f1", Name: "Donor Name", Required: true},
			{ID: "f2", Name: "Total Given"},
		},
	}
	require.NoError(t, s.CreateTemplate(ctx, tmpl))
	assert.NotEqual(t, uuid.Nil, tmpl.ID)

	got, err := s.GetTemplate(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "Donor Report", got.Name)
	require.Len(t, got.Fields, 2)
	assert.True(t, got.Fields[0].Required)
	assert.NotNil(t, got.Mappings)
	assert.Empty(t, got.Mappings)

	got.Name = "Donor Report v2"
	require.NoError(t, s.UpdateTemplate(ctx, got))

	got, err = s.GetTemplate(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "Donor Report v2", got.Name)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))

	require.NoError(t, s.DeleteTemplate(ctx, tmpl.ID))
	_, err = s.GetTemplate(ctx, tmpl.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTemplateUpdate_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	missing := &models.Template{ID: uuid.New(), Name: "ghost"}
	assert.ErrorIs(t, s.UpdateTemplate(ctx, missing), apperrors.ErrNotFound)
	assert.ErrorIs(t, s.DeleteTemplate(ctx, uuid.New()), apperrors.ErrNotFound)
	assert.ErrorIs(t, s.SetMappings(ctx, uuid.New(), nil), apperrors.ErrNotFound)
}

func TestSetMappings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tmpl := &models.Template{
		Name:   "Mapped",
		Fields: []models.TargetField{{ID: "f1", Name: "Total"}},
	}
	require.NoError(t, s.CreateTemplate(ctx, tmpl))

	confidence := 0.85
	mappings := map[string]*models.MappingEntry{
		"f1": {
			SourceFieldID: "donations.amount",
			Operation:     models.OpSum,
			Confidence:    &confidence,
		},
	}
	require.NoError(t, s.SetMappings(ctx, tmpl.ID, mappings))

	got, err := s.GetTemplate(ctx, tmpl.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Mappings["f1"])
	assert.Equal(t, "donations.amount", got.Mappings["f1"].SourceFieldID)
	assert.Equal(t, models.OpSum, got.Mappings["f1"].Op())
	require.NotNil(t, got.Mappings["f1"].Confidence)
	assert.Equal(t, 0.85, *got.Mappings["f1"].Confidence)
	assert.Equal(t, 1, got.MappedFieldCount())
}

func TestListTemplates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &models.Template{Name: "first", CreatedAt: time.Now().UTC().Add(-time.Minute)}
	second := &models.Template{Name: "second"}
	require.NoError(t, s.CreateTemplate(ctx, first))
	require.NoError(t, s.CreateTemplate(ctx, second))

	templates, err := s.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Equal(t, "first", templates[0].Name)
	assert.Equal(t, "second", templates[1].Name)
}

func TestSeedTemplates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedPath := filepath.Join(t.TempDir(), "templates.yaml")
	seed := `templates:
  - name: Donor Report
    description: Quarterly summary
    fields:
      - id: donor_name
        name: Donor Name
        required: true
      - id: total_given
        name: Total Given
`
	require.NoError(t, os.WriteFile(seedPath, []byte(seed), 0o644))

	require.NoError(t, s.SeedTemplates(ctx, seedPath))

	templates, err := s.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "Donor Report", templates[0].Name)
	require.Len(t, templates[0].Fields, 2)
	assert.True(t, templates[0].Fields[0].Required)

	// Seeding is idempotent, matched by name.
	require.NoError(t, s.SeedTemplates(ctx, seedPath))
	templates, err = s.ListTemplates(ctx)
	require.NoError(t, err)
	assert.Len(t, templates, 1)
}

func TestSeedTemplates_BadFile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	assert.Error(t, s.SeedTemplates(ctx, filepath.Join(t.TempDir(), "missing.yaml")))

	badPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(badPath, []byte("templates: [{fields: []}]"), 0o644))
	assert.Error(t, s.SeedTemplates(ctx, badPath))
}
