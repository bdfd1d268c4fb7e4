package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skankhunt44/schema-snap/pkg/models"
	"github.com/skankhunt44/schema-snap/pkg/retry"
)

func oracleTables() []models.TableSchema {
	return []models.TableSchema{
		{Name: "donors", Columns: []models.ColumnProfile{
			{Name: "donor_id", DataType: models.DataTypeUUID},
		}},
		{Name: "donations", Columns: []models.ColumnProfile{
			{Name: "donor_id", DataType: models.DataTypeUUID},
			{Name: "amount", DataType: models.DataTypeNumber},
		}},
	}
}

func noRetry() *retry.Config {
	return &retry.Config{MaxRetries: 0, InitialDelay: 1, MaxDelay: 1, Multiplier: 1}
}

func TestOracleSuggestRelationships(t *testing.T) {
	mock := NewMockClient()
	mock.GenerateResponseFunc = func(_ context.Context, prompt, system string, _ float64) (string, error) {
		assert.Contains(t, prompt, "### donors")
		assert.NotEmpty(t, system)
		return `Here are the relationships:
[
  {"from_table":"donations","from_column":"donor_id","to_table":"donors","to_column":"donor_id","type":"ONE_TO_MANY","confidence":0.9,"rationale":"shared key"},
  {"from_table":"donations","from_column":"donor_id","to_table":"ghosts","to_column":"id","type":"ONE_TO_MANY","confidence":0.8,"rationale":"unknown table"},
  {"from_table":"donations","from_column":"amount","to_table":"donors","to_column":"donor_id","type":"SOMETHING_ELSE","confidence":"1.4","rationale":7}
]`, nil
	}

	oracle := NewOracle(mock, noRetry(), 0, zap.NewNop())
	rels, err := oracle.SuggestRelationships(context.Background(), oracleTables())
	require.NoError(t, err)
	require.Len(t, rels, 2, "suggestion referencing unknown table must be dropped")

	assert.Equal(t, models.RelationshipOneToMany, rels[0].Type)
	assert.Equal(t, 0.9, rels[0].Confidence)
	assert.Equal(t, models.SuggestedByAI, rels[0].SuggestedBy)

	assert.Equal(t, models.RelationshipManyToMany, rels[1].Type, "unrecognized type degrades")
	assert.Equal(t, 1.0, rels[1].Confidence, "confidence clamped into [0,1]")
	assert.Equal(t, "7", rels[1].Rationale)
}

func TestOracleSuggestRelationshipsClientError(t *testing.T) {
	mock := NewMockClient()
	mock.GenerateResponseFunc = func(context.Context, string, string, float64) (string, error) {
		return "", NewError(ErrorTypeAuth, "authentication failed", false, errors.New("HTTP 401"))
	}

	oracle := NewOracle(mock, noRetry(), 0, zap.NewNop())
	_, err := oracle.SuggestRelationships(context.Background(), oracleTables())
	assert.Error(t, err)
	assert.Equal(t, 1, mock.GenerateResponseCalls, "non-retryable errors fail fast")
}

func TestOracleSuggestRelationshipsRetriesTransientErrors(t *testing.T) {
	mock := NewMockClient()
	mock.GenerateResponseFunc = func(context.Context, string, string, float64) (string, error) {
		if mock.GenerateResponseCalls < 2 {
			return "", NewError(ErrorTypeEndpoint, "server error", true, errors.New("HTTP 503"))
		}
		return `[]`, nil
	}

	cfg := noRetry()
	cfg.MaxRetries = 2
	oracle := NewOracle(mock, cfg, 0, zap.NewNop())
	rels, err := oracle.SuggestRelationships(context.Background(), oracleTables())
	require.NoError(t, err)
	assert.Empty(t, rels)
	assert.Equal(t, 2, mock.GenerateResponseCalls)
}

func TestOracleSuggestRelationshipsGarbageResponse(t *testing.T) {
	mock := NewMockClient()
	mock.GenerateResponseFunc = func(context.Context, string, string, float64) (string, error) {
		return "I found nothing useful.", nil
	}

	oracle := NewOracle(mock, noRetry(), 0, zap.NewNop())
	_, err := oracle.SuggestRelationships(context.Background(), oracleTables())
	assert.Error(t, err)
}

func TestOracleTimeoutBoundsStalledClient(t *testing.T) {
	mock := NewMockClient()
	mock.GenerateResponseFunc = func(ctx context.Context, _, _ string, _ float64) (string, error) {
		// Simulates an endpoint that never answers.
		<-ctx.Done()
		return "", ctx.Err()
	}

	oracle := NewOracle(mock, noRetry(), 20*time.Millisecond, zap.NewNop())

	start := time.Now()
	_, err := oracle.SuggestRelationships(context.Background(), oracleTables())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestOracleSkipsSingleTable(t *testing.T) {
	mock := NewMockClient()
	oracle := NewOracle(mock, noRetry(), 0, zap.NewNop())

	rels, err := oracle.SuggestRelationships(context.Background(), oracleTables()[:1])
	require.NoError(t, err)
	assert.Nil(t, rels)
	assert.Equal(t, 0, mock.GenerateResponseCalls)
}
