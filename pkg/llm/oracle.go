package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/skankhunt44/schema-snap/pkg/jsonutil"
	"github.com/skankhunt44/schema-snap/pkg/models"
	"github.com/skankhunt44/schema-snap/pkg/prompts"
	"github.com/skankhunt44/schema-snap/pkg/retry"
)

const oracleTemperature = 0.1

// RelationshipOracle supplies externally sourced relationship
// suggestions for a set of table schemas. An empty result is a valid
// answer meaning "no suggestions".
type RelationshipOracle interface {
	SuggestRelationships(ctx context.Context, tables []models.TableSchema) ([]models.Relationship, error)
}

// Oracle asks an LLM for relationship suggestions and translates the
// response into the same shape the heuristic engine produces, tagged
// with a distinct origin.
type Oracle struct {
	client   LLMClient
	retryCfg *retry.Config
	timeout  time.Duration
	logger   *zap.Logger
}

var _ RelationshipOracle = (*Oracle)(nil)

// NewOracle creates an oracle backed by the given client. A nil
// retryCfg uses retry defaults. The timeout bounds one whole
// SuggestRelationships call, retries included; zero disables it.
func NewOracle(client LLMClient, retryCfg *retry.Config, timeout time.Duration, logger *zap.Logger) *Oracle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Oracle{client: client, retryCfg: retryCfg, timeout: timeout, logger: logger.Named("oracle")}
}

// suggestedRelationship is the wire shape of one oracle suggestion.
// Fields are raw so sloppy model output (numbers for strings, quoted
// confidences) still decodes.
type suggestedRelationship struct {
	FromTable  json.RawMessage `json:"from_table"`
	FromColumn json.RawMessage `json:"from_column"`
	ToTable    json.RawMessage `json:"to_table"`
	ToColumn   json.RawMessage `json:"to_column"`
	Type       json.RawMessage `json:"type"`
	Confidence json.RawMessage `json:"confidence"`
	Rationale  json.RawMessage `json:"rationale"`
}

// SuggestRelationships calls the model and returns validated
// suggestions. Suggestions referencing unknown tables or columns are
// dropped, confidences are clamped into [0,1], and unrecognized
// relationship types degrade to MANY_TO_MANY.
func (o *Oracle) SuggestRelationships(ctx context.Context, tables []models.TableSchema) ([]models.Relationship, error) {
	if len(tables) < 2 {
		return nil, nil
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	prompt := prompts.BuildRelationshipSuggestionPrompt(tables)

	response, err := retry.DoWithResult(ctx, o.retryCfg, func() (string, error) {
		return o.client.GenerateResponse(ctx, prompt, prompts.RelationshipSystemMessage, oracleTemperature)
	})
	if err != nil {
		return nil, fmt.Errorf("oracle request: %w", err)
	}

	raw, err := ExtractJSON(response)
	if err != nil {
		return nil, fmt.Errorf("oracle response: %w", err)
	}

	var suggestions []suggestedRelationship
	if err := json.Unmarshal([]byte(raw), &suggestions); err != nil {
		return nil, fmt.Errorf("decode oracle response: %w", err)
	}

	known := columnIndex(tables)
	relationships := make([]models.Relationship, 0, len(suggestions))
	dropped := 0

	for _, s := range suggestions {
		rel := models.Relationship{
			From: models.ColumnRef{
				Table:  jsonutil.FlexibleStringValue(s.FromTable),
				Column: jsonutil.FlexibleStringValue(s.FromColumn),
			},
			To: models.ColumnRef{
				Table:  jsonutil.FlexibleStringValue(s.ToTable),
				Column: jsonutil.FlexibleStringValue(s.ToColumn),
			},
			Type:        models.RelationshipType(jsonutil.FlexibleStringValue(s.Type)),
			Confidence:  clamp01(jsonutil.FlexibleFloatValue(s.Confidence)),
			Rationale:   jsonutil.FlexibleStringValue(s.Rationale),
			SuggestedBy: models.SuggestedByAI,
		}

		if !known[rel.From] || !known[rel.To] || rel.From.Table == rel.To.Table {
			dropped++
			continue
		}
		if !models.IsValidRelationshipType(rel.Type) {
			rel.Type = models.RelationshipManyToMany
		}

		relationships = append(relationships, rel)
	}

	o.logger.Info("Oracle suggestions received",
		zap.Int("suggested", len(suggestions)),
		zap.Int("accepted", len(relationships)),
		zap.Int("dropped", dropped))

	return relationships, nil
}

func columnIndex(tables []models.TableSchema) map[models.ColumnRef]bool {
	idx := make(map[models.ColumnRef]bool)
	for _, table := range tables {
		for _, col := range table.Columns {
			idx[models.ColumnRef{Table: table.Name, Column: col.Name}] = true
		}
	}
	return idx
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
