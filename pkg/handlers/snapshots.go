package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skankhunt44/schema-snap/pkg/apperrors"
	"github.com/skankhunt44/schema-snap/pkg/ingest"
	"github.com/skankhunt44/schema-snap/pkg/llm"
	"github.com/skankhunt44/schema-snap/pkg/logging"
	"github.com/skankhunt44/schema-snap/pkg/models"
	"github.com/skankhunt44/schema-snap/pkg/services"
	"github.com/skankhunt44/schema-snap/pkg/store"
)

// SnapshotStore is the persistence surface the snapshot handler needs.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot *models.SchemaSnapshot) error
	GetSnapshot(ctx context.Context, id uuid.UUID) (*models.SchemaSnapshot, error)
	ListSnapshots(ctx context.Context) ([]store.SnapshotSummary, error)
}

// CreateSnapshotRequest for POST /api/snapshots.
// Source selects the ingestion backend: CSV ingestion reads the listed
// files, database ingestion samples every user table behind the DSN,
// and "inline" takes pre-profiled tables straight from the body.
type CreateSnapshotRequest struct {
	Source string               `json:"source"` // "csv", "postgres", "mssql", or "inline"
	Paths  []string             `json:"paths,omitempty"`
	DSN    string               `json:"dsn,omitempty"`
	Tables []models.TableSchema `json:"tables,omitempty"`
}

// CreateSnapshotResponse summarizes the ingestion result.
type CreateSnapshotResponse struct {
	Snapshot    *models.SchemaSnapshot `json:"snapshot"`
	SkippedRows int                    `json:"skipped_rows,omitempty"`
}

// SnapshotsHandler handles schema snapshot ingestion and retrieval.
// The oracle is optional; when nil, snapshots carry heuristic
// relationships only.
type SnapshotsHandler struct {
	store  SnapshotStore
	oracle llm.RelationshipOracle
	limits ingest.Limits
	logger *zap.Logger
}

// NewSnapshotsHandler creates a new SnapshotsHandler.
func NewSnapshotsHandler(store SnapshotStore, oracle llm.RelationshipOracle, limits ingest.Limits, logger *zap.Logger) *SnapshotsHandler {
	return &SnapshotsHandler{store: store, oracle: oracle, limits: limits, logger: logger}
}

// RegisterRoutes registers the snapshot handler's routes on the given mux.
func (h *SnapshotsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/snapshots", h.Create)
	mux.HandleFunc("GET /api/snapshots", h.List)
	mux.HandleFunc("GET /api/snapshots/{sid}", h.Get)
}

// Create handles POST /api/snapshots.
// Ingests the requested source, infers relationships, consults the
// oracle when configured, and persists the merged snapshot.
func (h *SnapshotsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	result, err := h.ingestSource(r.Context(), req)
	if err != nil {
		// Driver errors can echo the DSN back, credentials included.
		h.logger.Error("Ingestion failed",
			zap.String("source", req.Source),
			zap.String("error", logging.SanitizeError(err)))
		h.writeError(w, http.StatusBadRequest, "ingestion_failed", logging.SanitizeError(err))
		return
	}

	heuristic := services.InferRelationships(result.tables, h.logger)

	var suggested []models.Relationship
	if h.oracle != nil {
		suggested, err = h.oracle.SuggestRelationships(r.Context(), result.tables)
		if err != nil {
			// Heuristic relationships still make a usable snapshot.
			h.logger.Warn("Oracle suggestion failed, continuing with heuristics only",
				zap.Error(err))
			suggested = nil
		}
	}

	snapshot := &models.SchemaSnapshot{
		Tables:        result.tables,
		Relationships: services.MergeRelationships(heuristic, suggested),
	}
	if err := h.store.SaveSnapshot(r.Context(), snapshot); err != nil {
		h.logger.Error("Failed to save snapshot", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "save_snapshot_failed", err.Error())
		return
	}

	h.logger.Info("Snapshot created",
		zap.String("snapshot_id", snapshot.ID.String()),
		zap.String("source", req.Source),
		zap.Int("tables", len(snapshot.Tables)),
		zap.Int("relationships", len(snapshot.Relationships)))

	response := CreateSnapshotResponse{Snapshot: snapshot, SkippedRows: result.skippedRows}
	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/snapshots.
func (h *SnapshotsHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.store.ListSnapshots(r.Context())
	if err != nil {
		h.logger.Error("Failed to list snapshots", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "list_snapshots_failed", err.Error())
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: summaries}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/snapshots/{sid}.
func (h *SnapshotsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseSnapshotID(w, r, h.logger)
	if !ok {
		return
	}

	snapshot, err := h.store.GetSnapshot(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "snapshot_not_found", "Snapshot not found")
			return
		}
		h.logger.Error("Failed to load snapshot",
			zap.String("snapshot_id", id.String()),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "get_snapshot_failed", err.Error())
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: snapshot}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

type ingestResult struct {
	tables      []models.TableSchema
	skippedRows int
}

func (h *SnapshotsHandler) ingestSource(ctx context.Context, req CreateSnapshotRequest) (ingestResult, error) {
	switch req.Source {
	case "inline":
		if len(req.Tables) == 0 {
			return ingestResult{}, fmt.Errorf("inline ingestion requires at least one table")
		}
		for i := range req.Tables {
			if req.Tables[i].Name == "" {
				return ingestResult{}, fmt.Errorf("inline table %d has no name", i)
			}
			for _, col := range req.Tables[i].Columns {
				if !models.IsValidDataType(col.DataType) {
					return ingestResult{}, fmt.Errorf("table %q column %q has unknown data type %q",
						req.Tables[i].Name, col.Name, col.DataType)
				}
			}
		}
		return ingestResult{tables: req.Tables}, nil

	case "csv":
		if len(req.Paths) == 0 {
			return ingestResult{}, fmt.Errorf("csv ingestion requires at least one path")
		}
		var result ingestResult
		for _, path := range req.Paths {
			parsed, err := ingest.ReadCSVFile(path, h.limits)
			if err != nil {
				return ingestResult{}, err
			}
			result.tables = append(result.tables, parsed.Table)
			result.skippedRows += parsed.SkippedRows
		}
		return result, nil

	case "postgres":
		if req.DSN == "" {
			return ingestResult{}, fmt.Errorf("postgres ingestion requires a dsn")
		}
		ingester, err := ingest.NewPostgresIngester(ctx, req.DSN, h.limits, h.logger)
		if err != nil {
			return ingestResult{}, err
		}
		defer ingester.Close()
		tables, err := ingester.IngestTables(ctx)
		if err != nil {
			return ingestResult{}, err
		}
		return ingestResult{tables: tables}, nil

	case "mssql":
		if req.DSN == "" {
			return ingestResult{}, fmt.Errorf("mssql ingestion requires a dsn")
		}
		ingester, err := ingest.NewMSSQLIngester(ctx, req.DSN, h.limits, h.logger)
		if err != nil {
			return ingestResult{}, err
		}
		defer ingester.Close()
		tables, err := ingester.IngestTables(ctx)
		if err != nil {
			return ingestResult{}, err
		}
		return ingestResult{tables: tables}, nil

	default:
		return ingestResult{}, fmt.Errorf("unsupported source %q", req.Source)
	}
}

func (h *SnapshotsHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
