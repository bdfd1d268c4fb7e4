package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skankhunt44/schema-snap/pkg/apperrors"
	"github.com/skankhunt44/schema-snap/pkg/models"
	"github.com/skankhunt44/schema-snap/pkg/services"
)

// OutputStore is the persistence surface the output handler needs.
type OutputStore interface {
	GetTemplate(ctx context.Context, id uuid.UUID) (*models.Template, error)
	GetSnapshot(ctx context.Context, id uuid.UUID) (*models.SchemaSnapshot, error)
	LatestSnapshot(ctx context.Context) (*models.SchemaSnapshot, error)
}

// OutputHandler materializes template output rows against a snapshot.
type OutputHandler struct {
	store  OutputStore
	logger *zap.Logger
}

// NewOutputHandler creates a new OutputHandler.
func NewOutputHandler(store OutputStore, logger *zap.Logger) *OutputHandler {
	return &OutputHandler{store: store, logger: logger}
}

// RegisterRoutes registers the output handler's routes on the given mux.
func (h *OutputHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/templates/{tid}/output", h.Build)
}

// Build handles POST /api/templates/{tid}/output.
// The snapshot query parameter pins a specific snapshot; without it the
// newest snapshot is used.
func (h *OutputHandler) Build(w http.ResponseWriter, r *http.Request) {
	templateID, ok := ParseTemplateID(w, r, h.logger)
	if !ok {
		return
	}

	tmpl, err := h.store.GetTemplate(r.Context(), templateID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "template_not_found", "Template not found")
			return
		}
		h.logger.Error("Failed to load template",
			zap.String("template_id", templateID.String()),
			zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "get_template_failed", err.Error())
		return
	}

	snapshot, ok := h.loadSnapshot(w, r)
	if !ok {
		return
	}

	output, err := services.BuildOutput(tmpl, snapshot, h.logger)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNoMappedFields):
			h.writeError(w, http.StatusUnprocessableEntity, "no_mapped_fields", "Template has no mapped fields")
		case errors.Is(err, apperrors.ErrNoSnapshot):
			h.writeError(w, http.StatusConflict, "no_snapshot", "No schema snapshot available")
		default:
			h.logger.Error("Failed to build output",
				zap.String("template_id", templateID.String()),
				zap.Error(err))
			h.writeError(w, http.StatusInternalServerError, "build_output_failed", err.Error())
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: output}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *OutputHandler) loadSnapshot(w http.ResponseWriter, r *http.Request) (*models.SchemaSnapshot, bool) {
	if raw := r.URL.Query().Get("snapshot"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid_snapshot_id", "Invalid snapshot ID format")
			return nil, false
		}
		snapshot, err := h.store.GetSnapshot(r.Context(), id)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				h.writeError(w, http.StatusNotFound, "snapshot_not_found", "Snapshot not found")
				return nil, false
			}
			h.logger.Error("Failed to load snapshot",
				zap.String("snapshot_id", id.String()),
				zap.Error(err))
			h.writeError(w, http.StatusInternalServerError, "get_snapshot_failed", err.Error())
			return nil, false
		}
		return snapshot, true
	}

	snapshot, err := h.store.LatestSnapshot(r.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrNoSnapshot) {
			h.writeError(w, http.StatusConflict, "no_snapshot", "No schema snapshot available")
			return nil, false
		}
		h.logger.Error("Failed to load latest snapshot", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "get_snapshot_failed", err.Error())
		return nil, false
	}
	return snapshot, true
}

func (h *OutputHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
