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
	"github.com/skankhunt44/schema-snap/pkg/models"
)

// TemplateStore is the persistence surface the template handler needs.
type TemplateStore interface {
	CreateTemplate(ctx context.Context, tmpl *models.Template) error
	GetTemplate(ctx context.Context, id uuid.UUID) (*models.Template, error)
	ListTemplates(ctx context.Context) ([]*models.Template, error)
	UpdateTemplate(ctx context.Context, tmpl *models.Template) error
	SetMappings(ctx context.Context, id uuid.UUID, mappings map[string]*models.MappingEntry) error
	DeleteTemplate(ctx context.Context, id uuid.UUID) error
}

// TemplateListResponse for GET /api/templates.
type TemplateListResponse struct {
	Templates []*models.Template `json:"templates"`
	Total     int                `json:"total"`
}

// UpsertTemplateRequest for POST /api/templates and PUT /api/templates/{tid}.
type UpsertTemplateRequest struct {
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Fields      []models.TargetField `json:"fields"`
}

// SetMappingsRequest for PUT /api/templates/{tid}/mappings.
// Keys are target field IDs; a null entry clears that field's mapping.
type SetMappingsRequest struct {
	Mappings map[string]*models.MappingEntry `json:"mappings"`
}

// TemplatesHandler handles template CRUD and mapping updates.
type TemplatesHandler struct {
	store  TemplateStore
	logger *zap.Logger
}

// NewTemplatesHandler creates a new TemplatesHandler.
func NewTemplatesHandler(store TemplateStore, logger *zap.Logger) *TemplatesHandler {
	return &TemplatesHandler{store: store, logger: logger}
}

// RegisterRoutes registers the template handler's routes on the given mux.
func (h *TemplatesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/templates", h.Create)
	mux.HandleFunc("GET /api/templates", h.List)
	mux.HandleFunc("GET /api/templates/{tid}", h.Get)
	mux.HandleFunc("PUT /api/templates/{tid}", h.Update)
	mux.HandleFunc("DELETE /api/templates/{tid}", h.Delete)
	mux.HandleFunc("PUT /api/templates/{tid}/mappings", h.SetMappings)
}

// Create handles POST /api/templates.
func (h *TemplatesHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeUpsert(w, r)
	if !ok {
		return
	}

	tmpl := &models.Template{
		Name:        req.Name,
		Description: req.Description,
		Fields:      req.Fields,
	}
	if err := h.store.CreateTemplate(r.Context(), tmpl); err != nil {
		h.logger.Error("Failed to create template", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "create_template_failed", err.Error())
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: tmpl}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/templates.
func (h *TemplatesHandler) List(w http.ResponseWriter, r *http.Request) {
	templates, err := h.store.ListTemplates(r.Context())
	if err != nil {
		h.logger.Error("Failed to list templates", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "list_templates_failed", err.Error())
		return
	}

	response := TemplateListResponse{Templates: templates, Total: len(templates)}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/templates/{tid}.
func (h *TemplatesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseTemplateID(w, r, h.logger)
	if !ok {
		return
	}

	tmpl, err := h.store.GetTemplate(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, id, "get_template_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: tmpl}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/templates/{tid}.
// Replaces name, description, and fields; mappings are managed through
// the mappings subresource.
func (h *TemplatesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseTemplateID(w, r, h.logger)
	if !ok {
		return
	}
	req, ok := h.decodeUpsert(w, r)
	if !ok {
		return
	}

	tmpl := &models.Template{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Fields:      req.Fields,
	}
	if err := h.store.UpdateTemplate(r.Context(), tmpl); err != nil {
		h.respondStoreError(w, id, "update_template_failed", err)
		return
	}

	updated, err := h.store.GetTemplate(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, id, "get_template_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: updated}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/templates/{tid}.
func (h *TemplatesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseTemplateID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.store.DeleteTemplate(r.Context(), id); err != nil {
		h.respondStoreError(w, id, "delete_template_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "template deleted"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// SetMappings handles PUT /api/templates/{tid}/mappings.
func (h *TemplatesHandler) SetMappings(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseTemplateID(w, r, h.logger)
	if !ok {
		return
	}

	var req SetMappingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if err := validateMappings(req.Mappings); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_mapping", err.Error())
		return
	}

	if err := h.store.SetMappings(r.Context(), id, req.Mappings); err != nil {
		h.respondStoreError(w, id, "set_mappings_failed", err)
		return
	}

	updated, err := h.store.GetTemplate(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, id, "get_template_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: updated}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// validateMappings rejects entries with malformed source references or
// unknown operations. Nil entries are allowed; they clear a mapping.
func validateMappings(mappings map[string]*models.MappingEntry) error {
	for fieldID, entry := range mappings {
		if entry == nil {
			continue
		}
		if _, _, ok := entry.SourceRef(); !ok {
			return fmt.Errorf("%w: field %q source must be \"table.column\"", apperrors.ErrInvalidMapping, fieldID)
		}
		if entry.Operation != "" && !models.IsValidAggregateOp(entry.Operation) {
			return fmt.Errorf("%w: field %q has unknown operation %q", apperrors.ErrInvalidMapping, fieldID, entry.Operation)
		}
	}
	return nil
}

func (h *TemplatesHandler) decodeUpsert(w http.ResponseWriter, r *http.Request) (UpsertTemplateRequest, bool) {
	var req UpsertTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return UpsertTemplateRequest{}, false
	}
	if req.Name == "" {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Template name is required")
		return UpsertTemplateRequest{}, false
	}
	seen := make(map[string]bool, len(req.Fields))
	for _, f := range req.Fields {
		if f.ID == "" {
			h.writeError(w, http.StatusBadRequest, "invalid_request", "Every field needs an id")
			return UpsertTemplateRequest{}, false
		}
		if seen[f.ID] {
			h.writeError(w, http.StatusBadRequest, "invalid_request", fmt.Sprintf("Duplicate field id %q", f.ID))
			return UpsertTemplateRequest{}, false
		}
		seen[f.ID] = true
	}
	return req, true
}

func (h *TemplatesHandler) respondStoreError(w http.ResponseWriter, id uuid.UUID, code string, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "template_not_found", "Template not found")
		return
	}
	h.logger.Error("Template store operation failed",
		zap.String("template_id", id.String()),
		zap.Error(err))
	h.writeError(w, http.StatusInternalServerError, code, err.Error())
}

func (h *TemplatesHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
