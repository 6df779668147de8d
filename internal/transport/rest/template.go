package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/henrier/rico-backend/internal/domain"
	"github.com/henrier/rico-backend/internal/query"
)

type templateService interface {
	CreateWithFields(ctx context.Context, name string, fields []domain.FieldDefinition) (domain.FieldTemplate, error)
	Rename(ctx context.Context, id uuid.UUID, name string) error
	ReplaceFields(ctx context.Context, id uuid.UUID, fields []domain.FieldDefinition, force bool) error
	Page(ctx context.Context, filter domain.TemplateFilter, page query.PageRequest) (query.Page[domain.FieldTemplate], error)
	Get(ctx context.Context, id uuid.UUID) (domain.FieldTemplate, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.FieldTemplate, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TemplateHandler serves the field template registry endpoints.
type TemplateHandler struct {
	svc templateService
	log *slog.Logger
}

// NewTemplateHandler creates a TemplateHandler.
func NewTemplateHandler(svc templateService, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{svc: svc, log: logger.With("handler", "template")}
}

func templateFilter(values url.Values) (domain.TemplateFilter, error) {
	filter := domain.TemplateFilter{
		Name:        values.Get("name"),
		FieldName:   values.Get("fieldName"),
		DisplayName: values.Get("displayName"),
		Description: values.Get("description"),
		FieldType:   domain.FieldType(values.Get("fieldType")),
		CreatedBy:   values.Get("createdBy"),
		UpdatedBy:   values.Get("updatedBy"),
	}

	if raw := values.Get("required"); raw != "" {
		required, err := strconv.ParseBool(raw)
		if err != nil {
			return domain.TemplateFilter{}, fmt.Errorf("parameter required must be a boolean: %w", domain.ErrValidation)
		}
		filter.Required = &required
	}

	var err error
	if filter.CreatedAtStart, err = timeParam(values, "createdAtStart"); err != nil {
		return domain.TemplateFilter{}, err
	}
	if filter.CreatedAtEnd, err = timeParam(values, "createdAtEnd"); err != nil {
		return domain.TemplateFilter{}, err
	}
	if filter.UpdatedAtStart, err = timeParam(values, "updatedAtStart"); err != nil {
		return domain.TemplateFilter{}, err
	}
	if filter.UpdatedAtEnd, err = timeParam(values, "updatedAtEnd"); err != nil {
		return domain.TemplateFilter{}, err
	}
	return filter, nil
}

func timeParam(values url.Values, name string) (*time.Time, error) {
	raw := values.Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("parameter %s must be an RFC 3339 timestamp: %w", name, domain.ErrValidation)
	}
	return &t, nil
}

// Page serves GET /api/card-effect-templates.
func (h *TemplateHandler) Page(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	filter, err := templateFilter(values)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	window := query.PageRequest{}
	if window.Current, err = intParam(values, "current"); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if window.PageSize, err = intParam(values, "pageSize"); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	page, err := h.svc.Page(r.Context(), filter, window)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, query.Page[templateDTO]{
		Items:    toTemplateDTOs(page.Items),
		Current:  page.Current,
		PageSize: page.PageSize,
		Total:    page.Total,
	})
}

// Get serves GET /api/card-effect-templates/{id}.
func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	tmpl, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, toTemplateDTO(tmpl))
}

// GetByIDs serves POST /api/card-effect-templates/by-ids.
func (h *TemplateHandler) GetByIDs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []uuid.UUID `json:"ids"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	templates, err := h.svc.GetByIDs(r.Context(), req.IDs)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, toTemplateDTOs(templates))
}

// Create serves POST /api/card-effect-templates.
func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string                   `json:"name"`
		Fields []domain.FieldDefinition `json:"fields"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	tmpl, err := h.svc.CreateWithFields(r.Context(), req.Name, req.Fields)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, toTemplateDTO(tmpl))
}

// Rename serves PUT /api/card-effect-templates/{id}/name.
func (h *TemplateHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.svc.Rename(r.Context(), id, req.Name); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, true)
}

// ReplaceFields serves PUT /api/card-effect-templates/{id}/fields.
func (h *TemplateHandler) ReplaceFields(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req struct {
		Fields []domain.FieldDefinition `json:"fields"`
		Force  bool                     `json:"force"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.svc.ReplaceFields(r.Context(), id, req.Fields, req.Force); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, true)
}

// Delete serves DELETE /api/card-effect-templates/{id}.
func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, true)
}
