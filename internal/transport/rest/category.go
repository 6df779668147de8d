package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/henrier/rico-backend/internal/domain"
	"github.com/henrier/rico-backend/internal/query"
)

type categoryService interface {
	Create(ctx context.Context, name domain.I18NString, types []domain.CategoryType, images []string) (domain.Category, error)
	Rename(ctx context.Context, id uuid.UUID, name domain.I18NString) error
	ReplaceImages(ctx context.Context, id uuid.UUID, images []string) error
	AddTypes(ctx context.Context, id uuid.UUID, types []domain.CategoryType) error
	RemoveTypes(ctx context.Context, id uuid.UUID, types []domain.CategoryType) error
	AddParents(ctx context.Context, id uuid.UUID, parentIDs []uuid.UUID) error
	RemoveParents(ctx context.Context, id uuid.UUID, parentIDs []uuid.UUID) error
	Page(ctx context.Context, filter domain.CategoryFilter, page query.PageRequest) (query.Page[domain.Category], error)
	Get(ctx context.Context, id uuid.UUID) (domain.Category, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryHandler serves the category taxonomy endpoints.
type CategoryHandler struct {
	svc categoryService
	log *slog.Logger
}

// NewCategoryHandler creates a CategoryHandler.
func NewCategoryHandler(svc categoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{svc: svc, log: logger.With("handler", "category")}
}

// Page serves GET /api/product-categories.
func (h *CategoryHandler) Page(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	filter := domain.CategoryFilter{
		Name: values.Get("name"),
		Type: domain.CategoryType(values.Get("categoryType")),
	}

	var err error
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
	writeData(w, r, query.Page[categoryDTO]{
		Items:    toCategoryDTOs(page.Items),
		Current:  page.Current,
		PageSize: page.PageSize,
		Total:    page.Total,
	})
}

// Get serves GET /api/product-categories/{id}.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	category, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, toCategoryDTO(category))
}

// GetByIDs serves POST /api/product-categories/by-ids.
func (h *CategoryHandler) GetByIDs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []uuid.UUID `json:"ids"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	categories, err := h.svc.GetByIDs(r.Context(), req.IDs)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, toCategoryDTOs(categories))
}

// Create serves POST /api/product-categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          domain.I18NString     `json:"name"`
		CategoryTypes []domain.CategoryType `json:"categoryTypes"`
		Images        []string              `json:"images"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	category, err := h.svc.Create(r.Context(), req.Name, req.CategoryTypes, req.Images)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, toCategoryDTO(category))
}

// Rename serves PUT /api/product-categories/{id}/name.
func (h *CategoryHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req struct {
		Name domain.I18NString `json:"name"`
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

// ReplaceImages serves PUT /api/product-categories/{id}/images.
func (h *CategoryHandler) ReplaceImages(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req struct {
		Images []string `json:"images"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.svc.ReplaceImages(r.Context(), id, req.Images); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, true)
}

func (h *CategoryHandler) mutateTypes(w http.ResponseWriter, r *http.Request,
	apply func(ctx context.Context, id uuid.UUID, types []domain.CategoryType) error,
) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req struct {
		CategoryTypes []domain.CategoryType `json:"categoryTypes"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := apply(r.Context(), id, req.CategoryTypes); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, true)
}

// AddTypes serves POST /api/product-categories/{id}/types.
func (h *CategoryHandler) AddTypes(w http.ResponseWriter, r *http.Request) {
	h.mutateTypes(w, r, h.svc.AddTypes)
}

// RemoveTypes serves DELETE /api/product-categories/{id}/types.
func (h *CategoryHandler) RemoveTypes(w http.ResponseWriter, r *http.Request) {
	h.mutateTypes(w, r, h.svc.RemoveTypes)
}

func (h *CategoryHandler) mutateParents(w http.ResponseWriter, r *http.Request,
	apply func(ctx context.Context, id uuid.UUID, parentIDs []uuid.UUID) error,
) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req struct {
		ParentCategories []uuid.UUID `json:"parentCategories"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := apply(r.Context(), id, req.ParentCategories); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, true)
}

// AddParents serves POST /api/product-categories/{id}/parents.
func (h *CategoryHandler) AddParents(w http.ResponseWriter, r *http.Request) {
	h.mutateParents(w, r, h.svc.AddParents)
}

// RemoveParents serves DELETE /api/product-categories/{id}/parents.
func (h *CategoryHandler) RemoveParents(w http.ResponseWriter, r *http.Request) {
	h.mutateParents(w, r, h.svc.RemoveParents)
}

// Delete serves DELETE /api/product-categories/{id}.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
