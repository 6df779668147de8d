package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/henrier/rico-backend/internal/domain"
	"github.com/henrier/rico-backend/internal/service/catalog"
)

type productService interface {
	CreateProduct(ctx context.Context, in catalog.ProductInput) (domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, in catalog.ProductInput) (domain.Product, error)
	UpdateProductCardEffects(ctx context.Context, id uuid.UUID, raw map[string]any) error
	GetProduct(ctx context.Context, id uuid.UUID) (domain.Product, error)
	GetProducts(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// ProductHandler serves the product (SKU) endpoints.
type ProductHandler struct {
	svc productService
	log *slog.Logger
}

// NewProductHandler creates a ProductHandler.
func NewProductHandler(svc productService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{svc: svc, log: logger.With("handler", "product")}
}

// Get serves GET /api/products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	product, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, toProductDTO(product))
}

// GetByIDs serves POST /api/products/by-ids.
func (h *ProductHandler) GetByIDs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []uuid.UUID `json:"ids"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	products, err := h.svc.GetProducts(r.Context(), req.IDs)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, toProductDTOs(products))
}

// Create serves POST /api/products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	product, err := h.svc.CreateProduct(r.Context(), req.toInput())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, toProductDTO(product))
}

// Update serves PUT /api/products/{id}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req productRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	product, err := h.svc.UpdateProduct(r.Context(), id, req.toInput())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, toProductDTO(product))
}

// UpdateCardEffects serves PUT /api/products/{id}/card-effects.
func (h *ProductHandler) UpdateCardEffects(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req struct {
		CardEffects map[string]any `json:"cardEffects"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.svc.UpdateProductCardEffects(r.Context(), id, req.CardEffects); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, true)
}

// Delete serves DELETE /api/products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.svc.DeleteProduct(r.Context(), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, true)
}
