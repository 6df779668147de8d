package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/henrier/rico-backend/internal/domain"
	"github.com/henrier/rico-backend/internal/query"
	"github.com/henrier/rico-backend/internal/service/catalog"
)

type catalogService interface {
	Page(ctx context.Context, params catalog.PageParams) (query.Page[domain.Listing], error)
	Count(ctx context.Context, filters map[string][]string) (int, error)
	FacetsFor(ctx context.Context, filters map[string][]string) (catalog.Facets, error)
	DistinctCardScores(ctx context.Context, filters map[string][]string) ([]string, error)
	DistinctLevels(ctx context.Context, filters map[string][]string) ([]string, error)
	DistinctCategories(ctx context.Context, filters map[string][]string) ([]domain.Category, error)
	DistinctRatingCompanies(ctx context.Context, filters map[string][]string) ([]domain.RatingCompany, error)
	GetListing(ctx context.Context, id uuid.UUID) (domain.Listing, error)
	GetListings(ctx context.Context, ids []uuid.UUID) ([]domain.Listing, error)
	CreateListing(ctx context.Context, in catalog.ListingInput) (domain.Listing, error)
	CreateListings(ctx context.Context, inputs []catalog.ListingInput) ([]domain.Listing, error)
	UpdateListing(ctx context.Context, id uuid.UUID, in catalog.ListingInput) (domain.Listing, error)
	UpdateListingStatus(ctx context.Context, id uuid.UUID, status domain.ListingStatus) error
	UpdateListingStatuses(ctx context.Context, ids []uuid.UUID, status domain.ListingStatus) error
	DeleteListing(ctx context.Context, id uuid.UUID) error
	DeleteListings(ctx context.Context, ids []uuid.UUID) error
}

// CatalogHandler serves the personal product (listing) endpoints.
type CatalogHandler struct {
	svc catalogService
	log *slog.Logger
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(svc catalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{svc: svc, log: logger.With("handler", "catalog")}
}

// pageWindowParams are reserved query parameter names; everything else in
// the query string is a filter and flows to the predicate compiler verbatim.
var pageWindowParams = map[string]bool{
	"current":        true,
	"pageSize":       true,
	"sortFields":     true,
	"sortDirections": true,
}

func splitPageParams(values url.Values) (catalog.PageParams, error) {
	params := catalog.PageParams{
		Filters:        map[string][]string{},
		SortFields:     values["sortFields"],
		SortDirections: values["sortDirections"],
	}
	for key, vals := range values {
		if !pageWindowParams[key] {
			params.Filters[key] = vals
		}
	}

	var err error
	if params.Current, err = intParam(values, "current"); err != nil {
		return catalog.PageParams{}, err
	}
	if params.PageSize, err = intParam(values, "pageSize"); err != nil {
		return catalog.PageParams{}, err
	}
	return params, nil
}

func intParam(values url.Values, name string) (int, error) {
	raw := values.Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parameter %s must be an integer: %w", name, domain.ErrValidation)
	}
	return n, nil
}

func filterParams(values url.Values) map[string][]string {
	filters := map[string][]string{}
	for key, vals := range values {
		if !pageWindowParams[key] {
			filters[key] = vals
		}
	}
	return filters
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("malformed id %q: %w", r.PathValue("id"), domain.ErrValidation)
	}
	return id, nil
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("malformed request body: %w", domain.ErrValidation)
	}
	return nil
}

// Page serves GET /api/personal-products.
func (h *CatalogHandler) Page(w http.ResponseWriter, r *http.Request) {
	params, err := splitPageParams(r.URL.Query())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	page, err := h.svc.Page(r.Context(), params)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, toListingPageDTO(page))
}

// Count serves GET /api/personal-products/count.
func (h *CatalogHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.Count(r.Context(), filterParams(r.URL.Query()))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, count)
}

// Facets serves GET /api/personal-products/facets.
func (h *CatalogHandler) Facets(w http.ResponseWriter, r *http.Request) {
	facets, err := h.svc.FacetsFor(r.Context(), filterParams(r.URL.Query()))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, toFacetsDTO(facets))
}

// CardScores serves GET /api/personal-products/facets/card-scores.
func (h *CatalogHandler) CardScores(w http.ResponseWriter, r *http.Request) {
	scores, err := h.svc.DistinctCardScores(r.Context(), filterParams(r.URL.Query()))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, scores)
}

// Levels serves GET /api/personal-products/facets/levels.
func (h *CatalogHandler) Levels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.svc.DistinctLevels(r.Context(), filterParams(r.URL.Query()))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, levels)
}

// Categories serves GET /api/personal-products/facets/categories.
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.DistinctCategories(r.Context(), filterParams(r.URL.Query()))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, toCategoryDTOs(categories))
}

// RatingCompanies serves GET /api/personal-products/facets/rating-companies.
func (h *CatalogHandler) RatingCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.svc.DistinctRatingCompanies(r.Context(), filterParams(r.URL.Query()))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, toCompanyDTOs(companies))
}

// Get serves GET /api/personal-products/{id}.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	listing, err := h.svc.GetListing(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, toListingDTO(listing))
}

// GetByIDs serves POST /api/personal-products/by-ids.
func (h *CatalogHandler) GetByIDs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []uuid.UUID `json:"ids"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	listings, err := h.svc.GetListings(r.Context(), req.IDs)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, toListingDTOs(listings))
}

// Create serves POST /api/personal-products.
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req listingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	listing, err := h.svc.CreateListing(r.Context(), req.toInput())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, toListingDTO(listing))
}

// CreateBatch serves POST /api/personal-products/batch.
func (h *CatalogHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var reqs []listingRequest
	if err := decodeBody(r, &reqs); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	inputs := make([]catalog.ListingInput, 0, len(reqs))
	for _, req := range reqs {
		inputs = append(inputs, req.toInput())
	}
	listings, err := h.svc.CreateListings(r.Context(), inputs)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, toListingDTOs(listings))
}

// Update serves PUT /api/personal-products/{id}.
func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req listingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	listing, err := h.svc.UpdateListing(r.Context(), id, req.toInput())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, toListingDTO(listing))
}

// UpdateStatus serves PUT /api/personal-products/{id}/status.
func (h *CatalogHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req struct {
		Status domain.ListingStatus `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.svc.UpdateListingStatus(r.Context(), id, req.Status); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, true)
}

// UpdateStatusBatch serves PUT /api/personal-products/status.
func (h *CatalogHandler) UpdateStatusBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs    []uuid.UUID          `json:"ids"`
		Status domain.ListingStatus `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.svc.UpdateListingStatuses(r.Context(), req.IDs, req.Status); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, true)
}

// Delete serves DELETE /api/personal-products/{id}.
func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.svc.DeleteListing(r.Context(), id); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, true)
}

// DeleteBatch serves POST /api/personal-products/batch-delete.
func (h *CatalogHandler) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []uuid.UUID `json:"ids"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.svc.DeleteListings(r.Context(), req.IDs); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, true)
}
