package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/henrier/rico-backend/internal/domain"
	"github.com/henrier/rico-backend/internal/query"
	"github.com/henrier/rico-backend/internal/service/ratingcompany"
)

type companyService interface {
	Create(ctx context.Context, in ratingcompany.CompanyInput) (domain.RatingCompany, error)
	Rename(ctx context.Context, id uuid.UUID, name string) error
	ReplaceScores(ctx context.Context, id uuid.UUID, scores []string) error
	ReplaceWebsiteFields(ctx context.Context, id uuid.UUID, url string, fields []domain.WebsiteField) error
	Page(ctx context.Context, filter domain.RatingCompanyFilter, page query.PageRequest) (query.Page[domain.RatingCompany], error)
	Get(ctx context.Context, id uuid.UUID) (domain.RatingCompany, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.RatingCompany, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CompanyHandler serves the rating company endpoints.
type CompanyHandler struct {
	svc companyService
	log *slog.Logger
}

// NewCompanyHandler creates a CompanyHandler.
func NewCompanyHandler(svc companyService, logger *slog.Logger) *CompanyHandler {
	return &CompanyHandler{svc: svc, log: logger.With("handler", "ratingcompany")}
}

// Page serves GET /api/rating-companies.
func (h *CompanyHandler) Page(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	filter := domain.RatingCompanyFilter{
		Name:   values.Get("name"),
		Scores: values["scores"],
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
	writeData(w, r, query.Page[companyDTO]{
		Items:    toCompanyDTOs(page.Items),
		Current:  page.Current,
		PageSize: page.PageSize,
		Total:    page.Total,
	})
}

// Get serves GET /api/rating-companies/{id}.
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	company, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, toCompanyDTO(company))
}

// GetByIDs serves POST /api/rating-companies/by-ids.
func (h *CompanyHandler) GetByIDs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []uuid.UUID `json:"ids"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	companies, err := h.svc.GetByIDs(r.Context(), req.IDs)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, toCompanyDTOs(companies))
}

// Create serves POST /api/rating-companies.
func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	company, err := h.svc.Create(r.Context(), req.toInput())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, toCompanyDTO(company))
}

// Rename serves PUT /api/rating-companies/{id}/name.
func (h *CompanyHandler) Rename(w http.ResponseWriter, r *http.Request) {
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

// ReplaceScores serves PUT /api/rating-companies/{id}/scores.
func (h *CompanyHandler) ReplaceScores(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req struct {
		Scores []string `json:"scores"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.svc.ReplaceScores(r.Context(), id, req.Scores); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, true)
}

// ReplaceWebsiteFields serves PUT /api/rating-companies/{id}/website.
func (h *CompanyHandler) ReplaceWebsiteFields(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req struct {
		OfficialWebsite       string                `json:"officialWebsite"`
		OfficialWebsiteFields []domain.WebsiteField `json:"officialWebsiteFields"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.svc.ReplaceWebsiteFields(r.Context(), id, req.OfficialWebsite, req.OfficialWebsiteFields); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, r, true)
}

// Delete serves DELETE /api/rating-companies/{id}.
func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
