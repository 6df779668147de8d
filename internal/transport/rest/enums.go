package rest

import (
	"log/slog"
	"net/http"

	"github.com/henrier/rico-backend/internal/domain"
)

// enumTables maps the wire enum name to its display option table. The admin
// frontend renders pickers from these.
var enumTables = map[string][]domain.EnumOption{
	"listingType":   domain.ListingTypeOptions,
	"listingStatus": domain.ListingStatusOptions,
	"cardCondition": domain.CardConditionOptions,
	"cardLanguage":  domain.CardLanguageOptions,
	"productType":   domain.ProductTypeOptions,
	"categoryType":  domain.CategoryTypeOptions,
}

// EnumHandler serves the enum display tables.
type EnumHandler struct {
	log *slog.Logger
}

// NewEnumHandler creates an EnumHandler.
func NewEnumHandler(logger *slog.Logger) *EnumHandler {
	return &EnumHandler{log: logger.With("handler", "enum")}
}

// List serves GET /api/enums: every table keyed by enum name.
func (h *EnumHandler) List(w http.ResponseWriter, r *http.Request) {
	writeData(w, r, enumTables)
}

// Get serves GET /api/enums/{name}: a single option table.
func (h *EnumHandler) Get(w http.ResponseWriter, r *http.Request) {
	table, ok := enumTables[r.PathValue("name")]
	if !ok {
		writeError(w, r, h.log, domain.ErrNotFound)
		return
	}
	writeData(w, r, table)
}
