package rest

import "net/http"

// Handlers groups every endpoint handler the router mounts.
type Handlers struct {
	Catalog  *CatalogHandler
	Product  *ProductHandler
	Template *TemplateHandler
	Category *CategoryHandler
	Company  *CompanyHandler
	Enum     *EnumHandler
	Health   *HealthHandler
}

// NewRouter mounts every endpoint on a ServeMux.
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health.Health)
	mux.HandleFunc("GET /health/live", h.Health.Live)
	mux.HandleFunc("GET /health/ready", h.Health.Ready)

	mux.HandleFunc("GET /api/personal-products", h.Catalog.Page)
	mux.HandleFunc("GET /api/personal-products/count", h.Catalog.Count)
	mux.HandleFunc("GET /api/personal-products/facets", h.Catalog.Facets)
	mux.HandleFunc("GET /api/personal-products/facets/card-scores", h.Catalog.CardScores)
	mux.HandleFunc("GET /api/personal-products/facets/levels", h.Catalog.Levels)
	mux.HandleFunc("GET /api/personal-products/facets/categories", h.Catalog.Categories)
	mux.HandleFunc("GET /api/personal-products/facets/rating-companies", h.Catalog.RatingCompanies)
	mux.HandleFunc("GET /api/personal-products/{id}", h.Catalog.Get)
	mux.HandleFunc("POST /api/personal-products/by-ids", h.Catalog.GetByIDs)
	mux.HandleFunc("POST /api/personal-products", h.Catalog.Create)
	mux.HandleFunc("POST /api/personal-products/batch", h.Catalog.CreateBatch)
	mux.HandleFunc("PUT /api/personal-products/{id}", h.Catalog.Update)
	mux.HandleFunc("PUT /api/personal-products/{id}/status", h.Catalog.UpdateStatus)
	mux.HandleFunc("PUT /api/personal-products/status", h.Catalog.UpdateStatusBatch)
	mux.HandleFunc("DELETE /api/personal-products/{id}", h.Catalog.Delete)
	mux.HandleFunc("POST /api/personal-products/batch-delete", h.Catalog.DeleteBatch)

	mux.HandleFunc("GET /api/products/{id}", h.Product.Get)
	mux.HandleFunc("POST /api/products/by-ids", h.Product.GetByIDs)
	mux.HandleFunc("POST /api/products", h.Product.Create)
	mux.HandleFunc("PUT /api/products/{id}", h.Product.Update)
	mux.HandleFunc("PUT /api/products/{id}/card-effects", h.Product.UpdateCardEffects)
	mux.HandleFunc("DELETE /api/products/{id}", h.Product.Delete)

	mux.HandleFunc("GET /api/card-effect-templates", h.Template.Page)
	mux.HandleFunc("GET /api/card-effect-templates/{id}", h.Template.Get)
	mux.HandleFunc("POST /api/card-effect-templates/by-ids", h.Template.GetByIDs)
	mux.HandleFunc("POST /api/card-effect-templates", h.Template.Create)
	mux.HandleFunc("PUT /api/card-effect-templates/{id}/name", h.Template.Rename)
	mux.HandleFunc("PUT /api/card-effect-templates/{id}/fields", h.Template.ReplaceFields)
	mux.HandleFunc("DELETE /api/card-effect-templates/{id}", h.Template.Delete)

	mux.HandleFunc("GET /api/product-categories", h.Category.Page)
	mux.HandleFunc("GET /api/product-categories/{id}", h.Category.Get)
	mux.HandleFunc("POST /api/product-categories/by-ids", h.Category.GetByIDs)
	mux.HandleFunc("POST /api/product-categories", h.Category.Create)
	mux.HandleFunc("PUT /api/product-categories/{id}/name", h.Category.Rename)
	mux.HandleFunc("PUT /api/product-categories/{id}/images", h.Category.ReplaceImages)
	mux.HandleFunc("POST /api/product-categories/{id}/types", h.Category.AddTypes)
	mux.HandleFunc("DELETE /api/product-categories/{id}/types", h.Category.RemoveTypes)
	mux.HandleFunc("POST /api/product-categories/{id}/parents", h.Category.AddParents)
	mux.HandleFunc("DELETE /api/product-categories/{id}/parents", h.Category.RemoveParents)
	mux.HandleFunc("DELETE /api/product-categories/{id}", h.Category.Delete)

	mux.HandleFunc("GET /api/rating-companies", h.Company.Page)
	mux.HandleFunc("GET /api/rating-companies/{id}", h.Company.Get)
	mux.HandleFunc("POST /api/rating-companies/by-ids", h.Company.GetByIDs)
	mux.HandleFunc("POST /api/rating-companies", h.Company.Create)
	mux.HandleFunc("PUT /api/rating-companies/{id}/name", h.Company.Rename)
	mux.HandleFunc("PUT /api/rating-companies/{id}/scores", h.Company.ReplaceScores)
	mux.HandleFunc("PUT /api/rating-companies/{id}/website", h.Company.ReplaceWebsiteFields)
	mux.HandleFunc("DELETE /api/rating-companies/{id}", h.Company.Delete)

	mux.HandleFunc("GET /api/enums", h.Enum.List)
	mux.HandleFunc("GET /api/enums/{name}", h.Enum.Get)

	return mux
}
