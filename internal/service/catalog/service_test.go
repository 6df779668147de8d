package catalog

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henrier/rico-backend/internal/config"
	"github.com/henrier/rico-backend/internal/domain"
	"github.com/henrier/rico-backend/internal/query"
	"github.com/henrier/rico-backend/pkg/ctxutil"
)

// ===========================================================================
// Manual mocks (moq-style with func fields)
// ===========================================================================

type mockListingRepo struct {
	FindPageFunc                 func(ctx context.Context, node query.Node, order []query.OrderBy, page query.PageRequest) ([]domain.Listing, error)
	CountFunc                    func(ctx context.Context, node query.Node) (int, error)
	DistinctCardScoresFunc       func(ctx context.Context, node query.Node) ([]string, error)
	DistinctProductIDsFunc       func(ctx context.Context, node query.Node) ([]uuid.UUID, error)
	DistinctRatingCompanyIDsFunc func(ctx context.Context, node query.Node) ([]uuid.UUID, error)
	GetByIDFunc                  func(ctx context.Context, id uuid.UUID) (domain.Listing, error)
	GetByIDsFunc                 func(ctx context.Context, ids []uuid.UUID) ([]domain.Listing, error)
	CreateFunc                   func(ctx context.Context, l domain.Listing) (domain.Listing, error)
	UpdateFunc                   func(ctx context.Context, l domain.Listing) (domain.Listing, error)
	UpdateStatusFunc             func(ctx context.Context, id uuid.UUID, status domain.ListingStatus, actor domain.ActorRef) error
	DeleteFunc                   func(ctx context.Context, id uuid.UUID) error
}

func (m *mockListingRepo) FindPage(ctx context.Context, node query.Node, order []query.OrderBy, page query.PageRequest) ([]domain.Listing, error) {
	if m.FindPageFunc != nil {
		return m.FindPageFunc(ctx, node, order, page)
	}
	return []domain.Listing{}, nil
}

func (m *mockListingRepo) Count(ctx context.Context, node query.Node) (int, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx, node)
	}
	return 0, nil
}

func (m *mockListingRepo) DistinctCardScores(ctx context.Context, node query.Node) ([]string, error) {
	if m.DistinctCardScoresFunc != nil {
		return m.DistinctCardScoresFunc(ctx, node)
	}
	return []string{}, nil
}

func (m *mockListingRepo) DistinctProductIDs(ctx context.Context, node query.Node) ([]uuid.UUID, error) {
	if m.DistinctProductIDsFunc != nil {
		return m.DistinctProductIDsFunc(ctx, node)
	}
	return []uuid.UUID{}, nil
}

func (m *mockListingRepo) DistinctRatingCompanyIDs(ctx context.Context, node query.Node) ([]uuid.UUID, error) {
	if m.DistinctRatingCompanyIDsFunc != nil {
		return m.DistinctRatingCompanyIDsFunc(ctx, node)
	}
	return []uuid.UUID{}, nil
}

func (m *mockListingRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Listing, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return domain.Listing{}, domain.ErrNotFound
}

func (m *mockListingRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Listing, error) {
	if m.GetByIDsFunc != nil {
		return m.GetByIDsFunc(ctx, ids)
	}
	return []domain.Listing{}, nil
}

func (m *mockListingRepo) Create(ctx context.Context, l domain.Listing) (domain.Listing, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, l)
	}
	l.ID = uuid.New()
	return l, nil
}

func (m *mockListingRepo) Update(ctx context.Context, l domain.Listing) (domain.Listing, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, l)
	}
	return l, nil
}

func (m *mockListingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ListingStatus, actor domain.ActorRef) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, actor)
	}
	return nil
}

func (m *mockListingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

type mockProductRepo struct {
	GetByIDFunc                 func(ctx context.Context, id uuid.UUID) (domain.Product, error)
	GetByIDsFunc                func(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error)
	DistinctLevelsByIDsFunc     func(ctx context.Context, ids []uuid.UUID) ([]string, error)
	CategoryIDsByProductIDsFunc func(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
	CreateFunc                  func(ctx context.Context, p domain.Product) (domain.Product, error)
	UpdateFunc                  func(ctx context.Context, p domain.Product) (domain.Product, error)
	UpdateCardEffectsFunc       func(ctx context.Context, id uuid.UUID, effects []domain.FieldValue, actor domain.ActorRef) error
	DeleteFunc                  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockProductRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return domain.Product{}, domain.ErrNotFound
}

func (m *mockProductRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error) {
	if m.GetByIDsFunc != nil {
		return m.GetByIDsFunc(ctx, ids)
	}
	return []domain.Product{}, nil
}

func (m *mockProductRepo) DistinctLevelsByIDs(ctx context.Context, ids []uuid.UUID) ([]string, error) {
	if m.DistinctLevelsByIDsFunc != nil {
		return m.DistinctLevelsByIDsFunc(ctx, ids)
	}
	return []string{}, nil
}

func (m *mockProductRepo) CategoryIDsByProductIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if m.CategoryIDsByProductIDsFunc != nil {
		return m.CategoryIDsByProductIDsFunc(ctx, ids)
	}
	return []uuid.UUID{}, nil
}

func (m *mockProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	p.ID = uuid.New()
	return p, nil
}

func (m *mockProductRepo) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, p)
	}
	return p, nil
}

func (m *mockProductRepo) UpdateCardEffects(ctx context.Context, id uuid.UUID, effects []domain.FieldValue, actor domain.ActorRef) error {
	if m.UpdateCardEffectsFunc != nil {
		return m.UpdateCardEffectsFunc(ctx, id, effects, actor)
	}
	return nil
}

func (m *mockProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

type mockCategoryRepo struct {
	GetByIDsFunc func(ctx context.Context, ids []uuid.UUID) ([]domain.Category, error)
}

func (m *mockCategoryRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Category, error) {
	if m.GetByIDsFunc != nil {
		return m.GetByIDsFunc(ctx, ids)
	}
	return []domain.Category{}, nil
}

type mockCompanyRepo struct {
	GetByIDsFunc func(ctx context.Context, ids []uuid.UUID) ([]domain.RatingCompany, error)
}

func (m *mockCompanyRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.RatingCompany, error) {
	if m.GetByIDsFunc != nil {
		return m.GetByIDsFunc(ctx, ids)
	}
	return []domain.RatingCompany{}, nil
}

type mockTemplateRepo struct {
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (domain.FieldTemplate, error)
}

func (m *mockTemplateRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.FieldTemplate, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return domain.FieldTemplate{}, domain.ErrNotFound
}

type mockTxManager struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.RunInTxFunc != nil {
		return m.RunInTxFunc(ctx, fn)
	}
	return fn(ctx)
}

// ===========================================================================
// Fixtures
// ===========================================================================

type fixture struct {
	listings   *mockListingRepo
	products   *mockProductRepo
	categories *mockCategoryRepo
	companies  *mockCompanyRepo
	templates  *mockTemplateRepo
	tx         *mockTxManager
	svc        *Service
}

func newFixture(cfg config.CatalogConfig) *fixture {
	f := &fixture{
		listings:   &mockListingRepo{},
		products:   &mockProductRepo{},
		categories: &mockCategoryRepo{},
		companies:  &mockCompanyRepo{},
		templates:  &mockTemplateRepo{},
		tx:         &mockTxManager{},
	}
	if cfg.FacetConcurrency == 0 {
		cfg.FacetConcurrency = 4
	}
	if cfg.FacetChunkSize == 0 {
		cfg.FacetChunkSize = 500
	}
	f.svc = NewService(
		slog.New(slog.DiscardHandler),
		f.listings, f.products, f.categories, f.companies, f.templates, f.tx,
		cfg,
		config.PaginationConfig{DefaultPageSize: 20, MinPageSize: 1, MaxPageSize: 100},
	)
	return f
}

func validListingInput() ListingInput {
	return ListingInput{
		ProductID: uuid.New(),
		OwnerID:   uuid.New(),
		Type:      domain.ListingTypeRawCard,
		Status:    domain.ListingStatusPendingListing,
		Condition: domain.CardConditionMint,
		Price:     10,
		Quantity:  1,
	}
}

func actorCtx(a ctxutil.Actor) context.Context {
	return ctxutil.WithActor(context.Background(), a)
}

// ===========================================================================
// Page / Count
// ===========================================================================

func TestService_Page_NormalizesWindowAndReturnsTotal(t *testing.T) {
	t.Parallel()
	f := newFixture(config.CatalogConfig{})

	var gotWindow query.PageRequest
	f.listings.FindPageFunc = func(_ context.Context, _ query.Node, _ []query.OrderBy, page query.PageRequest) ([]domain.Listing, error) {
		gotWindow = page
		return []domain.Listing{{ID: uuid.New()}}, nil
	}
	f.listings.CountFunc = func(context.Context, query.Node) (int, error) { return 42, nil }

	page, err := f.svc.Page(context.Background(), PageParams{
		Filters:  map[string][]string{"minPrice": {"5"}},
		Current:  0,
		PageSize: 5000, // above max, clamped
	})
	require.NoError(t, err)

	assert.Equal(t, 1, gotWindow.Current)
	assert.Equal(t, 100, gotWindow.PageSize)
	assert.Equal(t, 42, page.Total)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 1, page.Current)
	assert.Equal(t, 100, page.PageSize)
}

func TestService_Page_InvalidFilterRejected(t *testing.T) {
	t.Parallel()
	f := newFixture(config.CatalogConfig{})

	called := false
	f.listings.FindPageFunc = func(context.Context, query.Node, []query.OrderBy, query.PageRequest) ([]domain.Listing, error) {
		called = true
		return nil, nil
	}

	_, err := f.svc.Page(context.Background(), PageParams{
		Filters: map[string][]string{"bogusParam": {"x"}},
	})

	var qerr *domain.QueryError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, domain.QueryUnknownField, qerr.Code)
	assert.False(t, called, "storage must not be touched on compile failure")
}

func TestService_Page_InvertedRangeRejected(t *testing.T) {
	t.Parallel()
	f := newFixture(config.CatalogConfig{})

	_, err := f.svc.Page(context.Background(), PageParams{
		Filters: map[string][]string{"minPrice": {"50"}, "maxPrice": {"10"}},
	})

	var qerr *domain.QueryError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, domain.QueryInvalidRange, qerr.Code)
}

func TestService_Count(t *testing.T) {
	t.Parallel()
	f := newFixture(config.CatalogConfig{})
	f.listings.CountFunc = func(context.Context, query.Node) (int, error) { return 7, nil }

	count, err := f.svc.Count(context.Background(), map[string][]string{"status": {"LISTED"}})
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

// ===========================================================================
// Facets
// ===========================================================================

func TestService_FacetsFor_ResolvesAllFacets(t *testing.T) {
	t.Parallel()
	f := newFixture(config.CatalogConfig{FacetConcurrency: 2})

	productIDs := []uuid.UUID{uuid.New(), uuid.New()}
	categoryID := uuid.New()
	companyID := uuid.New()

	f.listings.DistinctProductIDsFunc = func(context.Context, query.Node) ([]uuid.UUID, error) {
		return productIDs, nil
	}
	f.listings.DistinctCardScoresFunc = func(context.Context, query.Node) ([]string, error) {
		return []string{"9.5", "10"}, nil
	}
	f.listings.DistinctRatingCompanyIDsFunc = func(context.Context, query.Node) ([]uuid.UUID, error) {
		return []uuid.UUID{companyID}, nil
	}
	f.products.DistinctLevelsByIDsFunc = func(_ context.Context, ids []uuid.UUID) ([]string, error) {
		assert.Equal(t, productIDs, ids, "level facet must use the first-hop product set")
		return []string{"SR", "UR"}, nil
	}
	f.products.CategoryIDsByProductIDsFunc = func(_ context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
		assert.Equal(t, productIDs, ids, "category facet must use the first-hop product set")
		return []uuid.UUID{categoryID}, nil
	}
	f.categories.GetByIDsFunc = func(_ context.Context, ids []uuid.UUID) ([]domain.Category, error) {
		return []domain.Category{{ID: categoryID}}, nil
	}
	f.companies.GetByIDsFunc = func(_ context.Context, ids []uuid.UUID) ([]domain.RatingCompany, error) {
		return []domain.RatingCompany{{ID: companyID, Name: "PSA"}}, nil
	}

	facets, err := f.svc.FacetsFor(context.Background(), map[string][]string{"status": {"LISTED"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"9.5", "10"}, facets.CardScores)
	assert.Equal(t, []string{"SR", "UR"}, facets.Levels)
	require.Len(t, facets.Categories, 1)
	assert.Equal(t, categoryID, facets.Categories[0].ID)
	require.Len(t, facets.RatingCompanies, 1)
	assert.Equal(t, "PSA", facets.RatingCompanies[0].Name)
}

func TestService_FacetsFor_SubQueryFailureAborts(t *testing.T) {
	t.Parallel()
	f := newFixture(config.CatalogConfig{FacetConcurrency: 2})

	boom := errors.New("storage down")
	f.listings.DistinctCardScoresFunc = func(context.Context, query.Node) ([]string, error) {
		return nil, boom
	}

	_, err := f.svc.FacetsFor(context.Background(), map[string][]string{})
	require.ErrorIs(t, err, boom)
}

func TestService_DistinctCardScores(t *testing.T) {
	t.Parallel()
	f := newFixture(config.CatalogConfig{})

	f.listings.DistinctCardScoresFunc = func(context.Context, query.Node) ([]string, error) {
		return []string{"9.5", "10"}, nil
	}

	scores, err := f.svc.DistinctCardScores(context.Background(), map[string][]string{"status": {"LISTED"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"9.5", "10"}, scores)

	_, err = f.svc.DistinctCardScores(context.Background(), map[string][]string{"bogus": {"x"}})
	var qerr *domain.QueryError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, domain.QueryUnknownField, qerr.Code)
}

func TestService_DistinctLevels_ChunksSecondHop(t *testing.T) {
	t.Parallel()
	f := newFixture(config.CatalogConfig{FacetConcurrency: 1, FacetChunkSize: 2})

	productIDs := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	f.listings.DistinctProductIDsFunc = func(context.Context, query.Node) ([]uuid.UUID, error) {
		return productIDs, nil
	}

	var chunkSizes []int
	perChunk := [][]string{{"SR", "UR"}, {"UR", "HR"}, {"SR"}}
	f.products.DistinctLevelsByIDsFunc = func(_ context.Context, ids []uuid.UUID) ([]string, error) {
		chunkSizes = append(chunkSizes, len(ids))
		return perChunk[len(chunkSizes)-1], nil
	}

	levels, err := f.svc.DistinctLevels(context.Background(), map[string][]string{})
	require.NoError(t, err)

	assert.Equal(t, []int{2, 2, 1}, chunkSizes, "five product ids must fan out as 2+2+1 with chunk size 2")
	assert.Equal(t, []string{"HR", "SR", "UR"}, levels, "per-chunk duplicates must merge into one sorted set")
}

func TestService_DistinctCategories_MergesChunkedIDs(t *testing.T) {
	t.Parallel()
	f := newFixture(config.CatalogConfig{FacetConcurrency: 1, FacetChunkSize: 2})

	productIDs := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	shared := uuid.New()
	only := uuid.New()
	f.listings.DistinctProductIDsFunc = func(context.Context, query.Node) ([]uuid.UUID, error) {
		return productIDs, nil
	}

	var calls int
	f.products.CategoryIDsByProductIDsFunc = func(_ context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
		calls++
		if calls == 1 {
			return []uuid.UUID{shared, only}, nil
		}
		return []uuid.UUID{shared}, nil
	}

	var fetched []uuid.UUID
	f.categories.GetByIDsFunc = func(_ context.Context, ids []uuid.UUID) ([]domain.Category, error) {
		fetched = ids
		return []domain.Category{{ID: shared}, {ID: only}}, nil
	}

	categories, err := f.svc.DistinctCategories(context.Background(), map[string][]string{})
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Equal(t, []uuid.UUID{shared, only}, fetched, "overlapping chunk results must collapse to one id set")
	assert.Len(t, categories, 2)
}

func TestService_DistinctRatingCompanies(t *testing.T) {
	t.Parallel()
	f := newFixture(config.CatalogConfig{})

	companyID := uuid.New()
	f.listings.DistinctRatingCompanyIDsFunc = func(context.Context, query.Node) ([]uuid.UUID, error) {
		return []uuid.UUID{companyID}, nil
	}
	f.companies.GetByIDsFunc = func(_ context.Context, ids []uuid.UUID) ([]domain.RatingCompany, error) {
		require.Equal(t, []uuid.UUID{companyID}, ids)
		return []domain.RatingCompany{{ID: companyID, Name: "PSA"}}, nil
	}

	companies, err := f.svc.DistinctRatingCompanies(context.Background(), map[string][]string{})
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "PSA", companies[0].Name)
}

// ===========================================================================
// Listing commands
// ===========================================================================

func TestService_CreateListing_StampsActor(t *testing.T) {
	t.Parallel()
	f := newFixture(config.CatalogConfig{})

	actor := ctxutil.Actor{ID: uuid.New(), Name: "operator"}
	var created domain.Listing
	f.listings.CreateFunc = func(_ context.Context, l domain.Listing) (domain.Listing, error) {
		created = l
		l.ID = uuid.New()
		return l, nil
	}

	_, err := f.svc.CreateListing(actorCtx(actor), validListingInput())
	require.NoError(t, err)
	assert.Equal(t, actor.ID, created.Audit.CreatedBy.ID)
	assert.Equal(t, actor.Name, created.Audit.CreatedBy.Name)
}

func TestService_CreateListing_Validation(t *testing.T) {
	t.Parallel()
	f := newFixture(config.CatalogConfig{})

	tests := []struct {
		name   string
		mutate func(*ListingInput)
	}{
		{"unknown type", func(in *ListingInput) { in.Type = "PLUSH" }},
		{"unknown status", func(in *ListingInput) { in.Status = "GONE" }},
		{"unknown condition", func(in *ListingInput) { in.Condition = "CRUMPLED" }},
		{"negative price", func(in *ListingInput) { in.Price = -1 }},
		{"negative quantity", func(in *ListingInput) { in.Quantity = -1 }},
		{"rated type without grading", func(in *ListingInput) { in.Type = domain.ListingTypeRatedCard }},
		{"grading on raw listing", func(in *ListingInput) {
			in.RatedCard = &domain.RatedCard{RatingCompanyID: uuid.New()}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validListingInput()
			tt.mutate(&in)
			_, err := f.svc.CreateListing(context.Background(), in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestService_CreateListings_AtomicBatch(t *testing.T) {
	t.Parallel()
	f := newFixture(config.CatalogConfig{})

	boom := errors.New("insert failed")
	var attempts int
	f.listings.CreateFunc = func(_ context.Context, l domain.Listing) (domain.Listing, error) {
		attempts++
		if attempts == 2 {
			return domain.Listing{}, boom
		}
		l.ID = uuid.New()
		return l, nil
	}

	var txRan bool
	f.tx.RunInTxFunc = func(ctx context.Context, fn func(ctx context.Context) error) error {
		txRan = true
		return fn(ctx)
	}

	_, err := f.svc.CreateListings(context.Background(),
		[]ListingInput{validListingInput(), validListingInput()})
	require.ErrorIs(t, err, boom)
	assert.True(t, txRan, "batch create must run inside a transaction")
}

func TestService_CreateListings_RejectsBatchBeforeTx(t *testing.T) {
	t.Parallel()
	f := newFixture(config.CatalogConfig{})

	var txRan bool
	f.tx.RunInTxFunc = func(ctx context.Context, fn func(ctx context.Context) error) error {
		txRan = true
		return fn(ctx)
	}

	bad := validListingInput()
	bad.Price = -5
	_, err := f.svc.CreateListings(context.Background(), []ListingInput{validListingInput(), bad})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.False(t, txRan, "invalid batch must be rejected before opening a transaction")
}

func TestService_UpdateListingStatus_WorkflowGate(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	current := domain.Listing{ID: id, Status: domain.ListingStatusSoldOut}

	t.Run("enforced rejects backward jump", func(t *testing.T) {
		t.Parallel()
		f := newFixture(config.CatalogConfig{EnforceStatusFlow: true})
		f.listings.GetByIDFunc = func(context.Context, uuid.UUID) (domain.Listing, error) {
			return current, nil
		}

		err := f.svc.UpdateListingStatus(context.Background(), id, domain.ListingStatusPendingListing)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("enforced allows forward step", func(t *testing.T) {
		t.Parallel()
		f := newFixture(config.CatalogConfig{EnforceStatusFlow: true})
		f.listings.GetByIDFunc = func(context.Context, uuid.UUID) (domain.Listing, error) {
			return domain.Listing{ID: id, Status: domain.ListingStatusPendingListing}, nil
		}

		err := f.svc.UpdateListingStatus(context.Background(), id, domain.ListingStatusListed)
		assert.NoError(t, err)
	})

	t.Run("unenforced allows any valid status", func(t *testing.T) {
		t.Parallel()
		f := newFixture(config.CatalogConfig{EnforceStatusFlow: false})
		f.listings.GetByIDFunc = func(context.Context, uuid.UUID) (domain.Listing, error) {
			return current, nil
		}

		err := f.svc.UpdateListingStatus(context.Background(), id, domain.ListingStatusPendingListing)
		assert.NoError(t, err)
	})
}

// ===========================================================================
// Product commands
// ===========================================================================

func atkHpTemplate(id uuid.UUID) domain.FieldTemplate {
	return domain.FieldTemplate{
		ID:   id,
		Name: "monster stats",
		Fields: []domain.FieldDefinition{
			{Name: "atk", Type: domain.FieldTypeNumber, Required: true},
			{Name: "hp", Type: domain.FieldTypeNumber, Required: true},
		},
	}
}

func TestService_CreateProduct_ValidatesCardEffects(t *testing.T) {
	t.Parallel()
	f := newFixture(config.CatalogConfig{})

	tmplID := uuid.New()
	f.templates.GetByIDFunc = func(_ context.Context, id uuid.UUID) (domain.FieldTemplate, error) {
		require.Equal(t, tmplID, id)
		return atkHpTemplate(tmplID), nil
	}

	in := ProductInput{
		Name:             domain.I18NString{English: "Pikachu"},
		CardLanguage:     domain.CardLanguageEnglish,
		Type:             domain.ProductTypeRaw,
		EffectTemplateID: &tmplID,
		RawCardEffects:   map[string]any{"atk": "five", "hp": float64(10)},
	}
	_, err := f.svc.CreateProduct(context.Background(), in)

	var verrs *domain.ValueErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs.Errors, 1)
	assert.Equal(t, domain.ValueTypeMismatch, verrs.Errors[0].Code)
	assert.Equal(t, "atk", verrs.Errors[0].Field)

	in.RawCardEffects = map[string]any{"atk": float64(5), "hp": float64(10)}
	created, err := f.svc.CreateProduct(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, created.CardEffects, 2)
	assert.Equal(t, "atk", created.CardEffects[0].Name)
	assert.Equal(t, float64(5), created.CardEffects[0].Value.Number)
}

func TestService_CreateProduct_EffectsWithoutTemplate(t *testing.T) {
	t.Parallel()
	f := newFixture(config.CatalogConfig{})

	_, err := f.svc.CreateProduct(context.Background(), ProductInput{
		Name:           domain.I18NString{English: "Eevee"},
		CardLanguage:   domain.CardLanguageEnglish,
		Type:           domain.ProductTypeRaw,
		RawCardEffects: map[string]any{"atk": float64(1)},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_CreateProduct_WritesInTransaction(t *testing.T) {
	t.Parallel()
	f := newFixture(config.CatalogConfig{})

	var inTx bool
	f.tx.RunInTxFunc = func(ctx context.Context, fn func(ctx context.Context) error) error {
		inTx = true
		defer func() { inTx = false }()
		return fn(ctx)
	}
	var createdInTx bool
	f.products.CreateFunc = func(_ context.Context, p domain.Product) (domain.Product, error) {
		createdInTx = inTx
		p.ID = uuid.New()
		return p, nil
	}

	_, err := f.svc.CreateProduct(context.Background(), ProductInput{
		Name:         domain.I18NString{English: "Charizard"},
		CardLanguage: domain.CardLanguageEnglish,
		Type:         domain.ProductTypeRaw,
		CategoryIDs:  []uuid.UUID{uuid.New()},
	})
	require.NoError(t, err)
	assert.True(t, createdInTx, "product insert and category memberships must share one transaction")
}

func TestService_UpdateProduct_WritesInTransaction(t *testing.T) {
	t.Parallel()
	f := newFixture(config.CatalogConfig{})

	productID := uuid.New()
	f.products.GetByIDFunc = func(context.Context, uuid.UUID) (domain.Product, error) {
		return domain.Product{ID: productID}, nil
	}

	var inTx bool
	f.tx.RunInTxFunc = func(ctx context.Context, fn func(ctx context.Context) error) error {
		inTx = true
		defer func() { inTx = false }()
		return fn(ctx)
	}
	var updatedInTx bool
	f.products.UpdateFunc = func(_ context.Context, p domain.Product) (domain.Product, error) {
		updatedInTx = inTx
		return p, nil
	}

	_, err := f.svc.UpdateProduct(context.Background(), productID, ProductInput{
		Name:         domain.I18NString{English: "Charizard"},
		CardLanguage: domain.CardLanguageEnglish,
		Type:         domain.ProductTypeRaw,
		CategoryIDs:  []uuid.UUID{uuid.New()},
	})
	require.NoError(t, err)
	assert.True(t, updatedInTx, "category replacement must not commit outside the product update transaction")
}

func TestService_UpdateProductCardEffects(t *testing.T) {
	t.Parallel()
	f := newFixture(config.CatalogConfig{})

	tmplID := uuid.New()
	productID := uuid.New()
	f.products.GetByIDFunc = func(context.Context, uuid.UUID) (domain.Product, error) {
		return domain.Product{ID: productID, EffectTemplateID: &tmplID}, nil
	}
	f.templates.GetByIDFunc = func(context.Context, uuid.UUID) (domain.FieldTemplate, error) {
		return atkHpTemplate(tmplID), nil
	}

	var saved []domain.FieldValue
	f.products.UpdateCardEffectsFunc = func(_ context.Context, _ uuid.UUID, effects []domain.FieldValue, _ domain.ActorRef) error {
		saved = effects
		return nil
	}

	err := f.svc.UpdateProductCardEffects(context.Background(), productID,
		map[string]any{"atk": float64(7), "hp": float64(3)})
	require.NoError(t, err)
	require.Len(t, saved, 2)

	err = f.svc.UpdateProductCardEffects(context.Background(), productID,
		map[string]any{"atk": float64(7)})
	var verrs *domain.ValueErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, domain.ValueMissingRequired, verrs.Errors[0].Code)
}

func TestService_UpdateProductCardEffects_NoTemplate(t *testing.T) {
	t.Parallel()
	f := newFixture(config.CatalogConfig{})

	f.products.GetByIDFunc = func(context.Context, uuid.UUID) (domain.Product, error) {
		return domain.Product{ID: uuid.New()}, nil
	}

	err := f.svc.UpdateProductCardEffects(context.Background(), uuid.New(), map[string]any{"x": 1})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
