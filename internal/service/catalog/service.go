// Package catalog implements the marketplace catalog business logic:
// listing queries over compiled predicates, listing and product commands,
// and cross-aggregate facet resolution.
package catalog

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/henrier/rico-backend/internal/config"
	"github.com/henrier/rico-backend/internal/domain"
	"github.com/henrier/rico-backend/internal/query"
	"github.com/henrier/rico-backend/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type listingRepo interface {
	FindPage(ctx context.Context, node query.Node, order []query.OrderBy, page query.PageRequest) ([]domain.Listing, error)
	Count(ctx context.Context, node query.Node) (int, error)
	DistinctCardScores(ctx context.Context, node query.Node) ([]string, error)
	DistinctProductIDs(ctx context.Context, node query.Node) ([]uuid.UUID, error)
	DistinctRatingCompanyIDs(ctx context.Context, node query.Node) ([]uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Listing, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Listing, error)
	Create(ctx context.Context, l domain.Listing) (domain.Listing, error)
	Update(ctx context.Context, l domain.Listing) (domain.Listing, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ListingStatus, actor domain.ActorRef) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type productRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error)
	DistinctLevelsByIDs(ctx context.Context, ids []uuid.UUID) ([]string, error)
	CategoryIDsByProductIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
	Update(ctx context.Context, p domain.Product) (domain.Product, error)
	UpdateCardEffects(ctx context.Context, id uuid.UUID, effects []domain.FieldValue, actor domain.ActorRef) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryRepo interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Category, error)
}

type ratingCompanyRepo interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.RatingCompany, error)
}

type templateRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.FieldTemplate, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the catalog business logic.
type Service struct {
	log        *slog.Logger
	listings   listingRepo
	products   productRepo
	categories categoryRepo
	companies  ratingCompanyRepo
	templates  templateRepo
	tx         txManager
	cfg        config.CatalogConfig
	limits     query.PageLimits
}

// NewService creates a new Catalog service.
func NewService(
	logger *slog.Logger,
	listings listingRepo,
	products productRepo,
	categories categoryRepo,
	companies ratingCompanyRepo,
	templates templateRepo,
	tx txManager,
	cfg config.CatalogConfig,
	pageCfg config.PaginationConfig,
) *Service {
	return &Service{
		log:        logger.With("service", "catalog"),
		listings:   listings,
		products:   products,
		categories: categories,
		companies:  companies,
		templates:  templates,
		tx:         tx,
		cfg:        cfg,
		limits: query.PageLimits{
			DefaultSize: pageCfg.DefaultPageSize,
			MinSize:     pageCfg.MinPageSize,
			MaxSize:     pageCfg.MaxPageSize,
		},
	}
}

// actorFromCtx resolves the acting operator for audit stamping. Writes
// without an authenticated operator record a zero actor.
func actorFromCtx(ctx context.Context) domain.ActorRef {
	a, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return domain.ActorRef{}
	}
	return domain.ActorRef{ID: a.ID, Name: a.Name}
}
