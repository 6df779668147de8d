// Package listing implements the Listing repository using PostgreSQL.
// Page, count and facet queries are built dynamically with squirrel from
// the compiled predicate tree; point lookups and writes use plain SQL.
package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/henrier/rico-backend/internal/adapter/postgres"
	"github.com/henrier/rico-backend/internal/domain"
	"github.com/henrier/rico-backend/internal/query"
)

// Repo provides listing persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new listing repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// listingColumns is the canonical select list, aliased l. Scan order in
// scanListing must match.
var listingColumns = []string{
	"l.id", "l.product_id", "l.owner_id",
	"l.type", "l.status", "l.condition",
	"l.price", "l.limited_time_price", "l.deadline",
	"l.quantity", "l.notes", "l.images", "l.is_main_image",
	"l.rating_company_id", "l.card_score", "l.graded_card_number", "l.rating_infos",
	"l.bundle_product_id", "l.bundle_info",
	"l.created_at", "l.updated_at",
	"l.created_by_id", "l.created_by_name",
	"l.updated_by_id", "l.updated_by_name",
}

// ---------------------------------------------------------------------------
// Query execution over compiled predicates
// ---------------------------------------------------------------------------

// FindPage returns one page of listings matching the predicate, ordered by
// the parsed sort keys. Pages past the end of the result set come back
// empty without error.
func (r *Repo) FindPage(ctx context.Context, node query.Node, order []query.OrderBy, page query.PageRequest) ([]domain.Listing, error) {
	cond, joinPred, err := postgres.BuildPredicate(node)
	if err != nil {
		return nil, fmt.Errorf("find listings: %w", err)
	}
	orderExprs, joinSort, err := postgres.BuildOrderBy(order)
	if err != nil {
		return nil, fmt.Errorf("find listings: %w", err)
	}

	qb := postgres.SB.Select(listingColumns...).From("listings l")
	if joinPred || joinSort {
		qb = qb.Join("products p ON p.id = l.product_id")
	}
	qb = qb.Where(cond).
		OrderBy(orderExprs...).
		Limit(uint64(page.PageSize)).
		Offset(uint64(page.Offset()))

	sqlStr, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find listings query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := querier.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, postgres.MapError(err, "find listings")
	}
	defer rows.Close()

	listings, err := scanListings(rows)
	if err != nil {
		return nil, fmt.Errorf("find listings: %w", err)
	}
	return listings, nil
}

// Count returns the number of listings matching the predicate. It runs
// count(*) server-side; rows are never materialized.
func (r *Repo) Count(ctx context.Context, node query.Node) (int, error) {
	cond, needsProduct, err := postgres.BuildPredicate(node)
	if err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}

	qb := postgres.SB.Select("count(*)").From("listings l")
	if needsProduct {
		qb = qb.Join("products p ON p.id = l.product_id")
	}
	sqlStr, args, err := qb.Where(cond).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count listings query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	var count int
	if err := querier.QueryRow(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, postgres.MapError(err, "count listings")
	}
	return count, nil
}

// DistinctCardScores returns the distinct card scores of matching rated
// listings, sorted. Listings without a grading sub-object, or with a blank
// stored score, contribute nothing.
func (r *Repo) DistinctCardScores(ctx context.Context, node query.Node) ([]string, error) {
	rows, err := r.distinctQuery(ctx, node, "l.card_score", sq.Expr("l.card_score != ''"))
	if err != nil {
		return nil, fmt.Errorf("distinct card scores: %w", err)
	}
	defer rows.Close()

	scores := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan card score: %w", err)
		}
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate card scores: %w", err)
	}
	return scores, nil
}

// DistinctProductIDs returns the distinct product references of matching
// listings. It is the first hop of the product-side facets.
func (r *Repo) DistinctProductIDs(ctx context.Context, node query.Node) ([]uuid.UUID, error) {
	rows, err := r.distinctQuery(ctx, node, "l.product_id")
	if err != nil {
		return nil, fmt.Errorf("distinct product ids: %w", err)
	}
	defer rows.Close()
	return scanUUIDs(rows)
}

// DistinctRatingCompanyIDs returns the distinct rating companies of
// matching rated listings.
func (r *Repo) DistinctRatingCompanyIDs(ctx context.Context, node query.Node) ([]uuid.UUID, error) {
	rows, err := r.distinctQuery(ctx, node, "l.rating_company_id")
	if err != nil {
		return nil, fmt.Errorf("distinct rating company ids: %w", err)
	}
	defer rows.Close()
	return scanUUIDs(rows)
}

// distinctQuery runs SELECT DISTINCT col for non-null values of col over
// the predicate's match set, ordered by col for stable facet output.
func (r *Repo) distinctQuery(ctx context.Context, node query.Node, col string, extra ...sq.Sqlizer) (pgx.Rows, error) {
	cond, needsProduct, err := postgres.BuildPredicate(node)
	if err != nil {
		return nil, err
	}

	qb := postgres.SB.Select("DISTINCT " + col).From("listings l")
	if needsProduct {
		qb = qb.Join("products p ON p.id = l.product_id")
	}
	qb = qb.Where(cond).Where(col + " IS NOT NULL")
	for _, e := range extra {
		qb = qb.Where(e)
	}
	sqlStr, args, err := qb.
		OrderBy(col).
		ToSql()
	if err != nil {
		return nil, err
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := querier.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, postgres.MapError(err, "distinct query")
	}
	return rows, nil
}

// ---------------------------------------------------------------------------
// Point lookups
// ---------------------------------------------------------------------------

// GetByID returns a listing by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.Listing, error) {
	sqlStr, args, err := postgres.SB.Select(listingColumns...).
		From("listings l").
		Where(sq.Eq{"l.id": id}).
		ToSql()
	if err != nil {
		return domain.Listing{}, fmt.Errorf("build get listing query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := querier.Query(ctx, sqlStr, args...)
	if err != nil {
		return domain.Listing{}, postgres.MapError(err, "get listing")
	}
	defer rows.Close()

	listings, err := scanListings(rows)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("get listing: %w", err)
	}
	if len(listings) == 0 {
		return domain.Listing{}, fmt.Errorf("listing %s: %w", id, domain.ErrNotFound)
	}
	return listings[0], nil
}

// GetByIDs returns the listings for the given ids, in no particular order.
// Missing ids are silently absent from the result.
func (r *Repo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Listing, error) {
	if len(ids) == 0 {
		return []domain.Listing{}, nil
	}

	sqlStr, args, err := postgres.SB.Select(listingColumns...).
		From("listings l").
		Where(sq.Eq{"l.id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get listings query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := querier.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, postgres.MapError(err, "get listings by ids")
	}
	defer rows.Close()

	listings, err := scanListings(rows)
	if err != nil {
		return nil, fmt.Errorf("get listings by ids: %w", err)
	}
	return listings, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new listing and returns it with persistence-assigned
// audit timestamps. A dangling product, owner or rating company reference
// surfaces as domain.ErrConflict.
func (r *Repo) Create(ctx context.Context, l domain.Listing) (domain.Listing, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	l.Audit.CreatedAt = now
	l.Audit.UpdatedAt = now

	ratingCompanyID, cardScore, gradedCardNumber, ratingInfos, err := ratedCardColumns(l.RatedCard)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("create listing: %w", err)
	}
	bundleInfo, err := encodeBundleInfo(l.BundleInfo)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("create listing: %w", err)
	}

	sqlStr, args, err := postgres.SB.Insert("listings").
		Columns(
			"id", "product_id", "owner_id",
			"type", "status", "condition",
			"price", "limited_time_price", "deadline",
			"quantity", "notes", "images", "is_main_image",
			"rating_company_id", "card_score", "graded_card_number", "rating_infos",
			"bundle_product_id", "bundle_info",
			"created_at", "updated_at",
			"created_by_id", "created_by_name",
			"updated_by_id", "updated_by_name",
		).
		Values(
			l.ID, l.ProductID, l.OwnerID,
			string(l.Type), string(l.Status), string(l.Condition),
			l.Price, l.LimitedTimePrice, l.Deadline,
			l.Quantity, l.Notes, l.Images, l.IsMainImage,
			ratingCompanyID, cardScore, gradedCardNumber, ratingInfos,
			l.BundleProductID, bundleInfo,
			l.Audit.CreatedAt, l.Audit.UpdatedAt,
			l.Audit.CreatedBy.ID, l.Audit.CreatedBy.Name,
			l.Audit.UpdatedBy.ID, l.Audit.UpdatedBy.Name,
		).
		ToSql()
	if err != nil {
		return domain.Listing{}, fmt.Errorf("build create listing query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	if _, err := querier.Exec(ctx, sqlStr, args...); err != nil {
		return domain.Listing{}, postgres.MapError(err, fmt.Sprintf("create listing %s", l.ID))
	}
	return l, nil
}

// Update replaces every mutable field of a listing. The caller supplies
// the full desired state; Update never merges.
func (r *Repo) Update(ctx context.Context, l domain.Listing) (domain.Listing, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	l.Audit.UpdatedAt = now

	ratingCompanyID, cardScore, gradedCardNumber, ratingInfos, err := ratedCardColumns(l.RatedCard)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("update listing: %w", err)
	}
	bundleInfo, err := encodeBundleInfo(l.BundleInfo)
	if err != nil {
		return domain.Listing{}, fmt.Errorf("update listing: %w", err)
	}

	sqlStr, args, err := postgres.SB.Update("listings").
		SetMap(map[string]any{
			"product_id":         l.ProductID,
			"owner_id":           l.OwnerID,
			"type":               string(l.Type),
			"status":             string(l.Status),
			"condition":          string(l.Condition),
			"price":              l.Price,
			"limited_time_price": l.LimitedTimePrice,
			"deadline":           l.Deadline,
			"quantity":           l.Quantity,
			"notes":              l.Notes,
			"images":             l.Images,
			"is_main_image":      l.IsMainImage,
			"rating_company_id":  ratingCompanyID,
			"card_score":         cardScore,
			"graded_card_number": gradedCardNumber,
			"rating_infos":       ratingInfos,
			"bundle_product_id":  l.BundleProductID,
			"bundle_info":        bundleInfo,
			"updated_at":         l.Audit.UpdatedAt,
			"updated_by_id":      l.Audit.UpdatedBy.ID,
			"updated_by_name":    l.Audit.UpdatedBy.Name,
		}).
		Where(sq.Eq{"id": l.ID}).
		ToSql()
	if err != nil {
		return domain.Listing{}, fmt.Errorf("build update listing query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	tag, err := querier.Exec(ctx, sqlStr, args...)
	if err != nil {
		return domain.Listing{}, postgres.MapError(err, fmt.Sprintf("update listing %s", l.ID))
	}
	if tag.RowsAffected() == 0 {
		return domain.Listing{}, fmt.Errorf("listing %s: %w", l.ID, domain.ErrNotFound)
	}
	return l, nil
}

// UpdateStatus sets only the status and the updating actor.
func (r *Repo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ListingStatus, actor domain.ActorRef) error {
	now := time.Now().UTC().Truncate(time.Microsecond)

	sqlStr, args, err := postgres.SB.Update("listings").
		SetMap(map[string]any{
			"status":          string(status),
			"updated_at":      now,
			"updated_by_id":   actor.ID,
			"updated_by_name": actor.Name,
		}).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update listing status query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	tag, err := querier.Exec(ctx, sqlStr, args...)
	if err != nil {
		return postgres.MapError(err, fmt.Sprintf("update listing status %s", id))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("listing %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a listing by id.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)
	tag, err := querier.Exec(ctx, "DELETE FROM listings WHERE id = $1", id)
	if err != nil {
		return postgres.MapError(err, fmt.Sprintf("delete listing %s", id))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("listing %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanListings(rows pgx.Rows) ([]domain.Listing, error) {
	var listings []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if listings == nil {
		listings = []domain.Listing{}
	}
	return listings, nil
}

func scanListing(rows pgx.Rows) (domain.Listing, error) {
	var (
		l                domain.Listing
		typ              string
		status           string
		condition        string
		ratingCompanyID  *uuid.UUID
		cardScore        *string
		gradedCardNumber *string
		ratingInfos      []byte
		bundleInfo       []byte
	)

	if err := rows.Scan(
		&l.ID, &l.ProductID, &l.OwnerID,
		&typ, &status, &condition,
		&l.Price, &l.LimitedTimePrice, &l.Deadline,
		&l.Quantity, &l.Notes, &l.Images, &l.IsMainImage,
		&ratingCompanyID, &cardScore, &gradedCardNumber, &ratingInfos,
		&l.BundleProductID, &bundleInfo,
		&l.Audit.CreatedAt, &l.Audit.UpdatedAt,
		&l.Audit.CreatedBy.ID, &l.Audit.CreatedBy.Name,
		&l.Audit.UpdatedBy.ID, &l.Audit.UpdatedBy.Name,
	); err != nil {
		return domain.Listing{}, err
	}

	l.Type = domain.ListingType(typ)
	l.Status = domain.ListingStatus(status)
	l.Condition = domain.CardCondition(condition)

	if ratingCompanyID != nil {
		rc := &domain.RatedCard{RatingCompanyID: *ratingCompanyID}
		if cardScore != nil {
			rc.CardScore = *cardScore
		}
		if gradedCardNumber != nil {
			rc.GradedCardNumber = *gradedCardNumber
		}
		if len(ratingInfos) > 0 {
			if err := json.Unmarshal(ratingInfos, &rc.RatingInfos); err != nil {
				return domain.Listing{}, fmt.Errorf("decode rating infos: %w", err)
			}
		}
		l.RatedCard = rc
	}

	if len(bundleInfo) > 0 {
		var bi domain.BundleInfo
		if err := json.Unmarshal(bundleInfo, &bi); err != nil {
			return domain.Listing{}, fmt.Errorf("decode bundle info: %w", err)
		}
		l.BundleInfo = &bi
	}

	return l, nil
}

func scanUUIDs(rows pgx.Rows) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ids: %w", err)
	}
	return ids, nil
}

// ---------------------------------------------------------------------------
// Column encoding helpers
// ---------------------------------------------------------------------------

// ratedCardColumns flattens the grading sub-object into its columns. A nil
// rated card stores NULL everywhere; facet queries rely on that.
func ratedCardColumns(rc *domain.RatedCard) (*uuid.UUID, *string, *string, []byte, error) {
	if rc == nil {
		return nil, nil, nil, nil, nil
	}
	infos, err := json.Marshal(rc.RatingInfos)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode rating infos: %w", err)
	}
	companyID := rc.RatingCompanyID
	score := rc.CardScore
	number := rc.GradedCardNumber
	return &companyID, &score, &number, infos, nil
}

func encodeBundleInfo(bi *domain.BundleInfo) ([]byte, error) {
	if bi == nil {
		return nil, nil
	}
	data, err := json.Marshal(bi)
	if err != nil {
		return nil, fmt.Errorf("encode bundle info: %w", err)
	}
	return data, nil
}
