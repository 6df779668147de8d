package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/henrier/rico-backend/internal/domain"
	"github.com/henrier/rico-backend/internal/query"
)

// PageParams is the wire-shaped input of the listing page query: the flat
// filter map, the parallel sort arrays, and the 1-based page window.
type PageParams struct {
	Filters        map[string][]string
	SortFields     []string
	SortDirections []string
	Current        int
	PageSize       int
}

// Page executes one page query: compile the filters once, run the count and
// the page fetch concurrently, and return items plus the total match count.
// A window past the end of the result set returns empty items with the
// correct total.
func (s *Service) Page(ctx context.Context, params PageParams) (query.Page[domain.Listing], error) {
	node, err := query.Compile(params.Filters)
	if err != nil {
		return query.Page[domain.Listing]{}, err
	}
	order, err := query.ParseSort(params.SortFields, params.SortDirections)
	if err != nil {
		return query.Page[domain.Listing]{}, err
	}
	window := query.PageRequest{Current: params.Current, PageSize: params.PageSize}.Normalize(s.limits)

	var (
		items []domain.Listing
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.listings.FindPage(gctx, node, order, window)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.listings.Count(gctx, node)
		return err
	})
	if err := g.Wait(); err != nil {
		return query.Page[domain.Listing]{}, err
	}

	return query.Page[domain.Listing]{
		Items:    items,
		Current:  window.Current,
		PageSize: window.PageSize,
		Total:    total,
	}, nil
}

// Count returns the number of listings matching the filters without
// materializing any row.
func (s *Service) Count(ctx context.Context, filters map[string][]string) (int, error) {
	node, err := query.Compile(filters)
	if err != nil {
		return 0, err
	}
	return s.listings.Count(ctx, node)
}

// Facets is the distinct-value projection over one filter's match set.
// Categories and rating companies are projected as full aggregates; scores
// and levels as plain values.
type Facets struct {
	CardScores      []string               `json:"cardScores"`
	Levels          []string               `json:"levels"`
	Categories      []domain.Category      `json:"categories"`
	RatingCompanies []domain.RatingCompany `json:"ratingCompanies"`
}

// FacetsFor resolves every facet for one compiled filter. The listing-side
// distinct queries and the cross-aggregate projections run concurrently,
// bounded by catalog.facet_concurrency. Listings without the projected
// attribute contribute nothing to their facet.
func (s *Service) FacetsFor(ctx context.Context, filters map[string][]string) (Facets, error) {
	node, err := query.Compile(filters)
	if err != nil {
		return Facets{}, err
	}

	// First hop: the product reference set feeds both product-side facets.
	productIDs, err := s.listings.DistinctProductIDs(ctx, node)
	if err != nil {
		return Facets{}, fmt.Errorf("facet product ids: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Facets{}, err
	}

	var facets Facets
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.FacetConcurrency)

	g.Go(func() error {
		scores, err := s.listings.DistinctCardScores(gctx, node)
		if err != nil {
			return fmt.Errorf("facet card scores: %w", err)
		}
		facets.CardScores = scores
		return nil
	})

	g.Go(func() error {
		levels, err := s.levelsForProducts(gctx, productIDs)
		if err != nil {
			return err
		}
		facets.Levels = levels
		return nil
	})

	g.Go(func() error {
		categories, err := s.categoriesForProducts(gctx, productIDs)
		if err != nil {
			return err
		}
		facets.Categories = categories
		return nil
	})

	g.Go(func() error {
		companies, err := s.companiesForFilter(gctx, node)
		if err != nil {
			return err
		}
		facets.RatingCompanies = companies
		return nil
	})

	if err := g.Wait(); err != nil {
		return Facets{}, err
	}
	return facets, nil
}

// DistinctCardScores projects the distinct card scores of the filter's
// match set.
func (s *Service) DistinctCardScores(ctx context.Context, filters map[string][]string) ([]string, error) {
	node, err := query.Compile(filters)
	if err != nil {
		return nil, err
	}
	scores, err := s.listings.DistinctCardScores(ctx, node)
	if err != nil {
		return nil, fmt.Errorf("facet card scores: %w", err)
	}
	return scores, nil
}

// DistinctLevels projects the distinct card levels of the products
// referenced by the filter's match set.
func (s *Service) DistinctLevels(ctx context.Context, filters map[string][]string) ([]string, error) {
	node, err := query.Compile(filters)
	if err != nil {
		return nil, err
	}
	productIDs, err := s.listings.DistinctProductIDs(ctx, node)
	if err != nil {
		return nil, fmt.Errorf("facet product ids: %w", err)
	}
	return s.levelsForProducts(ctx, productIDs)
}

// DistinctCategories projects the categories of the products referenced by
// the filter's match set, as full aggregates.
func (s *Service) DistinctCategories(ctx context.Context, filters map[string][]string) ([]domain.Category, error) {
	node, err := query.Compile(filters)
	if err != nil {
		return nil, err
	}
	productIDs, err := s.listings.DistinctProductIDs(ctx, node)
	if err != nil {
		return nil, fmt.Errorf("facet product ids: %w", err)
	}
	return s.categoriesForProducts(ctx, productIDs)
}

// DistinctRatingCompanies projects the rating companies of the filter's
// match set, as full aggregates.
func (s *Service) DistinctRatingCompanies(ctx context.Context, filters map[string][]string) ([]domain.RatingCompany, error) {
	node, err := query.Compile(filters)
	if err != nil {
		return nil, err
	}
	return s.companiesForFilter(ctx, node)
}

// levelsForProducts runs the second facet hop for card levels. Reference
// sets larger than catalog.facet_chunk_size fan out in chunks, bounded by
// catalog.facet_concurrency, and the per-chunk results are merged.
func (s *Service) levelsForProducts(ctx context.Context, productIDs []uuid.UUID) ([]string, error) {
	chunks := chunkIDs(productIDs, s.cfg.FacetChunkSize)
	results := make([][]string, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.FacetConcurrency)
	for i, ids := range chunks {
		g.Go(func() error {
			levels, err := s.products.DistinctLevelsByIDs(gctx, ids)
			if err != nil {
				return fmt.Errorf("facet levels: %w", err)
			}
			results[i] = levels
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return mergeDistinct(results), nil
}

// categoriesForProducts runs the second facet hop for categories: chunked
// category-id projection, then one aggregate fetch over the merged id set.
func (s *Service) categoriesForProducts(ctx context.Context, productIDs []uuid.UUID) ([]domain.Category, error) {
	chunks := chunkIDs(productIDs, s.cfg.FacetChunkSize)
	results := make([][]uuid.UUID, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.FacetConcurrency)
	for i, ids := range chunks {
		g.Go(func() error {
			categoryIDs, err := s.products.CategoryIDsByProductIDs(gctx, ids)
			if err != nil {
				return fmt.Errorf("facet category ids: %w", err)
			}
			results[i] = categoryIDs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{})
	merged := make([]uuid.UUID, 0)
	for _, ids := range results {
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			merged = append(merged, id)
		}
	}

	categories, err := s.categories.GetByIDs(ctx, merged)
	if err != nil {
		return nil, fmt.Errorf("facet categories: %w", err)
	}
	return categories, nil
}

func (s *Service) companiesForFilter(ctx context.Context, node query.Node) ([]domain.RatingCompany, error) {
	companyIDs, err := s.listings.DistinctRatingCompanyIDs(ctx, node)
	if err != nil {
		return nil, fmt.Errorf("facet rating company ids: %w", err)
	}
	companies, err := s.companies.GetByIDs(ctx, companyIDs)
	if err != nil {
		return nil, fmt.Errorf("facet rating companies: %w", err)
	}
	return companies, nil
}

// chunkIDs splits ids into runs of at most size elements.
func chunkIDs(ids []uuid.UUID, size int) [][]uuid.UUID {
	var chunks [][]uuid.UUID
	for len(ids) > size {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}

// mergeDistinct folds the per-chunk value sets into one sorted slice.
func mergeDistinct(chunks [][]string) []string {
	seen := make(map[string]struct{})
	merged := make([]string, 0)
	for _, values := range chunks {
		for _, v := range values {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			merged = append(merged, v)
		}
	}
	sort.Strings(merged)
	return merged
}

// GetListing returns one listing by id.
func (s *Service) GetListing(ctx context.Context, id uuid.UUID) (domain.Listing, error) {
	return s.listings.GetByID(ctx, id)
}

// GetListings returns the listings for the given ids; missing ids are
// silently absent.
func (s *Service) GetListings(ctx context.Context, ids []uuid.UUID) ([]domain.Listing, error) {
	return s.listings.GetByIDs(ctx, ids)
}
