// Package product implements the Product repository using PostgreSQL.
// Category memberships live in a product_categories join table; dynamic
// card effects are a jsonb document validated upstream by the field codec.
package product

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
)

// Repo provides product persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new product repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Raw SQL
// ---------------------------------------------------------------------------

const selectProductsSQL = `
SELECT p.id, p.name_zh, p.name_en, p.name_ja, p.code, p.level,
       p.suggested_price, p.card_language, p.type,
       p.effect_template_id, p.card_effects, p.images,
       COALESCE(array_agg(pc.category_id) FILTER (WHERE pc.category_id IS NOT NULL), '{}') AS category_ids,
       p.created_at, p.updated_at,
       p.created_by_id, p.created_by_name, p.updated_by_id, p.updated_by_name
FROM products p
LEFT JOIN product_categories pc ON pc.product_id = p.id`

const groupByProductSQL = `
GROUP BY p.id`

const distinctLevelsSQL = `
SELECT DISTINCT p.level FROM products p
WHERE p.id = ANY($1) AND p.level != ''
ORDER BY p.level`

const categoryIDsByProductsSQL = `
SELECT DISTINCT pc.category_id FROM product_categories pc
WHERE pc.product_id = ANY($1)
ORDER BY pc.category_id`

const productIDsByTemplateSQL = `
SELECT p.id FROM products p WHERE p.effect_template_id = $1 ORDER BY p.id`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a product with its category memberships.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	products, err := r.selectWhere(ctx, "WHERE p.id = $1", []any{id})
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	if len(products) == 0 {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return products[0], nil
}

// GetByIDs returns products for the given ids; missing ids are absent.
func (r *Repo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}
	products, err := r.selectWhere(ctx, "WHERE p.id = ANY($1)", []any{ids})
	if err != nil {
		return nil, fmt.Errorf("get products by ids: %w", err)
	}
	return products, nil
}

// DistinctLevelsByIDs returns the distinct non-empty levels of the given
// products, sorted. Second hop of the level facet.
func (r *Repo) DistinctLevelsByIDs(ctx context.Context, ids []uuid.UUID) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := querier.Query(ctx, distinctLevelsSQL, ids)
	if err != nil {
		return nil, postgres.MapError(err, "distinct product levels")
	}
	defer rows.Close()

	levels := []string{}
	for rows.Next() {
		var level string
		if err := rows.Scan(&level); err != nil {
			return nil, fmt.Errorf("scan product level: %w", err)
		}
		levels = append(levels, level)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product levels: %w", err)
	}
	return levels, nil
}

// CategoryIDsByProductIDs returns the distinct categories the given
// products belong to. Second hop of the category facet.
func (r *Repo) CategoryIDsByProductIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return []uuid.UUID{}, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := querier.Query(ctx, categoryIDsByProductsSQL, ids)
	if err != nil {
		return nil, postgres.MapError(err, "category ids by products")
	}
	defer rows.Close()

	out := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan category id: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category ids: %w", err)
	}
	return out, nil
}

// IDsByTemplateID returns the ids of products bound to a template. Used to
// revalidate bound values when the template's field set is replaced.
func (r *Repo) IDsByTemplateID(ctx context.Context, templateID uuid.UUID) ([]uuid.UUID, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := querier.Query(ctx, productIDsByTemplateSQL, templateID)
	if err != nil {
		return nil, postgres.MapError(err, "product ids by template")
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product ids: %w", err)
	}
	return ids, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a product and its category memberships.
func (r *Repo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Audit.CreatedAt = now
	p.Audit.UpdatedAt = now

	effects, err := json.Marshal(p.CardEffects)
	if err != nil {
		return domain.Product{}, fmt.Errorf("encode card effects: %w", err)
	}

	sqlStr, args, err := postgres.SB.Insert("products").
		Columns(
			"id", "name_zh", "name_en", "name_ja", "code", "level",
			"suggested_price", "card_language", "type",
			"effect_template_id", "card_effects", "images",
			"created_at", "updated_at",
			"created_by_id", "created_by_name",
			"updated_by_id", "updated_by_name",
		).
		Values(
			p.ID, p.Name.Chinese, p.Name.English, p.Name.Japanese, p.Code, p.Level,
			p.SuggestedPrice, string(p.CardLanguage), string(p.Type),
			p.EffectTemplateID, effects, p.Images,
			p.Audit.CreatedAt, p.Audit.UpdatedAt,
			p.Audit.CreatedBy.ID, p.Audit.CreatedBy.Name,
			p.Audit.UpdatedBy.ID, p.Audit.UpdatedBy.Name,
		).
		ToSql()
	if err != nil {
		return domain.Product{}, fmt.Errorf("build create product query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	if _, err := querier.Exec(ctx, sqlStr, args...); err != nil {
		return domain.Product{}, postgres.MapError(err, fmt.Sprintf("create product %s", p.ID))
	}

	if err := r.replaceCategories(ctx, p.ID, p.CategoryIDs); err != nil {
		return domain.Product{}, err
	}
	if p.CategoryIDs == nil {
		p.CategoryIDs = []uuid.UUID{}
	}
	return p, nil
}

// Update replaces every mutable field of a product, including its category
// membership set.
func (r *Repo) Update(ctx context.Context, p domain.Product) (domain.Product, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	p.Audit.UpdatedAt = now

	effects, err := json.Marshal(p.CardEffects)
	if err != nil {
		return domain.Product{}, fmt.Errorf("encode card effects: %w", err)
	}

	sqlStr, args, err := postgres.SB.Update("products").
		SetMap(map[string]any{
			"name_zh":            p.Name.Chinese,
			"name_en":            p.Name.English,
			"name_ja":            p.Name.Japanese,
			"code":               p.Code,
			"level":              p.Level,
			"suggested_price":    p.SuggestedPrice,
			"card_language":      string(p.CardLanguage),
			"type":               string(p.Type),
			"effect_template_id": p.EffectTemplateID,
			"card_effects":       effects,
			"images":             p.Images,
			"updated_at":         p.Audit.UpdatedAt,
			"updated_by_id":      p.Audit.UpdatedBy.ID,
			"updated_by_name":    p.Audit.UpdatedBy.Name,
		}).
		Where(sq.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		return domain.Product{}, fmt.Errorf("build update product query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	tag, err := querier.Exec(ctx, sqlStr, args...)
	if err != nil {
		return domain.Product{}, postgres.MapError(err, fmt.Sprintf("update product %s", p.ID))
	}
	if tag.RowsAffected() == 0 {
		return domain.Product{}, fmt.Errorf("product %s: %w", p.ID, domain.ErrNotFound)
	}

	if err := r.replaceCategories(ctx, p.ID, p.CategoryIDs); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// UpdateCardEffects replaces only the dynamic values document.
func (r *Repo) UpdateCardEffects(ctx context.Context, id uuid.UUID, effects []domain.FieldValue, actor domain.ActorRef) error {
	data, err := json.Marshal(effects)
	if err != nil {
		return fmt.Errorf("encode card effects: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	sqlStr, args, err := postgres.SB.Update("products").
		SetMap(map[string]any{
			"card_effects":    data,
			"updated_at":      now,
			"updated_by_id":   actor.ID,
			"updated_by_name": actor.Name,
		}).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update card effects query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	tag, err := querier.Exec(ctx, sqlStr, args...)
	if err != nil {
		return postgres.MapError(err, fmt.Sprintf("update card effects %s", id))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Delete removes a product. Listings referencing it are protected by a
// foreign key and surface as domain.ErrConflict.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)
	tag, err := querier.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return postgres.MapError(err, fmt.Sprintf("delete product %s", id))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (r *Repo) replaceCategories(ctx context.Context, productID uuid.UUID, categoryIDs []uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := querier.Exec(ctx,
		"DELETE FROM product_categories WHERE product_id = $1", productID,
	); err != nil {
		return postgres.MapError(err, fmt.Sprintf("clear product categories %s", productID))
	}

	for _, catID := range categoryIDs {
		if _, err := querier.Exec(ctx,
			"INSERT INTO product_categories (product_id, category_id) VALUES ($1, $2)",
			productID, catID,
		); err != nil {
			return postgres.MapError(err, fmt.Sprintf("add product category %s -> %s", productID, catID))
		}
	}
	return nil
}

func (r *Repo) selectWhere(ctx context.Context, where string, args []any) ([]domain.Product, error) {
	sqlStr := fmt.Sprintf("%s %s %s", selectProductsSQL, where, groupByProductSQL)

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := querier.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, postgres.MapError(err, "query products")
	}
	defer rows.Close()

	return scanProducts(rows)
}

func scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	var products []domain.Product
	for rows.Next() {
		var (
			p        domain.Product
			language string
			typ      string
			effects  []byte
		)
		if err := rows.Scan(
			&p.ID, &p.Name.Chinese, &p.Name.English, &p.Name.Japanese, &p.Code, &p.Level,
			&p.SuggestedPrice, &language, &typ,
			&p.EffectTemplateID, &effects, &p.Images, &p.CategoryIDs,
			&p.Audit.CreatedAt, &p.Audit.UpdatedAt,
			&p.Audit.CreatedBy.ID, &p.Audit.CreatedBy.Name,
			&p.Audit.UpdatedBy.ID, &p.Audit.UpdatedBy.Name,
		); err != nil {
			return nil, err
		}
		p.CardLanguage = domain.CardLanguage(language)
		p.Type = domain.ProductType(typ)
		if len(effects) > 0 {
			if err := json.Unmarshal(effects, &p.CardEffects); err != nil {
				return nil, fmt.Errorf("decode card effects: %w", err)
			}
		}
		if p.CardEffects == nil {
			p.CardEffects = []domain.FieldValue{}
		}
		if p.CategoryIDs == nil {
			p.CategoryIDs = []uuid.UUID{}
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}
