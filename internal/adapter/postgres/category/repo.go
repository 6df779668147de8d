// Package category implements the Category repository using PostgreSQL.
// Parent edges live in a separate category_parents table; reachability for
// cycle checks runs server-side with a recursive CTE.
package category

import (
	"context"
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

// Repo provides category persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new category repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Raw SQL
// ---------------------------------------------------------------------------

const selectCategoriesSQL = `
SELECT c.id, c.name_zh, c.name_en, c.name_ja, c.images, c.category_types,
       COALESCE(array_agg(cp.parent_id) FILTER (WHERE cp.parent_id IS NOT NULL), '{}') AS parent_ids,
       c.created_at, c.updated_at,
       c.created_by_id, c.created_by_name, c.updated_by_id, c.updated_by_name
FROM categories c
LEFT JOIN category_parents cp ON cp.category_id = c.id`

const groupByCategorySQL = `
GROUP BY c.id`

// isReachableSQL walks parent edges upward from $1 and reports whether $2
// is among the ancestors. Used to reject a parent edge that would close a
// cycle.
const isReachableSQL = `
WITH RECURSIVE ancestors AS (
    SELECT parent_id FROM category_parents WHERE category_id = $1
    UNION
    SELECT cp.parent_id
    FROM category_parents cp
    JOIN ancestors a ON cp.category_id = a.parent_id
)
SELECT EXISTS (SELECT 1 FROM ancestors WHERE parent_id = $2)`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a category with its parent edge set.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.Category, error) {
	categories, err := r.selectWhere(ctx, "WHERE c.id = $1", []any{id})
	if err != nil {
		return domain.Category{}, fmt.Errorf("get category: %w", err)
	}
	if len(categories) == 0 {
		return domain.Category{}, fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	return categories[0], nil
}

// GetByIDs returns categories for the given ids; missing ids are absent.
func (r *Repo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Category, error) {
	if len(ids) == 0 {
		return []domain.Category{}, nil
	}
	categories, err := r.selectWhere(ctx, "WHERE c.id = ANY($1)", []any{ids})
	if err != nil {
		return nil, fmt.Errorf("get categories by ids: %w", err)
	}
	return categories, nil
}

// Page returns one page of categories ordered by creation time descending,
// plus the total match count.
func (r *Repo) Page(ctx context.Context, filter domain.CategoryFilter, page query.PageRequest) ([]domain.Category, int, error) {
	where := ""
	args := []any{}
	n := 0
	next := func() string { n++; return fmt.Sprintf("$%d", n) }

	clauses := []string{}
	if filter.Name != "" {
		p := next()
		clauses = append(clauses, fmt.Sprintf(
			"(c.name_zh ILIKE %[1]s OR c.name_en ILIKE %[1]s OR c.name_ja ILIKE %[1]s)", p))
		args = append(args, "%"+postgres.EscapeLike(filter.Name)+"%")
	}
	if filter.Type != "" {
		p := next()
		clauses = append(clauses, fmt.Sprintf("%s = ANY(c.category_types)", p))
		args = append(args, string(filter.Type))
	}
	for i, c := range clauses {
		if i == 0 {
			where = "WHERE " + c
		} else {
			where += " AND " + c
		}
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var total int
	countSQL := "SELECT count(*) FROM categories c " + where
	if err := querier.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, postgres.MapError(err, "count categories")
	}

	pageSQL := fmt.Sprintf("%s %s %s ORDER BY c.created_at DESC, c.id ASC LIMIT %s OFFSET %s",
		selectCategoriesSQL, where, groupByCategorySQL, next(), next())
	args = append(args, page.PageSize, page.Offset())

	rows, err := querier.Query(ctx, pageSQL, args...)
	if err != nil {
		return nil, 0, postgres.MapError(err, "page categories")
	}
	defer rows.Close()

	categories, err := scanCategories(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("page categories: %w", err)
	}
	return categories, total, nil
}

// IsReachable reports whether ancestor is reachable from id by walking
// parent edges. Adding ancestor below id while this holds would close a
// cycle.
func (r *Repo) IsReachable(ctx context.Context, id, ancestor uuid.UUID) (bool, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)
	var reachable bool
	if err := querier.QueryRow(ctx, isReachableSQL, id, ancestor).Scan(&reachable); err != nil {
		return false, postgres.MapError(err, "category reachability")
	}
	return reachable, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new category without parent edges.
func (r *Repo) Create(ctx context.Context, c domain.Category) (domain.Category, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.Audit.CreatedAt = now
	c.Audit.UpdatedAt = now

	sqlStr, args, err := postgres.SB.Insert("categories").
		Columns(
			"id", "name_zh", "name_en", "name_ja", "images", "category_types",
			"created_at", "updated_at",
			"created_by_id", "created_by_name",
			"updated_by_id", "updated_by_name",
		).
		Values(
			c.ID, c.Name.Chinese, c.Name.English, c.Name.Japanese,
			c.Images, categoryTypeStrings(c.CategoryTypes),
			c.Audit.CreatedAt, c.Audit.UpdatedAt,
			c.Audit.CreatedBy.ID, c.Audit.CreatedBy.Name,
			c.Audit.UpdatedBy.ID, c.Audit.UpdatedBy.Name,
		).
		ToSql()
	if err != nil {
		return domain.Category{}, fmt.Errorf("build create category query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	if _, err := querier.Exec(ctx, sqlStr, args...); err != nil {
		return domain.Category{}, postgres.MapError(err, fmt.Sprintf("create category %s", c.ID))
	}

	if c.ParentIDs == nil {
		c.ParentIDs = []uuid.UUID{}
	}
	return c, nil
}

// UpdateName sets the localized display name.
func (r *Repo) UpdateName(ctx context.Context, id uuid.UUID, name domain.I18NString, actor domain.ActorRef) error {
	return r.update(ctx, id, map[string]any{
		"name_zh": name.Chinese,
		"name_en": name.English,
		"name_ja": name.Japanese,
	}, actor)
}

// ReplaceImages replaces the image list wholesale.
func (r *Repo) ReplaceImages(ctx context.Context, id uuid.UUID, images []string, actor domain.ActorRef) error {
	return r.update(ctx, id, map[string]any{"images": images}, actor)
}

// AddTypes appends category types not already present.
func (r *Repo) AddTypes(ctx context.Context, id uuid.UUID, types []domain.CategoryType, actor domain.ActorRef) error {
	const addSQL = `
UPDATE categories SET
    category_types = (
        SELECT array_agg(DISTINCT t) FROM unnest(category_types || $2::text[]) AS t
    ),
    updated_at = $3, updated_by_id = $4, updated_by_name = $5
WHERE id = $1`
	return r.execTouch(ctx, id, addSQL, categoryTypeStrings(types), actor)
}

// RemoveTypes drops the given category types; absent values are ignored.
func (r *Repo) RemoveTypes(ctx context.Context, id uuid.UUID, types []domain.CategoryType, actor domain.ActorRef) error {
	const removeSQL = `
UPDATE categories SET
    category_types = (
        SELECT COALESCE(array_agg(t), '{}') FROM unnest(category_types) AS t
        WHERE t != ALL($2::text[])
    ),
    updated_at = $3, updated_by_id = $4, updated_by_name = $5
WHERE id = $1`
	return r.execTouch(ctx, id, removeSQL, categoryTypeStrings(types), actor)
}

// AddParent inserts one parent edge. The caller must have run the cycle
// check first; the unique constraint makes re-adding an existing edge a
// no-op conflict surfaced as domain.ErrConflict.
func (r *Repo) AddParent(ctx context.Context, id, parentID uuid.UUID, actor domain.ActorRef) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)
	if _, err := querier.Exec(ctx,
		"INSERT INTO category_parents (category_id, parent_id) VALUES ($1, $2)",
		id, parentID,
	); err != nil {
		return postgres.MapError(err, fmt.Sprintf("add category parent %s -> %s", id, parentID))
	}
	return r.touch(ctx, id, actor)
}

// RemoveParent drops one parent edge; a missing edge is ErrNotFound.
func (r *Repo) RemoveParent(ctx context.Context, id, parentID uuid.UUID, actor domain.ActorRef) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)
	tag, err := querier.Exec(ctx,
		"DELETE FROM category_parents WHERE category_id = $1 AND parent_id = $2",
		id, parentID,
	)
	if err != nil {
		return postgres.MapError(err, fmt.Sprintf("remove category parent %s -> %s", id, parentID))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category parent %s -> %s: %w", id, parentID, domain.ErrNotFound)
	}
	return r.touch(ctx, id, actor)
}

// Delete removes a category. Child edges and product memberships referencing
// it are protected by foreign keys and surface as domain.ErrConflict.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)
	tag, err := querier.Exec(ctx, "DELETE FROM categories WHERE id = $1", id)
	if err != nil {
		return postgres.MapError(err, fmt.Sprintf("delete category %s", id))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (r *Repo) update(ctx context.Context, id uuid.UUID, set map[string]any, actor domain.ActorRef) error {
	now := time.Now().UTC().Truncate(time.Microsecond)
	set["updated_at"] = now
	set["updated_by_id"] = actor.ID
	set["updated_by_name"] = actor.Name

	sqlStr, args, err := postgres.SB.Update("categories").
		SetMap(set).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update category query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	tag, err := querier.Exec(ctx, sqlStr, args...)
	if err != nil {
		return postgres.MapError(err, fmt.Sprintf("update category %s", id))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) execTouch(ctx context.Context, id uuid.UUID, sqlStr string, types []string, actor domain.ActorRef) error {
	now := time.Now().UTC().Truncate(time.Microsecond)
	querier := postgres.QuerierFromCtx(ctx, r.pool)
	tag, err := querier.Exec(ctx, sqlStr, id, types, now, actor.ID, actor.Name)
	if err != nil {
		return postgres.MapError(err, fmt.Sprintf("update category types %s", id))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) touch(ctx context.Context, id uuid.UUID, actor domain.ActorRef) error {
	return r.update(ctx, id, map[string]any{}, actor)
}

func (r *Repo) selectWhere(ctx context.Context, where string, args []any) ([]domain.Category, error) {
	sqlStr := fmt.Sprintf("%s %s %s", selectCategoriesSQL, where, groupByCategorySQL)

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := querier.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, postgres.MapError(err, "query categories")
	}
	defer rows.Close()

	return scanCategories(rows)
}

func scanCategories(rows pgx.Rows) ([]domain.Category, error) {
	var categories []domain.Category
	for rows.Next() {
		var (
			c     domain.Category
			types []string
		)
		if err := rows.Scan(
			&c.ID, &c.Name.Chinese, &c.Name.English, &c.Name.Japanese,
			&c.Images, &types, &c.ParentIDs,
			&c.Audit.CreatedAt, &c.Audit.UpdatedAt,
			&c.Audit.CreatedBy.ID, &c.Audit.CreatedBy.Name,
			&c.Audit.UpdatedBy.ID, &c.Audit.UpdatedBy.Name,
		); err != nil {
			return nil, err
		}
		c.CategoryTypes = make([]domain.CategoryType, len(types))
		for i, t := range types {
			c.CategoryTypes[i] = domain.CategoryType(t)
		}
		if c.ParentIDs == nil {
			c.ParentIDs = []uuid.UUID{}
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if categories == nil {
		categories = []domain.Category{}
	}
	return categories, nil
}

func categoryTypeStrings(types []domain.CategoryType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}
