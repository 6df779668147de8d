// Package ratingcompany implements the RatingCompany repository using
// PostgreSQL.
package ratingcompany

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

// Repo provides rating company persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new rating company repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var companyColumns = []string{
	"rc.id", "rc.name", "rc.scores",
	"rc.official_website_url", "rc.official_website_fields",
	"rc.created_at", "rc.updated_at",
	"rc.created_by_id", "rc.created_by_name",
	"rc.updated_by_id", "rc.updated_by_name",
}

// Create inserts a new rating company. A duplicate name surfaces as
// domain.ErrConflict.
func (r *Repo) Create(ctx context.Context, c domain.RatingCompany) (domain.RatingCompany, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.Audit.CreatedAt = now
	c.Audit.UpdatedAt = now

	fields, err := json.Marshal(c.OfficialWebsiteFields)
	if err != nil {
		return domain.RatingCompany{}, fmt.Errorf("encode website fields: %w", err)
	}

	sqlStr, args, err := postgres.SB.Insert("rating_companies").
		Columns(
			"id", "name", "scores",
			"official_website_url", "official_website_fields",
			"created_at", "updated_at",
			"created_by_id", "created_by_name",
			"updated_by_id", "updated_by_name",
		).
		Values(
			c.ID, c.Name, c.Scores,
			c.OfficialWebsiteURL, fields,
			c.Audit.CreatedAt, c.Audit.UpdatedAt,
			c.Audit.CreatedBy.ID, c.Audit.CreatedBy.Name,
			c.Audit.UpdatedBy.ID, c.Audit.UpdatedBy.Name,
		).
		ToSql()
	if err != nil {
		return domain.RatingCompany{}, fmt.Errorf("build create rating company query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	if _, err := querier.Exec(ctx, sqlStr, args...); err != nil {
		return domain.RatingCompany{}, postgres.MapError(err, fmt.Sprintf("create rating company %s", c.ID))
	}
	return c, nil
}

// GetByID returns a rating company by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.RatingCompany, error) {
	companies, err := r.getWhere(ctx, sq.Eq{"rc.id": id})
	if err != nil {
		return domain.RatingCompany{}, fmt.Errorf("get rating company: %w", err)
	}
	if len(companies) == 0 {
		return domain.RatingCompany{}, fmt.Errorf("rating company %s: %w", id, domain.ErrNotFound)
	}
	return companies[0], nil
}

// GetByIDs returns rating companies for the given ids; missing ids are
// absent. Used by the rated-card facet projection.
func (r *Repo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.RatingCompany, error) {
	if len(ids) == 0 {
		return []domain.RatingCompany{}, nil
	}
	companies, err := r.getWhere(ctx, sq.Eq{"rc.id": ids})
	if err != nil {
		return nil, fmt.Errorf("get rating companies by ids: %w", err)
	}
	return companies, nil
}

// Page returns one page of rating companies ordered by name, plus the
// total match count. Name filters with a case-insensitive substring; Scores
// matches companies whose score list overlaps the given values.
func (r *Repo) Page(ctx context.Context, filter domain.RatingCompanyFilter, page query.PageRequest) ([]domain.RatingCompany, int, error) {
	cond := sq.And{}
	if filter.Name != "" {
		cond = append(cond, sq.ILike{"rc.name": "%" + postgres.EscapeLike(filter.Name) + "%"})
	}
	if len(filter.Scores) > 0 {
		cond = append(cond, sq.Expr("rc.scores && ?", filter.Scores))
	}

	countSQL, countArgs, err := postgres.SB.Select("count(*)").
		From("rating_companies rc").
		Where(cond).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count rating companies query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, postgres.MapError(err, "count rating companies")
	}

	sqlStr, args, err := postgres.SB.Select(companyColumns...).
		From("rating_companies rc").
		Where(cond).
		OrderBy("rc.name ASC", "rc.id ASC").
		Limit(uint64(page.PageSize)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build page rating companies query: %w", err)
	}

	rows, err := querier.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, postgres.MapError(err, "page rating companies")
	}
	defer rows.Close()

	companies, err := scanCompanies(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("page rating companies: %w", err)
	}
	return companies, total, nil
}

// Update replaces every mutable field of a rating company.
func (r *Repo) Update(ctx context.Context, c domain.RatingCompany) (domain.RatingCompany, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	c.Audit.UpdatedAt = now

	fields, err := json.Marshal(c.OfficialWebsiteFields)
	if err != nil {
		return domain.RatingCompany{}, fmt.Errorf("encode website fields: %w", err)
	}

	sqlStr, args, err := postgres.SB.Update("rating_companies").
		SetMap(map[string]any{
			"name":                    c.Name,
			"scores":                  c.Scores,
			"official_website_url":    c.OfficialWebsiteURL,
			"official_website_fields": fields,
			"updated_at":              c.Audit.UpdatedAt,
			"updated_by_id":           c.Audit.UpdatedBy.ID,
			"updated_by_name":         c.Audit.UpdatedBy.Name,
		}).
		Where(sq.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return domain.RatingCompany{}, fmt.Errorf("build update rating company query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	tag, err := querier.Exec(ctx, sqlStr, args...)
	if err != nil {
		return domain.RatingCompany{}, postgres.MapError(err, fmt.Sprintf("update rating company %s", c.ID))
	}
	if tag.RowsAffected() == 0 {
		return domain.RatingCompany{}, fmt.Errorf("rating company %s: %w", c.ID, domain.ErrNotFound)
	}
	return c, nil
}

// Delete removes a rating company. Rated listings referencing it are
// protected by a foreign key and surface as domain.ErrConflict.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)
	tag, err := querier.Exec(ctx, "DELETE FROM rating_companies WHERE id = $1", id)
	if err != nil {
		return postgres.MapError(err, fmt.Sprintf("delete rating company %s", id))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("rating company %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) getWhere(ctx context.Context, cond sq.Sqlizer) ([]domain.RatingCompany, error) {
	sqlStr, args, err := postgres.SB.Select(companyColumns...).
		From("rating_companies rc").
		Where(cond).
		ToSql()
	if err != nil {
		return nil, err
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := querier.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, postgres.MapError(err, "query rating companies")
	}
	defer rows.Close()

	return scanCompanies(rows)
}

func scanCompanies(rows pgx.Rows) ([]domain.RatingCompany, error) {
	var companies []domain.RatingCompany
	for rows.Next() {
		var (
			c      domain.RatingCompany
			fields []byte
		)
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Scores,
			&c.OfficialWebsiteURL, &fields,
			&c.Audit.CreatedAt, &c.Audit.UpdatedAt,
			&c.Audit.CreatedBy.ID, &c.Audit.CreatedBy.Name,
			&c.Audit.UpdatedBy.ID, &c.Audit.UpdatedBy.Name,
		); err != nil {
			return nil, err
		}
		if len(fields) > 0 {
			if err := json.Unmarshal(fields, &c.OfficialWebsiteFields); err != nil {
				return nil, fmt.Errorf("decode website fields: %w", err)
			}
		}
		if c.OfficialWebsiteFields == nil {
			c.OfficialWebsiteFields = []domain.WebsiteField{}
		}
		if c.Scores == nil {
			c.Scores = []string{}
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if companies == nil {
		companies = []domain.RatingCompany{}
	}
	return companies, nil
}
