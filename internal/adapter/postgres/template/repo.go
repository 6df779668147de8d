// Package template implements the FieldTemplate repository using
// PostgreSQL. The ordered field definitions are stored as a jsonb document;
// order inside the document is authoritative.
package template

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

// Repo provides field template persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new template repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var templateColumns = []string{
	"t.id", "t.name", "t.fields",
	"t.created_at", "t.updated_at",
	"t.created_by_id", "t.created_by_name",
	"t.updated_by_id", "t.updated_by_name",
}

// filterCondition renders a domain.TemplateFilter to a squirrel conjunction.
func filterCondition(f domain.TemplateFilter) sq.And {
	cond := sq.And{}
	if f.Name != "" {
		cond = append(cond, sq.ILike{"t.name": "%" + postgres.EscapeLike(f.Name) + "%"})
	}
	if f.CreatedBy != "" {
		cond = append(cond, sq.ILike{"t.created_by_name": "%" + postgres.EscapeLike(f.CreatedBy) + "%"})
	}
	if f.UpdatedBy != "" {
		cond = append(cond, sq.ILike{"t.updated_by_name": "%" + postgres.EscapeLike(f.UpdatedBy) + "%"})
	}
	if f.FieldName != "" {
		cond = append(cond, fieldExpr("f->>'fieldName' ILIKE ?", "%"+postgres.EscapeLike(f.FieldName)+"%"))
	}
	if f.DisplayName != "" {
		cond = append(cond, fieldExpr("f->>'displayName' ILIKE ?", "%"+postgres.EscapeLike(f.DisplayName)+"%"))
	}
	if f.Description != "" {
		cond = append(cond, fieldExpr("f->>'description' ILIKE ?", "%"+postgres.EscapeLike(f.Description)+"%"))
	}
	if f.FieldType != "" {
		cond = append(cond, fieldExpr("f->>'fieldType' = ?", string(f.FieldType)))
	}
	if f.Required != nil {
		cond = append(cond, fieldExpr("(f->>'required')::boolean = ?", *f.Required))
	}
	if f.CreatedAtStart != nil {
		cond = append(cond, sq.GtOrEq{"t.created_at": *f.CreatedAtStart})
	}
	if f.CreatedAtEnd != nil {
		cond = append(cond, sq.Lt{"t.created_at": *f.CreatedAtEnd})
	}
	if f.UpdatedAtStart != nil {
		cond = append(cond, sq.GtOrEq{"t.updated_at": *f.UpdatedAtStart})
	}
	if f.UpdatedAtEnd != nil {
		cond = append(cond, sq.Lt{"t.updated_at": *f.UpdatedAtEnd})
	}
	return cond
}

// fieldExpr wraps a per-field predicate in an EXISTS over the jsonb field
// definition array.
func fieldExpr(pred string, arg any) sq.Sqlizer {
	return sq.Expr("EXISTS (SELECT 1 FROM jsonb_array_elements(t.fields) f WHERE "+pred+")", arg)
}

// Create inserts a new template.
func (r *Repo) Create(ctx context.Context, t domain.FieldTemplate) (domain.FieldTemplate, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.Audit.CreatedAt = now
	t.Audit.UpdatedAt = now

	fields, err := json.Marshal(t.Fields)
	if err != nil {
		return domain.FieldTemplate{}, fmt.Errorf("encode template fields: %w", err)
	}

	sqlStr, args, err := postgres.SB.Insert("field_templates").
		Columns(
			"id", "name", "fields",
			"created_at", "updated_at",
			"created_by_id", "created_by_name",
			"updated_by_id", "updated_by_name",
		).
		Values(
			t.ID, t.Name, fields,
			t.Audit.CreatedAt, t.Audit.UpdatedAt,
			t.Audit.CreatedBy.ID, t.Audit.CreatedBy.Name,
			t.Audit.UpdatedBy.ID, t.Audit.UpdatedBy.Name,
		).
		ToSql()
	if err != nil {
		return domain.FieldTemplate{}, fmt.Errorf("build create template query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	if _, err := querier.Exec(ctx, sqlStr, args...); err != nil {
		return domain.FieldTemplate{}, postgres.MapError(err, fmt.Sprintf("create template %s", t.ID))
	}
	return t, nil
}

// GetByID returns a template by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.FieldTemplate, error) {
	templates, err := r.getWhere(ctx, sq.Eq{"t.id": id})
	if err != nil {
		return domain.FieldTemplate{}, fmt.Errorf("get template: %w", err)
	}
	if len(templates) == 0 {
		return domain.FieldTemplate{}, fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
	}
	return templates[0], nil
}

// GetByIDs returns templates for the given ids; missing ids are absent.
func (r *Repo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.FieldTemplate, error) {
	if len(ids) == 0 {
		return []domain.FieldTemplate{}, nil
	}
	templates, err := r.getWhere(ctx, sq.Eq{"t.id": ids})
	if err != nil {
		return nil, fmt.Errorf("get templates by ids: %w", err)
	}
	return templates, nil
}

// Page returns one page of templates ordered by creation time descending,
// plus the total match count.
func (r *Repo) Page(ctx context.Context, filter domain.TemplateFilter, page query.PageRequest) ([]domain.FieldTemplate, int, error) {
	cond := filterCondition(filter)

	countSQL, countArgs, err := postgres.SB.Select("count(*)").
		From("field_templates t").
		Where(cond).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count templates query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, postgres.MapError(err, "count templates")
	}

	sqlStr, args, err := postgres.SB.Select(templateColumns...).
		From("field_templates t").
		Where(cond).
		OrderBy("t.created_at DESC", "t.id ASC").
		Limit(uint64(page.PageSize)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build page templates query: %w", err)
	}

	rows, err := querier.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, postgres.MapError(err, "page templates")
	}
	defer rows.Close()

	templates, err := scanTemplates(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("page templates: %w", err)
	}
	return templates, total, nil
}

// Rename sets the template display name.
func (r *Repo) Rename(ctx context.Context, id uuid.UUID, name string, actor domain.ActorRef) error {
	return r.update(ctx, id, map[string]any{"name": name}, actor)
}

// ReplaceFields replaces the whole field definition set.
func (r *Repo) ReplaceFields(ctx context.Context, id uuid.UUID, fields []domain.FieldDefinition, actor domain.ActorRef) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode template fields: %w", err)
	}
	return r.update(ctx, id, map[string]any{"fields": data}, actor)
}

// Delete removes a template. A template still referenced by products is
// protected by a foreign key and surfaces as domain.ErrConflict.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)
	tag, err := querier.Exec(ctx, "DELETE FROM field_templates WHERE id = $1", id)
	if err != nil {
		return postgres.MapError(err, fmt.Sprintf("delete template %s", id))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) update(ctx context.Context, id uuid.UUID, set map[string]any, actor domain.ActorRef) error {
	now := time.Now().UTC().Truncate(time.Microsecond)
	set["updated_at"] = now
	set["updated_by_id"] = actor.ID
	set["updated_by_name"] = actor.Name

	sqlStr, args, err := postgres.SB.Update("field_templates").
		SetMap(set).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update template query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	tag, err := querier.Exec(ctx, sqlStr, args...)
	if err != nil {
		return postgres.MapError(err, fmt.Sprintf("update template %s", id))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *Repo) getWhere(ctx context.Context, cond sq.Sqlizer) ([]domain.FieldTemplate, error) {
	sqlStr, args, err := postgres.SB.Select(templateColumns...).
		From("field_templates t").
		Where(cond).
		ToSql()
	if err != nil {
		return nil, err
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := querier.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, postgres.MapError(err, "query templates")
	}
	defer rows.Close()

	return scanTemplates(rows)
}

func scanTemplates(rows pgx.Rows) ([]domain.FieldTemplate, error) {
	var templates []domain.FieldTemplate
	for rows.Next() {
		var (
			t      domain.FieldTemplate
			fields []byte
		)
		if err := rows.Scan(
			&t.ID, &t.Name, &fields,
			&t.Audit.CreatedAt, &t.Audit.UpdatedAt,
			&t.Audit.CreatedBy.ID, &t.Audit.CreatedBy.Name,
			&t.Audit.UpdatedBy.ID, &t.Audit.UpdatedBy.Name,
		); err != nil {
			return nil, err
		}
		if len(fields) > 0 {
			if err := json.Unmarshal(fields, &t.Fields); err != nil {
				return nil, fmt.Errorf("decode template fields: %w", err)
			}
		}
		if t.Fields == nil {
			t.Fields = []domain.FieldDefinition{}
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if templates == nil {
		templates = []domain.FieldTemplate{}
	}
	return templates, nil
}
