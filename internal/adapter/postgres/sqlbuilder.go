package postgres

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/henrier/rico-backend/internal/query"
)

// SB is the statement builder used by every repository: PostgreSQL
// dollar placeholders.
var SB = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// listingColumns maps canonical attribute paths on the listing relation
// (aliased l) to columns.
var listingColumns = map[string]string{
	"id":                         "l.id",
	"owner":                      "l.owner_id",
	"productInfo":                "l.product_id",
	"bundleProduct":              "l.bundle_product_id",
	"type":                       "l.type",
	"status":                     "l.status",
	"condition":                  "l.condition",
	"isMainImage":                "l.is_main_image",
	"notes":                      "l.notes",
	"price":                      "l.price",
	"quantity":                   "l.quantity",
	"limitedTimePrice":           "l.limited_time_price",
	"deadline":                   "l.deadline",
	"createdAt":                  "l.created_at",
	"updatedAt":                  "l.updated_at",
	"createdBy":                  "l.created_by_name",
	"updatedBy":                  "l.updated_by_name",
	"ratedCard.ratingCompany":    "l.rating_company_id",
	"ratedCard.cardScore":        "l.card_score",
	"ratedCard.gradedCardNumber": "l.graded_card_number",
}

// productColumns maps product-side attribute paths (aliased p).
var productColumns = map[string]string{
	"name.chinese":   "p.name_zh",
	"name.english":   "p.name_en",
	"name.japanese":  "p.name_ja",
	"code":           "p.code",
	"level":          "p.level",
	"cardLanguage":   "p.card_language",
	"suggestedPrice": "p.suggested_price",
}

// BuildPredicate renders a compiled predicate tree into a squirrel
// condition. The second return reports whether the condition touches
// product-side attributes and therefore needs the product join.
func BuildPredicate(node query.Node) (sq.Sqlizer, bool, error) {
	b := &predicateBuilder{}
	cond, err := b.build(node)
	if err != nil {
		return nil, false, err
	}
	return cond, b.needsProduct, nil
}

type predicateBuilder struct {
	needsProduct bool
}

func (b *predicateBuilder) build(node query.Node) (sq.Sqlizer, error) {
	switch n := node.(type) {
	case query.And:
		conj := make(sq.And, 0, len(n.Nodes))
		for _, child := range n.Nodes {
			c, err := b.build(child)
			if err != nil {
				return nil, err
			}
			conj = append(conj, c)
		}
		return conj, nil

	case query.Or:
		disj := make(sq.Or, 0, len(n.Nodes))
		for _, child := range n.Nodes {
			c, err := b.build(child)
			if err != nil {
				return nil, err
			}
			disj = append(disj, c)
		}
		return disj, nil

	case query.Eq:
		col, err := b.column(n.Field)
		if err != nil {
			return nil, err
		}
		return sq.Eq{col: n.Value}, nil

	case query.In:
		return b.buildIn(n)

	case query.Contains:
		return b.buildContains(n)

	case query.Range:
		col, err := b.column(n.Field)
		if err != nil {
			return nil, err
		}
		var conj sq.And
		if n.MinSet {
			conj = append(conj, sq.GtOrEq{col: n.Min})
		}
		if n.MaxSet {
			if n.HalfOpen {
				conj = append(conj, sq.Lt{col: n.Max})
			} else {
				conj = append(conj, sq.LtOrEq{col: n.Max})
			}
		}
		return conj, nil
	}
	return nil, fmt.Errorf("unsupported predicate node %T", node)
}

func (b *predicateBuilder) buildIn(n query.In) (sq.Sqlizer, error) {
	// Category membership goes through the join table, not a column.
	if n.Field == query.FieldCategories {
		b.needsProduct = true
		return sq.Expr(
			"EXISTS (SELECT 1 FROM product_categories pc WHERE pc.product_id = p.id AND pc.category_id = ANY(?))",
			uuidSlice(n.Values),
		), nil
	}

	col, err := b.column(n.Field)
	if err != nil {
		return nil, err
	}
	return sq.Eq{col: n.Values}, nil
}

func (b *predicateBuilder) buildContains(n query.Contains) (sq.Sqlizer, error) {
	pattern := "%" + EscapeLike(n.Needle) + "%"

	// Rating infos are free-form pairs stored as a jsonb array.
	switch n.Field {
	case query.FieldRatingInfoName:
		return sq.Expr(
			"EXISTS (SELECT 1 FROM jsonb_array_elements(l.rating_infos) ri WHERE ri->>'name' ILIKE ?)",
			pattern,
		), nil
	case query.FieldRatingInfoValue:
		return sq.Expr(
			"EXISTS (SELECT 1 FROM jsonb_array_elements(l.rating_infos) ri WHERE ri->>'value' ILIKE ?)",
			pattern,
		), nil
	}

	col, err := b.column(n.Field)
	if err != nil {
		return nil, err
	}
	return sq.ILike{col: pattern}, nil
}

func (b *predicateBuilder) column(f query.Field) (string, error) {
	switch f.Entity {
	case query.EntityListing:
		if col, ok := listingColumns[f.Name]; ok {
			return col, nil
		}
	case query.EntityProduct:
		if col, ok := productColumns[f.Name]; ok {
			b.needsProduct = true
			return col, nil
		}
	}
	return "", fmt.Errorf("no column mapping for %s.%s", f.Entity, f.Name)
}

// BuildOrderBy renders parsed sort keys into ORDER BY expressions and
// reports whether any key lives on the product relation.
func BuildOrderBy(order []query.OrderBy) ([]string, bool, error) {
	b := &predicateBuilder{}
	exprs := make([]string, 0, len(order))
	for _, key := range order {
		col, err := b.column(key.Field)
		if err != nil {
			return nil, false, err
		}
		dir := "ASC"
		if key.Desc {
			dir = "DESC"
		}
		exprs = append(exprs, col+" "+dir)
	}
	return exprs, b.needsProduct, nil
}

// EscapeLike neutralizes LIKE metacharacters in user-supplied needles.
// Every repo rendering a substring filter goes through it so % and _ in
// user input match literally.
func EscapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// uuidSlice narrows compiler-produced values to a typed slice so pgx
// encodes them as a uuid[] array parameter.
func uuidSlice(values []any) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		if id, ok := v.(uuid.UUID); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
