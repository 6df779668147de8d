package postgres

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/henrier/rico-backend/internal/query"
)

func mustCompile(t *testing.T, params map[string][]string) query.Node {
	t.Helper()
	node, err := query.Compile(params)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	return node
}

func TestBuildPredicate_ListingOnly(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	node := mustCompile(t, map[string][]string{
		"owner":    {owner.String()},
		"status":   {"LISTED", "SOLDOUT"},
		"minPrice": {"15"},
	})

	cond, needsProduct, err := BuildPredicate(node)
	if err != nil {
		t.Fatalf("BuildPredicate() error = %v", err)
	}
	if needsProduct {
		t.Error("listing-only predicate should not require the product join")
	}

	sql, args, err := cond.ToSql()
	if err != nil {
		t.Fatalf("ToSql() error = %v", err)
	}
	for _, want := range []string{"l.owner_id = ?", "l.status IN (?,?)", "l.price >= ?"} {
		if !strings.Contains(sql, want) {
			t.Errorf("sql = %q, missing %q", sql, want)
		}
	}
	if len(args) != 4 {
		t.Errorf("len(args) = %d, want 4", len(args))
	}
}

func TestBuildPredicate_NameMergeNeedsProduct(t *testing.T) {
	t.Parallel()

	node := mustCompile(t, map[string][]string{"name": {"pika"}})

	cond, needsProduct, err := BuildPredicate(node)
	if err != nil {
		t.Fatalf("BuildPredicate() error = %v", err)
	}
	if !needsProduct {
		t.Error("name filter must require the product join")
	}

	sql, args, err := cond.ToSql()
	if err != nil {
		t.Fatalf("ToSql() error = %v", err)
	}
	for _, want := range []string{"p.name_zh ILIKE ?", "p.name_en ILIKE ?", "p.name_ja ILIKE ?", " OR "} {
		if !strings.Contains(sql, want) {
			t.Errorf("sql = %q, missing %q", sql, want)
		}
	}
	for _, a := range args {
		if a != "%pika%" {
			t.Errorf("arg = %v, want %%pika%%", a)
		}
	}
}

func TestBuildPredicate_CategoriesExists(t *testing.T) {
	t.Parallel()

	catA, catB := uuid.New(), uuid.New()
	node := mustCompile(t, map[string][]string{
		"categories": {catA.String(), catB.String()},
	})

	cond, needsProduct, err := BuildPredicate(node)
	if err != nil {
		t.Fatalf("BuildPredicate() error = %v", err)
	}
	if !needsProduct {
		t.Error("category filter must require the product join")
	}

	sql, args, err := cond.ToSql()
	if err != nil {
		t.Fatalf("ToSql() error = %v", err)
	}
	if !strings.Contains(sql, "EXISTS (SELECT 1 FROM product_categories pc") {
		t.Errorf("sql = %q, missing product_categories EXISTS", sql)
	}
	ids, ok := args[0].([]uuid.UUID)
	if !ok || len(ids) != 2 {
		t.Fatalf("args[0] = %#v, want []uuid.UUID of len 2", args[0])
	}
}

func TestBuildPredicate_RatingInfosJSONB(t *testing.T) {
	t.Parallel()

	node := mustCompile(t, map[string][]string{
		"ratedCardRatingInfosName":  {"centering"},
		"ratedCardRatingInfosValue": {"9.5"},
	})

	cond, needsProduct, err := BuildPredicate(node)
	if err != nil {
		t.Fatalf("BuildPredicate() error = %v", err)
	}
	if needsProduct {
		t.Error("rating infos live on the listing row, no product join expected")
	}

	sql, _, err := cond.ToSql()
	if err != nil {
		t.Fatalf("ToSql() error = %v", err)
	}
	for _, want := range []string{
		"jsonb_array_elements(l.rating_infos)",
		"ri->>'name' ILIKE ?",
		"ri->>'value' ILIKE ?",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("sql = %q, missing %q", sql, want)
		}
	}
}

func TestBuildPredicate_TemporalHalfOpen(t *testing.T) {
	t.Parallel()

	node := mustCompile(t, map[string][]string{
		"createdAtStart": {"2024-01-01"},
		"createdAtEnd":   {"2024-02-01"},
		"minPrice":       {"1"},
		"maxPrice":       {"2"},
	})

	cond, _, err := BuildPredicate(node)
	if err != nil {
		t.Fatalf("BuildPredicate() error = %v", err)
	}
	sql, _, err := cond.ToSql()
	if err != nil {
		t.Fatalf("ToSql() error = %v", err)
	}
	for _, want := range []string{
		"l.created_at >= ?", "l.created_at < ?",
		"l.price >= ?", "l.price <= ?",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("sql = %q, missing %q", sql, want)
		}
	}
	if strings.Contains(sql, "l.created_at <= ?") {
		t.Errorf("temporal upper bound must be exclusive, sql = %q", sql)
	}
}

func TestEscapeLike(t *testing.T) {
	t.Parallel()

	node := mustCompile(t, map[string][]string{"notes": {"50%_off"}})

	cond, _, err := BuildPredicate(node)
	if err != nil {
		t.Fatalf("BuildPredicate() error = %v", err)
	}
	_, args, err := cond.ToSql()
	if err != nil {
		t.Fatalf("ToSql() error = %v", err)
	}
	if got := args[0]; got != `%50\%\_off%` {
		t.Errorf("pattern = %v, want %%50\\%%\\_off%%", got)
	}
}

func TestBuildOrderBy(t *testing.T) {
	t.Parallel()

	order, err := query.ParseSort([]string{"price", "id"}, []string{"desc", "asc"})
	if err != nil {
		t.Fatalf("ParseSort() error = %v", err)
	}

	exprs, needsProduct, err := BuildOrderBy(order)
	if err != nil {
		t.Fatalf("BuildOrderBy() error = %v", err)
	}
	if needsProduct {
		t.Error("price/id sort should not require the product join")
	}
	want := []string{"l.price DESC", "l.id ASC"}
	if len(exprs) != len(want) {
		t.Fatalf("exprs = %v, want %v", exprs, want)
	}
	for i := range want {
		if exprs[i] != want[i] {
			t.Errorf("exprs[%d] = %q, want %q", i, exprs[i], want[i])
		}
	}
}

func TestBuildOrderBy_ProductField(t *testing.T) {
	t.Parallel()

	order, err := query.ParseSort([]string{"suggestedPrice"}, []string{"asc"})
	if err != nil {
		t.Fatalf("ParseSort() error = %v", err)
	}
	exprs, needsProduct, err := BuildOrderBy(order)
	if err != nil {
		t.Fatalf("BuildOrderBy() error = %v", err)
	}
	if !needsProduct {
		t.Error("suggestedPrice sort must require the product join")
	}
	want := []string{"p.suggested_price ASC", "l.id ASC"}
	if len(exprs) != len(want) {
		t.Fatalf("exprs = %v, want %v", exprs, want)
	}
	for i := range want {
		if exprs[i] != want[i] {
			t.Errorf("exprs[%d] = %q, want %q", i, exprs[i], want[i])
		}
	}
}
