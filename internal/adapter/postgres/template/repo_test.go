package template_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/henrier/rico-backend/internal/adapter/postgres/template"
	"github.com/henrier/rico-backend/internal/adapter/postgres/testhelper"
	"github.com/henrier/rico-backend/internal/domain"
	"github.com/henrier/rico-backend/internal/query"
)

func newRepo(t *testing.T) (*template.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return template.New(pool), pool
}

func atkHpFields() []domain.FieldDefinition {
	return []domain.FieldDefinition{
		{Name: "atk", Type: domain.FieldTypeNumber, DisplayName: "Attack", Required: true},
		{Name: "hp", Type: domain.FieldTypeNumber, DisplayName: "Hit Points"},
	}
}

func TestRepo_Create_AndGetByID(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	actor := domain.ActorRef{ID: uuid.New(), Name: "op"}
	created, err := repo.Create(ctx, domain.FieldTemplate{
		Name: "Pokemon Battle Stats",
		Fields: []domain.FieldDefinition{
			{Name: "atk", Type: domain.FieldTypeNumber, DisplayName: "Attack", Required: true},
			{Name: "rarity", Type: domain.FieldTypeEnum, DisplayName: "Rarity", EnumOptions: []string{"C", "R", "SR"}},
		},
		Audit: domain.AuditMetadata{CreatedBy: actor, UpdatedBy: actor},
	})
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: unexpected error: %v", err)
	}
	if got.Name != "Pokemon Battle Stats" {
		t.Errorf("Name = %q", got.Name)
	}
	if len(got.Fields) != 2 {
		t.Fatalf("Fields: got %d, want 2", len(got.Fields))
	}
	if got.Fields[0].Name != "atk" || !got.Fields[0].Required {
		t.Errorf("Fields[0] = %+v", got.Fields[0])
	}
	if len(got.Fields[1].EnumOptions) != 3 {
		t.Errorf("EnumOptions = %v", got.Fields[1].EnumOptions)
	}
	if got.Audit.CreatedBy != actor {
		t.Errorf("CreatedBy = %v, want %v", got.Audit.CreatedBy, actor)
	}
}

func TestRepo_GetByID_NotFound(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)

	_, err := repo.GetByID(context.Background(), uuid.New())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetByID: error = %v, want ErrNotFound", err)
	}
}

func TestRepo_Page_NameFilter(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	marker := "pgtpl-" + uuid.New().String()[:8]
	match, err := repo.Create(ctx, domain.FieldTemplate{Name: marker + " Battle", Fields: atkHpFields()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	testhelper.SeedTemplate(t, pool, atkHpFields())

	items, total, err := repo.Page(ctx, domain.TemplateFilter{Name: marker},
		query.PageRequest{Current: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("Page: unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ID != match.ID {
		t.Fatalf("Page: got %d/%d, want the marked template", len(items), total)
	}
}

func TestRepo_Page_NameFilterLiteralWildcards(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	marker := "pgesc-" + uuid.New().String()[:8]
	match, err := repo.Create(ctx, domain.FieldTemplate{Name: marker + " 100% foil", Fields: atkHpFields()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, domain.FieldTemplate{Name: marker + " 100x foil", Fields: atkHpFields()}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	items, total, err := repo.Page(ctx, domain.TemplateFilter{Name: marker + " 100% foil"},
		query.PageRequest{Current: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("Page: unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ID != match.ID {
		t.Fatalf("Page: got %d/%d, want only the literal %%-named template", len(items), total)
	}
}

func TestRepo_Page_FieldLevelFilters(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	marker := "pgfld-" + uuid.New().String()[:8]
	withField, err := repo.Create(ctx, domain.FieldTemplate{
		Name: marker + " stats",
		Fields: []domain.FieldDefinition{
			{Name: "evolutionStage", Type: domain.FieldTypeText, DisplayName: "Evolution Stage", Required: true},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, domain.FieldTemplate{
		Name: marker + " other",
		Fields: []domain.FieldDefinition{
			{Name: "hp", Type: domain.FieldTypeNumber, DisplayName: "Hit Points"},
		},
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// substring on fieldName, scoped by the marker
	items, _, err := repo.Page(ctx, domain.TemplateFilter{Name: marker, FieldName: "evolution"},
		query.PageRequest{Current: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("Page fieldName: unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ID != withField.ID {
		t.Fatalf("Page fieldName: got %d templates, want 1", len(items))
	}

	// exact fieldType
	items, _, err = repo.Page(ctx, domain.TemplateFilter{Name: marker, FieldType: domain.FieldTypeText},
		query.PageRequest{Current: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("Page fieldType: unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ID != withField.ID {
		t.Fatalf("Page fieldType: got %d templates, want 1", len(items))
	}

	// required flag
	required := true
	items, _, err = repo.Page(ctx, domain.TemplateFilter{Name: marker, Required: &required},
		query.PageRequest{Current: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("Page required: unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ID != withField.ID {
		t.Fatalf("Page required: got %d templates, want 1", len(items))
	}
}

func TestRepo_Page_TemporalWindowHalfOpen(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()

	marker := "pgtime-" + uuid.New().String()[:8]
	created, err := repo.Create(ctx, domain.FieldTemplate{Name: marker, Fields: atkHpFields()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	at := got.Audit.CreatedAt

	start := at.Add(-time.Minute)
	end := at.Add(time.Minute)
	items, _, err := repo.Page(ctx,
		domain.TemplateFilter{Name: marker, CreatedAtStart: &start, CreatedAtEnd: &end},
		query.PageRequest{Current: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("Page: unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Page inside window: got %d, want 1", len(items))
	}

	// end is exclusive: a window ending exactly at created_at excludes the row
	items, _, err = repo.Page(ctx,
		domain.TemplateFilter{Name: marker, CreatedAtEnd: &at},
		query.PageRequest{Current: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("Page: unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Page at exclusive end: got %d, want 0", len(items))
	}
}

func TestRepo_Rename_And_ReplaceFields(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	seeded := testhelper.SeedTemplate(t, pool, atkHpFields())
	actor := domain.ActorRef{ID: uuid.New(), Name: "editor"}

	if err := repo.Rename(ctx, seeded.ID, "Renamed Stats", actor); err != nil {
		t.Fatalf("Rename: unexpected error: %v", err)
	}

	newFields := []domain.FieldDefinition{
		{Name: "weakness", Type: domain.FieldTypeText, DisplayName: "Weakness"},
	}
	if err := repo.ReplaceFields(ctx, seeded.ID, newFields, actor); err != nil {
		t.Fatalf("ReplaceFields: unexpected error: %v", err)
	}

	got, err := repo.GetByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("GetByID: unexpected error: %v", err)
	}
	if got.Name != "Renamed Stats" {
		t.Errorf("Name = %q, want Renamed Stats", got.Name)
	}
	if len(got.Fields) != 1 || got.Fields[0].Name != "weakness" {
		t.Errorf("Fields = %+v, want the replacement set", got.Fields)
	}
	if got.Audit.UpdatedBy != actor {
		t.Errorf("UpdatedBy = %v, want %v", got.Audit.UpdatedBy, actor)
	}

	if err := repo.Rename(ctx, uuid.New(), "x", actor); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Rename missing: error = %v, want ErrNotFound", err)
	}
}

func TestRepo_Delete(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	seeded := testhelper.SeedTemplate(t, pool, atkHpFields())

	if err := repo.Delete(ctx, seeded.ID); err != nil {
		t.Fatalf("Delete: unexpected error: %v", err)
	}
	if _, err := repo.GetByID(ctx, seeded.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetByID after delete: error = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, seeded.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("double Delete: error = %v, want ErrNotFound", err)
	}
}
