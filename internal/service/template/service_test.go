package template

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henrier/rico-backend/internal/config"
	"github.com/henrier/rico-backend/internal/domain"
	"github.com/henrier/rico-backend/internal/query"
	"github.com/henrier/rico-backend/pkg/ctxutil"
)

type mockTemplateRepo struct {
	CreateFunc        func(ctx context.Context, t domain.FieldTemplate) (domain.FieldTemplate, error)
	GetByIDFunc       func(ctx context.Context, id uuid.UUID) (domain.FieldTemplate, error)
	GetByIDsFunc      func(ctx context.Context, ids []uuid.UUID) ([]domain.FieldTemplate, error)
	PageFunc          func(ctx context.Context, filter domain.TemplateFilter, page query.PageRequest) ([]domain.FieldTemplate, int, error)
	RenameFunc        func(ctx context.Context, id uuid.UUID, name string, actor domain.ActorRef) error
	ReplaceFieldsFunc func(ctx context.Context, id uuid.UUID, fields []domain.FieldDefinition, actor domain.ActorRef) error
	DeleteFunc        func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTemplateRepo) Create(ctx context.Context, t domain.FieldTemplate) (domain.FieldTemplate, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, t)
	}
	t.ID = uuid.New()
	return t, nil
}

func (m *mockTemplateRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.FieldTemplate, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return domain.FieldTemplate{}, domain.ErrNotFound
}

func (m *mockTemplateRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.FieldTemplate, error) {
	if m.GetByIDsFunc != nil {
		return m.GetByIDsFunc(ctx, ids)
	}
	return []domain.FieldTemplate{}, nil
}

func (m *mockTemplateRepo) Page(ctx context.Context, filter domain.TemplateFilter, page query.PageRequest) ([]domain.FieldTemplate, int, error) {
	if m.PageFunc != nil {
		return m.PageFunc(ctx, filter, page)
	}
	return []domain.FieldTemplate{}, 0, nil
}

func (m *mockTemplateRepo) Rename(ctx context.Context, id uuid.UUID, name string, actor domain.ActorRef) error {
	if m.RenameFunc != nil {
		return m.RenameFunc(ctx, id, name, actor)
	}
	return nil
}

func (m *mockTemplateRepo) ReplaceFields(ctx context.Context, id uuid.UUID, fields []domain.FieldDefinition, actor domain.ActorRef) error {
	if m.ReplaceFieldsFunc != nil {
		return m.ReplaceFieldsFunc(ctx, id, fields, actor)
	}
	return nil
}

func (m *mockTemplateRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

type mockProductRepo struct {
	IDsByTemplateIDFunc func(ctx context.Context, templateID uuid.UUID) ([]uuid.UUID, error)
	GetByIDsFunc        func(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error)
}

func (m *mockProductRepo) IDsByTemplateID(ctx context.Context, templateID uuid.UUID) ([]uuid.UUID, error) {
	if m.IDsByTemplateIDFunc != nil {
		return m.IDsByTemplateIDFunc(ctx, templateID)
	}
	return []uuid.UUID{}, nil
}

func (m *mockProductRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error) {
	if m.GetByIDsFunc != nil {
		return m.GetByIDsFunc(ctx, ids)
	}
	return []domain.Product{}, nil
}

type mockTxManager struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.RunInTxFunc != nil {
		return m.RunInTxFunc(ctx, fn)
	}
	return fn(ctx)
}

type fixture struct {
	templates *mockTemplateRepo
	products  *mockProductRepo
	tx        *mockTxManager
	svc       *Service
}

func newFixture() *fixture {
	f := &fixture{
		templates: &mockTemplateRepo{},
		products:  &mockProductRepo{},
		tx:        &mockTxManager{},
	}
	f.svc = NewService(
		slog.New(slog.DiscardHandler),
		f.templates, f.products, f.tx,
		config.PaginationConfig{DefaultPageSize: 20, MinPageSize: 1, MaxPageSize: 100},
	)
	return f
}

func numberField(name string, required bool) domain.FieldDefinition {
	return domain.FieldDefinition{Name: name, Type: domain.FieldTypeNumber, Required: required}
}

func TestService_CreateWithFields(t *testing.T) {
	t.Parallel()
	f := newFixture()

	actor := ctxutil.Actor{ID: uuid.New(), Name: "admin"}
	ctx := ctxutil.WithActor(context.Background(), actor)

	var created domain.FieldTemplate
	f.templates.CreateFunc = func(_ context.Context, tmpl domain.FieldTemplate) (domain.FieldTemplate, error) {
		created = tmpl
		tmpl.ID = uuid.New()
		return tmpl, nil
	}

	_, err := f.svc.CreateWithFields(ctx, "pokemon effects", []domain.FieldDefinition{
		numberField("atk", true),
		numberField("hp", false),
	})
	require.NoError(t, err)
	assert.Equal(t, "pokemon effects", created.Name)
	assert.Len(t, created.Fields, 2)
	assert.Equal(t, actor.ID, created.Audit.CreatedBy.ID)
}

func TestService_CreateWithFields_Validation(t *testing.T) {
	t.Parallel()
	f := newFixture()

	t.Run("empty name", func(t *testing.T) {
		_, err := f.svc.Create(context.Background(), "   ")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("duplicate field name", func(t *testing.T) {
		_, err := f.svc.CreateWithFields(context.Background(), "dup", []domain.FieldDefinition{
			numberField("atk", true),
			numberField("atk", false),
		})
		var serr *domain.SchemaError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, domain.SchemaDuplicateFieldName, serr.Code)
	})

	t.Run("enum without options", func(t *testing.T) {
		_, err := f.svc.CreateWithFields(context.Background(), "enum", []domain.FieldDefinition{
			{Name: "rarity", Type: domain.FieldTypeEnum},
		})
		var serr *domain.SchemaError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, domain.SchemaEmptyEnumOptions, serr.Code)
	})
}

func TestService_ReplaceFields_RejectsIncompatibleBoundValues(t *testing.T) {
	t.Parallel()
	f := newFixture()

	tmplID := uuid.New()
	productID := uuid.New()
	f.products.IDsByTemplateIDFunc = func(context.Context, uuid.UUID) ([]uuid.UUID, error) {
		return []uuid.UUID{productID}, nil
	}
	f.products.GetByIDsFunc = func(context.Context, []uuid.UUID) ([]domain.Product, error) {
		return []domain.Product{{
			ID:               productID,
			EffectTemplateID: &tmplID,
			CardEffects: []domain.FieldValue{
				{Name: "atk", Value: domain.TypedValue{Type: domain.FieldTypeNumber, Number: 5}},
			},
		}}, nil
	}

	var replaced bool
	f.templates.ReplaceFieldsFunc = func(context.Context, uuid.UUID, []domain.FieldDefinition, domain.ActorRef) error {
		replaced = true
		return nil
	}

	// "atk" becomes TEXT: the stored number no longer validates.
	newFields := []domain.FieldDefinition{
		{Name: "atk", Type: domain.FieldTypeText, Required: true},
	}

	err := f.svc.ReplaceFields(context.Background(), tmplID, newFields, false)
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.False(t, replaced, "replace must not be applied when bound values break")

	err = f.svc.ReplaceFields(context.Background(), tmplID, newFields, true)
	require.NoError(t, err)
	assert.True(t, replaced, "force must bypass the compatibility check")
}

func TestService_ReplaceFields_CompatibleBoundValues(t *testing.T) {
	t.Parallel()
	f := newFixture()

	tmplID := uuid.New()
	f.products.IDsByTemplateIDFunc = func(context.Context, uuid.UUID) ([]uuid.UUID, error) {
		return []uuid.UUID{uuid.New()}, nil
	}
	f.products.GetByIDsFunc = func(context.Context, []uuid.UUID) ([]domain.Product, error) {
		return []domain.Product{{
			CardEffects: []domain.FieldValue{
				{Name: "atk", Value: domain.TypedValue{Type: domain.FieldTypeNumber, Number: 5}},
			},
		}}, nil
	}

	// Widening the set keeps existing values valid.
	err := f.svc.ReplaceFields(context.Background(), tmplID, []domain.FieldDefinition{
		numberField("atk", true),
		numberField("hp", false),
	}, false)
	assert.NoError(t, err)
}

func TestService_ReplaceFields_InvalidFieldSet(t *testing.T) {
	t.Parallel()
	f := newFixture()

	var txRan bool
	f.tx.RunInTxFunc = func(ctx context.Context, fn func(ctx context.Context) error) error {
		txRan = true
		return fn(ctx)
	}

	err := f.svc.ReplaceFields(context.Background(), uuid.New(), []domain.FieldDefinition{
		{Name: "x", Type: "GEOMETRY"},
	}, false)
	var serr *domain.SchemaError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, domain.SchemaUnknownFieldType, serr.Code)
	assert.False(t, txRan)
}

func TestService_Rename_EmptyName(t *testing.T) {
	t.Parallel()
	f := newFixture()

	err := f.svc.Rename(context.Background(), uuid.New(), "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_Page_NormalizesWindow(t *testing.T) {
	t.Parallel()
	f := newFixture()

	var gotWindow query.PageRequest
	f.templates.PageFunc = func(_ context.Context, filter domain.TemplateFilter, page query.PageRequest) ([]domain.FieldTemplate, int, error) {
		gotWindow = page
		return []domain.FieldTemplate{{Name: "a"}}, 9, nil
	}

	page, err := f.svc.Page(context.Background(), domain.TemplateFilter{Name: "a"}, query.PageRequest{Current: -3, PageSize: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, gotWindow.Current)
	assert.Equal(t, 20, gotWindow.PageSize)
	assert.Equal(t, 9, page.Total)
}
