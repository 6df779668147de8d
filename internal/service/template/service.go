// Package template implements the field template registry: the dynamic
// attribute schemas that product records bind their card effect values to.
package template

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/henrier/rico-backend/internal/config"
	"github.com/henrier/rico-backend/internal/domain"
	"github.com/henrier/rico-backend/internal/query"
	"github.com/henrier/rico-backend/pkg/ctxutil"
)

type templateRepo interface {
	Create(ctx context.Context, t domain.FieldTemplate) (domain.FieldTemplate, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.FieldTemplate, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.FieldTemplate, error)
	Page(ctx context.Context, filter domain.TemplateFilter, page query.PageRequest) ([]domain.FieldTemplate, int, error)
	Rename(ctx context.Context, id uuid.UUID, name string, actor domain.ActorRef) error
	ReplaceFields(ctx context.Context, id uuid.UUID, fields []domain.FieldDefinition, actor domain.ActorRef) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type productRepo interface {
	IDsByTemplateID(ctx context.Context, templateID uuid.UUID) ([]uuid.UUID, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements the template registry business logic.
type Service struct {
	log       *slog.Logger
	templates templateRepo
	products  productRepo
	tx        txManager
	limits    query.PageLimits
}

// NewService creates a new Template service.
func NewService(
	logger *slog.Logger,
	templates templateRepo,
	products productRepo,
	tx txManager,
	pageCfg config.PaginationConfig,
) *Service {
	return &Service{
		log:       logger.With("service", "template"),
		templates: templates,
		products:  products,
		tx:        tx,
		limits: query.PageLimits{
			DefaultSize: pageCfg.DefaultPageSize,
			MinSize:     pageCfg.MinPageSize,
			MaxSize:     pageCfg.MaxPageSize,
		},
	}
}

func actorFromCtx(ctx context.Context) domain.ActorRef {
	a, ok := ctxutil.ActorFromCtx(ctx)
	if !ok {
		return domain.ActorRef{}
	}
	return domain.ActorRef{ID: a.ID, Name: a.Name}
}

// Create registers a new template with an empty field set.
func (s *Service) Create(ctx context.Context, name string) (domain.FieldTemplate, error) {
	return s.CreateWithFields(ctx, name, nil)
}

// CreateWithFields registers a new template with an initial field set. The
// field set is validated as a whole before any write.
func (s *Service) CreateWithFields(ctx context.Context, name string, fields []domain.FieldDefinition) (domain.FieldTemplate, error) {
	if strings.TrimSpace(name) == "" {
		return domain.FieldTemplate{}, fmt.Errorf("template name is empty: %w", domain.ErrValidation)
	}
	if err := domain.ValidateFieldSet(fields); err != nil {
		return domain.FieldTemplate{}, err
	}
	if fields == nil {
		fields = []domain.FieldDefinition{}
	}

	actor := actorFromCtx(ctx)
	created, err := s.templates.Create(ctx, domain.FieldTemplate{
		Name:   name,
		Fields: fields,
		Audit:  domain.AuditMetadata{CreatedBy: actor, UpdatedBy: actor},
	})
	if err != nil {
		return domain.FieldTemplate{}, err
	}

	s.log.InfoContext(ctx, "template created", "template_id", created.ID, "name", created.Name)
	return created, nil
}

// Rename sets the template display name.
func (s *Service) Rename(ctx context.Context, id uuid.UUID, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("template name is empty: %w", domain.ErrValidation)
	}
	return s.templates.Rename(ctx, id, name, actorFromCtx(ctx))
}

// ReplaceFields replaces the whole field definition set. Value sets already
// bound to the template through products are revalidated against the new
// definitions; any mismatch rejects the replace unless force is set.
func (s *Service) ReplaceFields(ctx context.Context, id uuid.UUID, fields []domain.FieldDefinition, force bool) error {
	if err := domain.ValidateFieldSet(fields); err != nil {
		return err
	}

	actor := actorFromCtx(ctx)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if !force {
			if err := s.checkBoundProducts(ctx, id, fields); err != nil {
				return err
			}
		}
		return s.templates.ReplaceFields(ctx, id, fields, actor)
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "template fields replaced", "template_id", id, "fields", len(fields), "force", force)
	return nil
}

// checkBoundProducts revalidates every bound product value set against the
// candidate field definitions.
func (s *Service) checkBoundProducts(ctx context.Context, id uuid.UUID, fields []domain.FieldDefinition) error {
	productIDs, err := s.products.IDsByTemplateID(ctx, id)
	if err != nil {
		return err
	}
	if len(productIDs) == 0 {
		return nil
	}

	products, err := s.products.GetByIDs(ctx, productIDs)
	if err != nil {
		return err
	}

	next := domain.FieldTemplate{ID: id, Fields: fields}
	for _, p := range products {
		if _, err := domain.RevalidateValues(&next, p.CardEffects); err != nil {
			return fmt.Errorf("product %s values incompatible with new fields: %w: %w", p.ID, err, domain.ErrConflict)
		}
	}
	return nil
}

// Page returns one page of templates plus the total match count.
func (s *Service) Page(ctx context.Context, filter domain.TemplateFilter, page query.PageRequest) (query.Page[domain.FieldTemplate], error) {
	window := page.Normalize(s.limits)
	templates, total, err := s.templates.Page(ctx, filter, window)
	if err != nil {
		return query.Page[domain.FieldTemplate]{}, err
	}
	return query.Page[domain.FieldTemplate]{
		Items:    templates,
		Current:  window.Current,
		PageSize: window.PageSize,
		Total:    total,
	}, nil
}

// Get returns one template by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.FieldTemplate, error) {
	return s.templates.GetByID(ctx, id)
}

// GetByIDs returns templates for the given ids; missing ids are silently
// absent.
func (s *Service) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.FieldTemplate, error) {
	return s.templates.GetByIDs(ctx, ids)
}

// Delete removes a template. Templates still referenced by products surface
// as domain.ErrConflict.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.templates.Delete(ctx, id); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "template deleted", "template_id", id)
	return nil
}
