// Package category implements the category aggregate: localized names,
// type tags, and the acyclic parent graph products are classified under.
package category

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/henrier/rico-backend/internal/config"
	"github.com/henrier/rico-backend/internal/domain"
	"github.com/henrier/rico-backend/internal/query"
	"github.com/henrier/rico-backend/pkg/ctxutil"
)

type categoryRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Category, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Category, error)
	Page(ctx context.Context, filter domain.CategoryFilter, page query.PageRequest) ([]domain.Category, int, error)
	IsReachable(ctx context.Context, id, ancestor uuid.UUID) (bool, error)
	Create(ctx context.Context, c domain.Category) (domain.Category, error)
	UpdateName(ctx context.Context, id uuid.UUID, name domain.I18NString, actor domain.ActorRef) error
	ReplaceImages(ctx context.Context, id uuid.UUID, images []string, actor domain.ActorRef) error
	AddTypes(ctx context.Context, id uuid.UUID, types []domain.CategoryType, actor domain.ActorRef) error
	RemoveTypes(ctx context.Context, id uuid.UUID, types []domain.CategoryType, actor domain.ActorRef) error
	AddParent(ctx context.Context, id, parentID uuid.UUID, actor domain.ActorRef) error
	RemoveParent(ctx context.Context, id, parentID uuid.UUID, actor domain.ActorRef) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements the category business logic.
type Service struct {
	log        *slog.Logger
	categories categoryRepo
	tx         txManager
	limits     query.PageLimits
}

// NewService creates a new Category service.
func NewService(
	logger *slog.Logger,
	categories categoryRepo,
	tx txManager,
	pageCfg config.PaginationConfig,
) *Service {
	return &Service{
		log:        logger.With("service", "category"),
		categories: categories,
		tx:         tx,
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

func validateTypes(types []domain.CategoryType) error {
	for _, t := range types {
		if !t.IsValid() {
			return fmt.Errorf("category type %q: %w", t, domain.ErrValidation)
		}
	}
	return nil
}

// Create registers a new category without parent edges.
func (s *Service) Create(ctx context.Context, name domain.I18NString, types []domain.CategoryType, images []string) (domain.Category, error) {
	if name.IsEmpty() {
		return domain.Category{}, fmt.Errorf("category name is empty: %w", domain.ErrValidation)
	}
	if err := validateTypes(types); err != nil {
		return domain.Category{}, err
	}

	actor := actorFromCtx(ctx)
	created, err := s.categories.Create(ctx, domain.Category{
		Name:          name,
		CategoryTypes: types,
		Images:        images,
		Audit:         domain.AuditMetadata{CreatedBy: actor, UpdatedBy: actor},
	})
	if err != nil {
		return domain.Category{}, err
	}

	s.log.InfoContext(ctx, "category created", "category_id", created.ID)
	return created, nil
}

// Rename replaces the full localized name.
func (s *Service) Rename(ctx context.Context, id uuid.UUID, name domain.I18NString) error {
	if name.IsEmpty() {
		return fmt.Errorf("category name is empty: %w", domain.ErrValidation)
	}
	return s.categories.UpdateName(ctx, id, name, actorFromCtx(ctx))
}

// ReplaceImages replaces the whole image list.
func (s *Service) ReplaceImages(ctx context.Context, id uuid.UUID, images []string) error {
	return s.categories.ReplaceImages(ctx, id, images, actorFromCtx(ctx))
}

// AddTypes appends type tags; already-present tags are kept once.
func (s *Service) AddTypes(ctx context.Context, id uuid.UUID, types []domain.CategoryType) error {
	if err := validateTypes(types); err != nil {
		return err
	}
	if len(types) == 0 {
		return nil
	}
	return s.categories.AddTypes(ctx, id, types, actorFromCtx(ctx))
}

// RemoveTypes removes type tags; absent tags are ignored.
func (s *Service) RemoveTypes(ctx context.Context, id uuid.UUID, types []domain.CategoryType) error {
	if err := validateTypes(types); err != nil {
		return err
	}
	if len(types) == 0 {
		return nil
	}
	return s.categories.RemoveTypes(ctx, id, types, actorFromCtx(ctx))
}

// AddParents adds parent edges one by one, atomically for the batch. An
// edge that would close a cycle in the parent graph is rejected with
// domain.ErrConflict and rolls back the whole batch.
func (s *Service) AddParents(ctx context.Context, id uuid.UUID, parentIDs []uuid.UUID) error {
	actor := actorFromCtx(ctx)
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, parentID := range parentIDs {
			if parentID == id {
				return fmt.Errorf("category %s cannot parent itself: %w", id, domain.ErrConflict)
			}
			// A cycle closes when the new child is already an ancestor of
			// the new parent.
			reachable, err := s.categories.IsReachable(ctx, parentID, id)
			if err != nil {
				return err
			}
			if reachable {
				return fmt.Errorf("parent %s is a descendant of category %s: %w", parentID, id, domain.ErrConflict)
			}
			if err := s.categories.AddParent(ctx, id, parentID, actor); err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveParents removes parent edges atomically; a missing edge fails the
// batch with domain.ErrNotFound.
func (s *Service) RemoveParents(ctx context.Context, id uuid.UUID, parentIDs []uuid.UUID) error {
	actor := actorFromCtx(ctx)
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, parentID := range parentIDs {
			if err := s.categories.RemoveParent(ctx, id, parentID, actor); err != nil {
				return err
			}
		}
		return nil
	})
}

// Page returns one page of categories plus the total match count.
func (s *Service) Page(ctx context.Context, filter domain.CategoryFilter, page query.PageRequest) (query.Page[domain.Category], error) {
	window := page.Normalize(s.limits)
	categories, total, err := s.categories.Page(ctx, filter, window)
	if err != nil {
		return query.Page[domain.Category]{}, err
	}
	return query.Page[domain.Category]{
		Items:    categories,
		Current:  window.Current,
		PageSize: window.PageSize,
		Total:    total,
	}, nil
}

// Get returns one category by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Category, error) {
	return s.categories.GetByID(ctx, id)
}

// GetByIDs returns categories for the given ids; missing ids are silently
// absent.
func (s *Service) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Category, error) {
	return s.categories.GetByIDs(ctx, ids)
}

// Delete removes a category. Categories still referenced by products or
// child categories surface as domain.ErrConflict.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "category deleted", "category_id", id)
	return nil
}
