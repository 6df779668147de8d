package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/henrier/rico-backend/internal/domain"
)

// ProductInput carries the full desired state of a product. RawCardEffects
// is the wire-decoded dynamic value map, validated against the referenced
// template before any write.
type ProductInput struct {
	Name             domain.I18NString
	Code             string
	Level            string
	SuggestedPrice   float64
	CardLanguage     domain.CardLanguage
	Type             domain.ProductType
	CategoryIDs      []uuid.UUID
	EffectTemplateID *uuid.UUID
	RawCardEffects   map[string]any
	Images           []string
}

func (in ProductInput) validate() error {
	if in.Name.IsEmpty() {
		return fmt.Errorf("product name is empty: %w", domain.ErrValidation)
	}
	if !in.CardLanguage.IsValid() {
		return fmt.Errorf("card language %q: %w", in.CardLanguage, domain.ErrValidation)
	}
	if !in.Type.IsValid() {
		return fmt.Errorf("product type %q: %w", in.Type, domain.ErrValidation)
	}
	if in.SuggestedPrice < 0 {
		return fmt.Errorf("suggested price must be >= 0: %w", domain.ErrValidation)
	}
	if in.EffectTemplateID == nil && len(in.RawCardEffects) > 0 {
		return fmt.Errorf("card effects without a template: %w", domain.ErrValidation)
	}
	return nil
}

// resolveCardEffects validates the raw dynamic values against the
// referenced template. Every violation is collected into one error.
func (s *Service) resolveCardEffects(ctx context.Context, in ProductInput) ([]domain.FieldValue, error) {
	if in.EffectTemplateID == nil {
		return []domain.FieldValue{}, nil
	}
	tmpl, err := s.templates.GetByID(ctx, *in.EffectTemplateID)
	if err != nil {
		return nil, err
	}
	return domain.ValidateValueSet(&tmpl, in.RawCardEffects)
}

// CreateProduct validates and persists one product, including its dynamic
// card effects.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (domain.Product, error) {
	if err := in.validate(); err != nil {
		return domain.Product{}, err
	}
	effects, err := s.resolveCardEffects(ctx, in)
	if err != nil {
		return domain.Product{}, err
	}

	actor := actorFromCtx(ctx)
	// The product row and its category memberships are separate statements;
	// one transaction keeps a dangling category id from leaving a half
	// written product behind.
	var created domain.Product
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		created, err = s.products.Create(txCtx, domain.Product{
			Name:             in.Name,
			Code:             in.Code,
			Level:            in.Level,
			SuggestedPrice:   in.SuggestedPrice,
			CardLanguage:     in.CardLanguage,
			Type:             in.Type,
			CategoryIDs:      in.CategoryIDs,
			EffectTemplateID: in.EffectTemplateID,
			CardEffects:      effects,
			Images:           in.Images,
			Audit:            domain.AuditMetadata{CreatedBy: actor, UpdatedBy: actor},
		})
		return err
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.log.InfoContext(ctx, "product created", "product_id", created.ID, "code", created.Code)
	return created, nil
}

// UpdateProduct replaces the full state of a product.
func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) (domain.Product, error) {
	if err := in.validate(); err != nil {
		return domain.Product{}, err
	}
	effects, err := s.resolveCardEffects(ctx, in)
	if err != nil {
		return domain.Product{}, err
	}

	current, err := s.products.GetByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	next := domain.Product{
		ID:               id,
		Name:             in.Name,
		Code:             in.Code,
		Level:            in.Level,
		SuggestedPrice:   in.SuggestedPrice,
		CardLanguage:     in.CardLanguage,
		Type:             in.Type,
		CategoryIDs:      in.CategoryIDs,
		EffectTemplateID: in.EffectTemplateID,
		CardEffects:      effects,
		Images:           in.Images,
		Audit: domain.AuditMetadata{
			CreatedAt: current.Audit.CreatedAt,
			CreatedBy: current.Audit.CreatedBy,
			UpdatedBy: actorFromCtx(ctx),
		},
	}

	// Category membership replacement deletes then re-inserts; without a
	// transaction a failed re-insert would commit the delete alone.
	var updated domain.Product
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		updated, err = s.products.Update(txCtx, next)
		return err
	})
	if err != nil {
		return domain.Product{}, err
	}
	return updated, nil
}

// UpdateProductCardEffects replaces only the dynamic values of a product,
// revalidated against its current template.
func (s *Service) UpdateProductCardEffects(ctx context.Context, id uuid.UUID, raw map[string]any) error {
	current, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.EffectTemplateID == nil {
		return fmt.Errorf("product %s has no effect template: %w", id, domain.ErrValidation)
	}

	tmpl, err := s.templates.GetByID(ctx, *current.EffectTemplateID)
	if err != nil {
		return err
	}
	effects, err := domain.ValidateValueSet(&tmpl, raw)
	if err != nil {
		return err
	}

	return s.products.UpdateCardEffects(ctx, id, effects, actorFromCtx(ctx))
}

// GetProduct returns one product by id.
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

// GetProducts returns the products for the given ids; missing ids are
// silently absent.
func (s *Service) GetProducts(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error) {
	return s.products.GetByIDs(ctx, ids)
}

// DeleteProduct removes one product. Products still referenced by listings
// surface as domain.ErrConflict.
func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "product deleted", "product_id", id)
	return nil
}
