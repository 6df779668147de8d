package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/henrier/rico-backend/internal/domain"
)

// ListingInput carries the full desired state of a listing for create and
// update. Updates replace, never merge.
type ListingInput struct {
	ProductID        uuid.UUID
	OwnerID          uuid.UUID
	Type             domain.ListingType
	Status           domain.ListingStatus
	Condition        domain.CardCondition
	Price            float64
	LimitedTimePrice *float64
	Deadline         *time.Time
	Quantity         int
	Notes            string
	Images           []string
	IsMainImage      bool
	RatedCard        *domain.RatedCard
	BundleProductID  *uuid.UUID
	BundleInfo       *domain.BundleInfo
}

func (in ListingInput) validate() error {
	if !in.Type.IsValid() {
		return fmt.Errorf("listing type %q: %w", in.Type, domain.ErrValidation)
	}
	if !in.Status.IsValid() {
		return fmt.Errorf("listing status %q: %w", in.Status, domain.ErrValidation)
	}
	if !in.Condition.IsValid() {
		return fmt.Errorf("card condition %q: %w", in.Condition, domain.ErrValidation)
	}
	if in.Price < 0 {
		return fmt.Errorf("price must be >= 0: %w", domain.ErrValidation)
	}
	if in.Quantity < 0 {
		return fmt.Errorf("quantity must be >= 0: %w", domain.ErrValidation)
	}
	if in.LimitedTimePrice != nil && *in.LimitedTimePrice < 0 {
		return fmt.Errorf("limited time price must be >= 0: %w", domain.ErrValidation)
	}

	// The grading sub-object and the RATEDCARD type imply each other.
	if in.Type == domain.ListingTypeRatedCard && in.RatedCard == nil {
		return fmt.Errorf("rated card listing without grading data: %w", domain.ErrValidation)
	}
	if in.Type != domain.ListingTypeRatedCard && in.RatedCard != nil {
		return fmt.Errorf("grading data on %s listing: %w", in.Type, domain.ErrValidation)
	}
	if in.RatedCard != nil && in.RatedCard.RatingCompanyID == uuid.Nil {
		return fmt.Errorf("rated card without rating company: %w", domain.ErrValidation)
	}
	return nil
}

func (in ListingInput) toDomain(actor domain.ActorRef) domain.Listing {
	return domain.Listing{
		ProductID:        in.ProductID,
		OwnerID:          in.OwnerID,
		Type:             in.Type,
		Status:           in.Status,
		Condition:        in.Condition,
		Price:            in.Price,
		LimitedTimePrice: in.LimitedTimePrice,
		Deadline:         in.Deadline,
		Quantity:         in.Quantity,
		Notes:            in.Notes,
		Images:           in.Images,
		IsMainImage:      in.IsMainImage,
		RatedCard:        in.RatedCard,
		BundleProductID:  in.BundleProductID,
		BundleInfo:       in.BundleInfo,
		Audit:            domain.AuditMetadata{CreatedBy: actor, UpdatedBy: actor},
	}
}

// CreateListing validates and persists one listing.
func (s *Service) CreateListing(ctx context.Context, in ListingInput) (domain.Listing, error) {
	if err := in.validate(); err != nil {
		return domain.Listing{}, err
	}

	actor := actorFromCtx(ctx)
	created, err := s.listings.Create(ctx, in.toDomain(actor))
	if err != nil {
		return domain.Listing{}, err
	}

	s.log.InfoContext(ctx, "listing created",
		"listing_id", created.ID, "product_id", created.ProductID, "type", created.Type)
	return created, nil
}

// CreateListings persists a batch of listings atomically: if any item is
// invalid or any insert fails, no listing is created.
func (s *Service) CreateListings(ctx context.Context, inputs []ListingInput) ([]domain.Listing, error) {
	for i, in := range inputs {
		if err := in.validate(); err != nil {
			return nil, fmt.Errorf("listing %d: %w", i, err)
		}
	}

	actor := actorFromCtx(ctx)
	created := make([]domain.Listing, 0, len(inputs))

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for i, in := range inputs {
			l, err := s.listings.Create(ctx, in.toDomain(actor))
			if err != nil {
				return fmt.Errorf("listing %d: %w", i, err)
			}
			created = append(created, l)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "listing batch created", "count", len(created))
	return created, nil
}

// UpdateListing replaces the full state of a listing.
func (s *Service) UpdateListing(ctx context.Context, id uuid.UUID, in ListingInput) (domain.Listing, error) {
	if err := in.validate(); err != nil {
		return domain.Listing{}, err
	}

	current, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return domain.Listing{}, err
	}
	if err := s.checkStatusTransition(current.Status, in.Status); err != nil {
		return domain.Listing{}, err
	}

	actor := actorFromCtx(ctx)
	next := in.toDomain(actor)
	next.ID = id
	next.Audit.CreatedAt = current.Audit.CreatedAt
	next.Audit.CreatedBy = current.Audit.CreatedBy

	return s.listings.Update(ctx, next)
}

// UpdateListingStatus moves one listing to a new status.
func (s *Service) UpdateListingStatus(ctx context.Context, id uuid.UUID, status domain.ListingStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("listing status %q: %w", status, domain.ErrValidation)
	}

	current, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkStatusTransition(current.Status, status); err != nil {
		return err
	}

	return s.listings.UpdateStatus(ctx, id, status, actorFromCtx(ctx))
}

// UpdateListingStatuses moves a batch of listings to a new status
// atomically: one bad transition rolls back the whole batch.
func (s *Service) UpdateListingStatuses(ctx context.Context, ids []uuid.UUID, status domain.ListingStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("listing status %q: %w", status, domain.ErrValidation)
	}

	actor := actorFromCtx(ctx)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, id := range ids {
			current, err := s.listings.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if err := s.checkStatusTransition(current.Status, status); err != nil {
				return err
			}
			if err := s.listings.UpdateStatus(ctx, id, status, actor); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "listing batch status updated", "count", len(ids), "status", status)
	return nil
}

// DeleteListing removes one listing.
func (s *Service) DeleteListing(ctx context.Context, id uuid.UUID) error {
	if err := s.listings.Delete(ctx, id); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "listing deleted", "listing_id", id)
	return nil
}

// DeleteListings removes a batch of listings atomically.
func (s *Service) DeleteListings(ctx context.Context, ids []uuid.UUID) error {
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, id := range ids {
			if err := s.listings.Delete(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "listing batch deleted", "count", len(ids))
	return nil
}

// checkStatusTransition enforces the listing workflow when the config
// toggle is on. Off, any valid status is accepted.
func (s *Service) checkStatusTransition(from, to domain.ListingStatus) error {
	if !s.cfg.EnforceStatusFlow {
		return nil
	}
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("status transition %s -> %s: %w", from, to, domain.ErrValidation)
	}
	return nil
}
