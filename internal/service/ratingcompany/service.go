// Package ratingcompany implements the grading company aggregate: the
// score lists and website field descriptors rated-card listings reference.
package ratingcompany

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

type companyRepo interface {
	Create(ctx context.Context, c domain.RatingCompany) (domain.RatingCompany, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.RatingCompany, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.RatingCompany, error)
	Page(ctx context.Context, filter domain.RatingCompanyFilter, page query.PageRequest) ([]domain.RatingCompany, int, error)
	Update(ctx context.Context, c domain.RatingCompany) (domain.RatingCompany, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service implements the rating company business logic.
type Service struct {
	log       *slog.Logger
	companies companyRepo
	limits    query.PageLimits
}

// NewService creates a new RatingCompany service.
func NewService(logger *slog.Logger, companies companyRepo, pageCfg config.PaginationConfig) *Service {
	return &Service{
		log:       logger.With("service", "ratingcompany"),
		companies: companies,
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

// CompanyInput carries the full desired state of a rating company.
type CompanyInput struct {
	Name                  string
	Scores                []string
	OfficialWebsiteURL    string
	OfficialWebsiteFields []domain.WebsiteField
}

func (in CompanyInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("company name is empty: %w", domain.ErrValidation)
	}
	if len(in.Scores) == 0 {
		return fmt.Errorf("score list is empty: %w", domain.ErrValidation)
	}
	for _, s := range in.Scores {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("blank score value: %w", domain.ErrValidation)
		}
	}
	return nil
}

// Create registers a new rating company. Company names are unique; a
// duplicate surfaces as domain.ErrConflict.
func (s *Service) Create(ctx context.Context, in CompanyInput) (domain.RatingCompany, error) {
	if err := in.validate(); err != nil {
		return domain.RatingCompany{}, err
	}

	actor := actorFromCtx(ctx)
	created, err := s.companies.Create(ctx, domain.RatingCompany{
		Name:                  in.Name,
		Scores:                in.Scores,
		OfficialWebsiteURL:    in.OfficialWebsiteURL,
		OfficialWebsiteFields: in.OfficialWebsiteFields,
		Audit:                 domain.AuditMetadata{CreatedBy: actor, UpdatedBy: actor},
	})
	if err != nil {
		return domain.RatingCompany{}, err
	}

	s.log.InfoContext(ctx, "rating company created", "company_id", created.ID, "name", created.Name)
	return created, nil
}

// Rename sets the company name.
func (s *Service) Rename(ctx context.Context, id uuid.UUID, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("company name is empty: %w", domain.ErrValidation)
	}
	return s.mutate(ctx, id, func(c *domain.RatingCompany) {
		c.Name = name
	})
}

// ReplaceScores replaces the whole score list.
func (s *Service) ReplaceScores(ctx context.Context, id uuid.UUID, scores []string) error {
	if len(scores) == 0 {
		return fmt.Errorf("score list is empty: %w", domain.ErrValidation)
	}
	for _, sc := range scores {
		if strings.TrimSpace(sc) == "" {
			return fmt.Errorf("blank score value: %w", domain.ErrValidation)
		}
	}
	return s.mutate(ctx, id, func(c *domain.RatingCompany) {
		c.Scores = scores
	})
}

// ReplaceWebsiteFields replaces the official website descriptor wholesale.
func (s *Service) ReplaceWebsiteFields(ctx context.Context, id uuid.UUID, url string, fields []domain.WebsiteField) error {
	return s.mutate(ctx, id, func(c *domain.RatingCompany) {
		c.OfficialWebsiteURL = url
		c.OfficialWebsiteFields = fields
	})
}

func (s *Service) mutate(ctx context.Context, id uuid.UUID, apply func(*domain.RatingCompany)) error {
	current, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return err
	}
	apply(&current)
	current.Audit.UpdatedBy = actorFromCtx(ctx)
	_, err = s.companies.Update(ctx, current)
	return err
}

// Page returns one page of rating companies plus the total match count.
func (s *Service) Page(ctx context.Context, filter domain.RatingCompanyFilter, page query.PageRequest) (query.Page[domain.RatingCompany], error) {
	window := page.Normalize(s.limits)
	companies, total, err := s.companies.Page(ctx, filter, window)
	if err != nil {
		return query.Page[domain.RatingCompany]{}, err
	}
	return query.Page[domain.RatingCompany]{
		Items:    companies,
		Current:  window.Current,
		PageSize: window.PageSize,
		Total:    total,
	}, nil
}

// Get returns one rating company by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.RatingCompany, error) {
	return s.companies.GetByID(ctx, id)
}

// GetByIDs returns rating companies for the given ids; missing ids are
// silently absent.
func (s *Service) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.RatingCompany, error) {
	return s.companies.GetByIDs(ctx, ids)
}

// Delete removes a rating company. Companies still referenced by rated-card
// listings surface as domain.ErrConflict.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.companies.Delete(ctx, id); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "rating company deleted", "company_id", id)
	return nil
}
