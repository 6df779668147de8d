package testhelper

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/henrier/rico-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

func testActor() domain.ActorRef {
	return domain.ActorRef{ID: uuid.New(), Name: "test-operator"}
}

// SeedTemplate creates a field template with the given definitions.
func SeedTemplate(t *testing.T, pool *pgxpool.Pool, fields []domain.FieldDefinition) domain.FieldTemplate {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	actor := testActor()
	tmpl := domain.FieldTemplate{
		ID:     uuid.New(),
		Name:   "Template " + uniqueSuffix(),
		Fields: fields,
		Audit: domain.AuditMetadata{
			CreatedAt: now, UpdatedAt: now,
			CreatedBy: actor, UpdatedBy: actor,
		},
	}

	data, err := json.Marshal(tmpl.Fields)
	if err != nil {
		t.Fatalf("testhelper: SeedTemplate marshal fields: %v", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO field_templates (id, name, fields, created_at, updated_at,
		    created_by_id, created_by_name, updated_by_id, updated_by_name)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		tmpl.ID, tmpl.Name, data, now, now, actor.ID, actor.Name, actor.ID, actor.Name,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedTemplate insert: %v", err)
	}
	return tmpl
}

// SeedCategory creates a category without parent edges.
func SeedCategory(t *testing.T, pool *pgxpool.Pool, name string) domain.Category {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	actor := testActor()
	c := domain.Category{
		ID:            uuid.New(),
		Name:          domain.I18NString{Chinese: name, English: name, Japanese: name},
		Images:        []string{},
		CategoryTypes: []domain.CategoryType{domain.CategoryTypeIP},
		ParentIDs:     []uuid.UUID{},
		Audit: domain.AuditMetadata{
			CreatedAt: now, UpdatedAt: now,
			CreatedBy: actor, UpdatedBy: actor,
		},
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO categories (id, name_zh, name_en, name_ja, images, category_types,
		    created_at, updated_at, created_by_id, created_by_name, updated_by_id, updated_by_name)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID, c.Name.Chinese, c.Name.English, c.Name.Japanese,
		c.Images, []string{string(domain.CategoryTypeIP)},
		now, now, actor.ID, actor.Name, actor.ID, actor.Name,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedCategory insert: %v", err)
	}
	return c
}

// SeedRatingCompany creates a rating company with a small score ladder.
func SeedRatingCompany(t *testing.T, pool *pgxpool.Pool) domain.RatingCompany {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	actor := testActor()
	c := domain.RatingCompany{
		ID:                    uuid.New(),
		Name:                  "Grader " + uniqueSuffix(),
		Scores:                []string{"8", "9", "9.5", "10"},
		OfficialWebsiteURL:    "https://grading.example.com",
		OfficialWebsiteFields: []domain.WebsiteField{},
		Audit: domain.AuditMetadata{
			CreatedAt: now, UpdatedAt: now,
			CreatedBy: actor, UpdatedBy: actor,
		},
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO rating_companies (id, name, scores, official_website_url, official_website_fields,
		    created_at, updated_at, created_by_id, created_by_name, updated_by_id, updated_by_name)
		 VALUES ($1, $2, $3, $4, '[]', $5, $6, $7, $8, $9, $10)`,
		c.ID, c.Name, c.Scores, c.OfficialWebsiteURL,
		now, now, actor.ID, actor.Name, actor.ID, actor.Name,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedRatingCompany insert: %v", err)
	}
	return c
}

// SeedProduct creates a product, optionally linked to categories.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, name string, categoryIDs ...uuid.UUID) domain.Product {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	actor := testActor()
	p := domain.Product{
		ID:             uuid.New(),
		Name:           domain.I18NString{Chinese: name + "-zh", English: name, Japanese: name + "-ja"},
		Code:           "CODE-" + uniqueSuffix(),
		Level:          "SR",
		SuggestedPrice: 100,
		CardLanguage:   domain.CardLanguageEnglish,
		Type:           domain.ProductTypeRaw,
		CategoryIDs:    categoryIDs,
		CardEffects:    []domain.FieldValue{},
		Images:         []string{},
		Audit: domain.AuditMetadata{
			CreatedAt: now, UpdatedAt: now,
			CreatedBy: actor, UpdatedBy: actor,
		},
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO products (id, name_zh, name_en, name_ja, code, level, suggested_price,
		    card_language, type, card_effects, images,
		    created_at, updated_at, created_by_id, created_by_name, updated_by_id, updated_by_name)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, '[]', $10, $11, $12, $13, $14, $15, $16)`,
		p.ID, p.Name.Chinese, p.Name.English, p.Name.Japanese, p.Code, p.Level, p.SuggestedPrice,
		string(p.CardLanguage), string(p.Type), p.Images,
		now, now, actor.ID, actor.Name, actor.ID, actor.Name,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedProduct insert: %v", err)
	}

	for _, catID := range categoryIDs {
		if _, err := pool.Exec(ctx,
			`INSERT INTO product_categories (product_id, category_id) VALUES ($1, $2)`,
			p.ID, catID,
		); err != nil {
			t.Fatalf("testhelper: SeedProduct category link: %v", err)
		}
	}
	if p.CategoryIDs == nil {
		p.CategoryIDs = []uuid.UUID{}
	}
	return p
}

// ListingOption mutates a listing fixture before insertion.
type ListingOption func(*domain.Listing)

// WithPrice sets the listing price.
func WithPrice(price float64) ListingOption {
	return func(l *domain.Listing) { l.Price = price }
}

// WithStatus sets the listing status.
func WithStatus(status domain.ListingStatus) ListingOption {
	return func(l *domain.Listing) { l.Status = status }
}

// WithOwner sets the owning shop.
func WithOwner(ownerID uuid.UUID) ListingOption {
	return func(l *domain.Listing) { l.OwnerID = ownerID }
}

// WithRatedCard attaches a grading sub-object and flips the type.
func WithRatedCard(companyID uuid.UUID, score string) ListingOption {
	return func(l *domain.Listing) {
		l.Type = domain.ListingTypeRatedCard
		l.RatedCard = &domain.RatedCard{
			RatingCompanyID:  companyID,
			CardScore:        score,
			GradedCardNumber: "GCN-" + uniqueSuffix(),
			RatingInfos:      []domain.RatingInfo{{Name: "centering", Value: score}},
		}
	}
}

// SeedListing creates a listing for a product with sane defaults, then
// applies the options.
func SeedListing(t *testing.T, pool *pgxpool.Pool, productID uuid.UUID, opts ...ListingOption) domain.Listing {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	actor := testActor()
	l := domain.Listing{
		ID:        uuid.New(),
		ProductID: productID,
		OwnerID:   uuid.New(),
		Type:      domain.ListingTypeRawCard,
		Status:    domain.ListingStatusListed,
		Condition: domain.CardConditionMint,
		Price:     10,
		Quantity:  1,
		Images:    []string{},
		Audit: domain.AuditMetadata{
			CreatedAt: now, UpdatedAt: now,
			CreatedBy: actor, UpdatedBy: actor,
		},
	}
	for _, opt := range opts {
		opt(&l)
	}

	var (
		ratingCompanyID  *uuid.UUID
		cardScore        *string
		gradedCardNumber *string
		ratingInfos      []byte
	)
	if l.RatedCard != nil {
		ratingCompanyID = &l.RatedCard.RatingCompanyID
		cardScore = &l.RatedCard.CardScore
		gradedCardNumber = &l.RatedCard.GradedCardNumber
		var err error
		ratingInfos, err = json.Marshal(l.RatedCard.RatingInfos)
		if err != nil {
			t.Fatalf("testhelper: SeedListing marshal rating infos: %v", err)
		}
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO listings (id, product_id, owner_id, type, status, condition,
		    price, limited_time_price, deadline, quantity, notes, images, is_main_image,
		    rating_company_id, card_score, graded_card_number, rating_infos,
		    bundle_product_id, bundle_info,
		    created_at, updated_at, created_by_id, created_by_name, updated_by_id, updated_by_name)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		    $14, $15, $16, $17, $18, NULL, $19, $20, $21, $22, $23, $24)`,
		l.ID, l.ProductID, l.OwnerID, string(l.Type), string(l.Status), string(l.Condition),
		l.Price, l.LimitedTimePrice, l.Deadline, l.Quantity, l.Notes, l.Images, l.IsMainImage,
		ratingCompanyID, cardScore, gradedCardNumber, ratingInfos,
		l.BundleProductID,
		now, now, actor.ID, actor.Name, actor.ID, actor.Name,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedListing insert: %v", err)
	}
	return l
}
