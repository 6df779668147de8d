package rest

import (
	"time"

	"github.com/google/uuid"

	"github.com/henrier/rico-backend/internal/domain"
	"github.com/henrier/rico-backend/internal/query"
	"github.com/henrier/rico-backend/internal/service/catalog"
	"github.com/henrier/rico-backend/internal/service/ratingcompany"
)

// Wire DTOs. Field names follow the admin frontend contract and are kept
// stable independently of the domain structs.

type auditDTO struct {
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	CreatedBy domain.ActorRef `json:"createdBy"`
	UpdatedBy domain.ActorRef `json:"updatedBy"`
}

func toAuditDTO(a domain.AuditMetadata) auditDTO {
	return auditDTO{
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
		CreatedBy: a.CreatedBy,
		UpdatedBy: a.UpdatedBy,
	}
}

// ---------------------------------------------------------------------------
// Listings
// ---------------------------------------------------------------------------

type ratedCardDTO struct {
	RatingCompany    uuid.UUID           `json:"ratingCompany"`
	CardScore        string              `json:"cardScore"`
	GradedCardNumber string              `json:"gradedCardNumber"`
	RatingInfos      []domain.RatingInfo `json:"ratingInfos,omitempty"`
}

type listingDTO struct {
	ID               uuid.UUID             `json:"id"`
	ProductInfo      uuid.UUID             `json:"productInfo"`
	Owner            uuid.UUID             `json:"owner"`
	Type             domain.ListingType    `json:"type"`
	Status           domain.ListingStatus  `json:"status"`
	Condition        domain.CardCondition  `json:"condition"`
	Price            float64               `json:"price"`
	LimitedTimePrice *float64              `json:"limitedTimePrice,omitempty"`
	Deadline         *time.Time            `json:"deadline,omitempty"`
	Quantity         int                   `json:"quantity"`
	Notes            string                `json:"notes,omitempty"`
	Images           []string              `json:"images,omitempty"`
	IsMainImage      bool                  `json:"isMainImage"`
	RatedCard        *ratedCardDTO         `json:"ratedCard,omitempty"`
	BundleProduct    *uuid.UUID            `json:"bundleProductInfo,omitempty"`
	BundleInfo       *domain.BundleInfo    `json:"bundleInfo,omitempty"`
	Audit            auditDTO              `json:"audit"`
}

func toListingDTO(l domain.Listing) listingDTO {
	dto := listingDTO{
		ID:               l.ID,
		ProductInfo:      l.ProductID,
		Owner:            l.OwnerID,
		Type:             l.Type,
		Status:           l.Status,
		Condition:        l.Condition,
		Price:            l.Price,
		LimitedTimePrice: l.LimitedTimePrice,
		Deadline:         l.Deadline,
		Quantity:         l.Quantity,
		Notes:            l.Notes,
		Images:           l.Images,
		IsMainImage:      l.IsMainImage,
		BundleProduct:    l.BundleProductID,
		BundleInfo:       l.BundleInfo,
		Audit:            toAuditDTO(l.Audit),
	}
	if l.RatedCard != nil {
		dto.RatedCard = &ratedCardDTO{
			RatingCompany:    l.RatedCard.RatingCompanyID,
			CardScore:        l.RatedCard.CardScore,
			GradedCardNumber: l.RatedCard.GradedCardNumber,
			RatingInfos:      l.RatedCard.RatingInfos,
		}
	}
	return dto
}

func toListingDTOs(listings []domain.Listing) []listingDTO {
	dtos := make([]listingDTO, 0, len(listings))
	for _, l := range listings {
		dtos = append(dtos, toListingDTO(l))
	}
	return dtos
}

type listingRequest struct {
	ProductInfo      uuid.UUID            `json:"productInfo"`
	Owner            uuid.UUID            `json:"owner"`
	Type             domain.ListingType   `json:"type"`
	Status           domain.ListingStatus `json:"status"`
	Condition        domain.CardCondition `json:"condition"`
	Price            float64              `json:"price"`
	LimitedTimePrice *float64             `json:"limitedTimePrice"`
	Deadline         *time.Time           `json:"deadline"`
	Quantity         int                  `json:"quantity"`
	Notes            string               `json:"notes"`
	Images           []string             `json:"images"`
	IsMainImage      bool                 `json:"isMainImage"`
	RatedCard        *ratedCardDTO        `json:"ratedCard"`
	BundleProduct    *uuid.UUID           `json:"bundleProductInfo"`
	BundleInfo       *domain.BundleInfo   `json:"bundleInfo"`
}

func (req listingRequest) toInput() catalog.ListingInput {
	in := catalog.ListingInput{
		ProductID:        req.ProductInfo,
		OwnerID:          req.Owner,
		Type:             req.Type,
		Status:           req.Status,
		Condition:        req.Condition,
		Price:            req.Price,
		LimitedTimePrice: req.LimitedTimePrice,
		Deadline:         req.Deadline,
		Quantity:         req.Quantity,
		Notes:            req.Notes,
		Images:           req.Images,
		IsMainImage:      req.IsMainImage,
		BundleProductID:  req.BundleProduct,
		BundleInfo:       req.BundleInfo,
	}
	if req.RatedCard != nil {
		in.RatedCard = &domain.RatedCard{
			RatingCompanyID:  req.RatedCard.RatingCompany,
			CardScore:        req.RatedCard.CardScore,
			GradedCardNumber: req.RatedCard.GradedCardNumber,
			RatingInfos:      req.RatedCard.RatingInfos,
		}
	}
	return in
}

func toListingPageDTO(page query.Page[domain.Listing]) query.Page[listingDTO] {
	return query.Page[listingDTO]{
		Items:    toListingDTOs(page.Items),
		Current:  page.Current,
		PageSize: page.PageSize,
		Total:    page.Total,
	}
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

type productDTO struct {
	ID                 uuid.UUID           `json:"id"`
	Name               domain.I18NString   `json:"name"`
	Code               string              `json:"code,omitempty"`
	Level              string              `json:"level,omitempty"`
	SuggestedPrice     float64             `json:"suggestedPrice"`
	CardLanguage       domain.CardLanguage `json:"cardLanguage"`
	Type               domain.ProductType  `json:"type"`
	Categories         []uuid.UUID         `json:"categories,omitempty"`
	CardEffectTemplate *uuid.UUID          `json:"cardEffectTemplate,omitempty"`
	CardEffects        []domain.FieldValue `json:"cardEffects,omitempty"`
	Images             []string            `json:"images,omitempty"`
	Audit              auditDTO            `json:"audit"`
}

func toProductDTO(p domain.Product) productDTO {
	return productDTO{
		ID:                 p.ID,
		Name:               p.Name,
		Code:               p.Code,
		Level:              p.Level,
		SuggestedPrice:     p.SuggestedPrice,
		CardLanguage:       p.CardLanguage,
		Type:               p.Type,
		Categories:         p.CategoryIDs,
		CardEffectTemplate: p.EffectTemplateID,
		CardEffects:        p.CardEffects,
		Images:             p.Images,
		Audit:              toAuditDTO(p.Audit),
	}
}

func toProductDTOs(products []domain.Product) []productDTO {
	dtos := make([]productDTO, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, toProductDTO(p))
	}
	return dtos
}

type productRequest struct {
	Name               domain.I18NString   `json:"name"`
	Code               string              `json:"code"`
	Level              string              `json:"level"`
	SuggestedPrice     float64             `json:"suggestedPrice"`
	CardLanguage       domain.CardLanguage `json:"cardLanguage"`
	Type               domain.ProductType  `json:"type"`
	Categories         []uuid.UUID         `json:"categories"`
	CardEffectTemplate *uuid.UUID          `json:"cardEffectTemplate"`
	CardEffects        map[string]any      `json:"cardEffects"`
	Images             []string            `json:"images"`
}

func (req productRequest) toInput() catalog.ProductInput {
	return catalog.ProductInput{
		Name:             req.Name,
		Code:             req.Code,
		Level:            req.Level,
		SuggestedPrice:   req.SuggestedPrice,
		CardLanguage:     req.CardLanguage,
		Type:             req.Type,
		CategoryIDs:      req.Categories,
		EffectTemplateID: req.CardEffectTemplate,
		RawCardEffects:   req.CardEffects,
		Images:           req.Images,
	}
}

// ---------------------------------------------------------------------------
// Templates
// ---------------------------------------------------------------------------

type templateDTO struct {
	ID     uuid.UUID                `json:"id"`
	Name   string                   `json:"name"`
	Fields []domain.FieldDefinition `json:"fields"`
	Audit  auditDTO                 `json:"audit"`
}

func toTemplateDTO(t domain.FieldTemplate) templateDTO {
	return templateDTO{
		ID:     t.ID,
		Name:   t.Name,
		Fields: t.Fields,
		Audit:  toAuditDTO(t.Audit),
	}
}

func toTemplateDTOs(templates []domain.FieldTemplate) []templateDTO {
	dtos := make([]templateDTO, 0, len(templates))
	for _, t := range templates {
		dtos = append(dtos, toTemplateDTO(t))
	}
	return dtos
}

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

type categoryDTO struct {
	ID               uuid.UUID             `json:"id"`
	Name             domain.I18NString     `json:"name"`
	Images           []string              `json:"images,omitempty"`
	CategoryTypes    []domain.CategoryType `json:"categoryTypes,omitempty"`
	ParentCategories []uuid.UUID           `json:"parentCategories,omitempty"`
	Audit            auditDTO              `json:"audit"`
}

func toCategoryDTO(c domain.Category) categoryDTO {
	return categoryDTO{
		ID:               c.ID,
		Name:             c.Name,
		Images:           c.Images,
		CategoryTypes:    c.CategoryTypes,
		ParentCategories: c.ParentIDs,
		Audit:            toAuditDTO(c.Audit),
	}
}

func toCategoryDTOs(categories []domain.Category) []categoryDTO {
	dtos := make([]categoryDTO, 0, len(categories))
	for _, c := range categories {
		dtos = append(dtos, toCategoryDTO(c))
	}
	return dtos
}

// ---------------------------------------------------------------------------
// Rating companies
// ---------------------------------------------------------------------------

type companyDTO struct {
	ID                    uuid.UUID             `json:"id"`
	Name                  string                `json:"name"`
	Scores                []string              `json:"scores"`
	OfficialWebsite       string                `json:"officialWebsite,omitempty"`
	OfficialWebsiteFields []domain.WebsiteField `json:"officialWebsiteFields,omitempty"`
	Audit                 auditDTO              `json:"audit"`
}

func toCompanyDTO(c domain.RatingCompany) companyDTO {
	return companyDTO{
		ID:                    c.ID,
		Name:                  c.Name,
		Scores:                c.Scores,
		OfficialWebsite:       c.OfficialWebsiteURL,
		OfficialWebsiteFields: c.OfficialWebsiteFields,
		Audit:                 toAuditDTO(c.Audit),
	}
}

func toCompanyDTOs(companies []domain.RatingCompany) []companyDTO {
	dtos := make([]companyDTO, 0, len(companies))
	for _, c := range companies {
		dtos = append(dtos, toCompanyDTO(c))
	}
	return dtos
}

type companyRequest struct {
	Name                  string                `json:"name"`
	Scores                []string              `json:"scores"`
	OfficialWebsite       string                `json:"officialWebsite"`
	OfficialWebsiteFields []domain.WebsiteField `json:"officialWebsiteFields"`
}

func (req companyRequest) toInput() ratingcompany.CompanyInput {
	return ratingcompany.CompanyInput{
		Name:                  req.Name,
		Scores:                req.Scores,
		OfficialWebsiteURL:    req.OfficialWebsite,
		OfficialWebsiteFields: req.OfficialWebsiteFields,
	}
}

// ---------------------------------------------------------------------------
// Facets
// ---------------------------------------------------------------------------

type facetsDTO struct {
	CardScores      []string      `json:"cardScores"`
	Levels          []string      `json:"levels"`
	Categories      []categoryDTO `json:"categories"`
	RatingCompanies []companyDTO  `json:"ratingCompanies"`
}

func toFacetsDTO(f catalog.Facets) facetsDTO {
	return facetsDTO{
		CardScores:      f.CardScores,
		Levels:          f.Levels,
		Categories:      toCategoryDTOs(f.Categories),
		RatingCompanies: toCompanyDTOs(f.RatingCompanies),
	}
}
