package domain

import (
	"time"

	"github.com/google/uuid"
)

// RatingInfo is one free-form name/value pair on a rated card. These are
// not template-validated; rating companies publish arbitrary label sets.
type RatingInfo struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RatedCard is the grading sub-object present on RATEDCARD listings.
type RatedCard struct {
	RatingCompanyID  uuid.UUID
	CardScore        string
	GradedCardNumber string
	RatingInfos      []RatingInfo
}

// BundleInfo describes how a listing participates in a bundle.
type BundleInfo struct {
	AllowUnbundleSale bool `json:"allowUnbundleSale"`
	IsSoldOut         bool `json:"isSoldOut"`
	BundleQuantity    int  `json:"bundleQuantity"`
}

// Listing is one seller's offer of a product. It references the product,
// the owning shop, and (for rated cards) a rating company, all weakly by id.
type Listing struct {
	ID               uuid.UUID
	ProductID        uuid.UUID
	OwnerID          uuid.UUID
	Type             ListingType
	Status           ListingStatus
	Condition        CardCondition
	Price            float64
	LimitedTimePrice *float64
	Deadline         *time.Time
	Quantity         int
	Notes            string
	Images           []string
	IsMainImage      bool
	RatedCard        *RatedCard
	BundleProductID  *uuid.UUID
	BundleInfo       *BundleInfo
	Audit            AuditMetadata
}
