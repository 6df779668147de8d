package domain

// EnumOption pairs an enum value with its display label. The option tables
// below are static configuration data: adding a value is additive and needs
// no branch changes anywhere else.
type EnumOption struct {
	Value       string `json:"value"`
	Description string `json:"description"`
}

// ListingType classifies a personal listing.
type ListingType string

const (
	ListingTypeRawCard   ListingType = "RAWCARD"
	ListingTypeBox       ListingType = "BOX"
	ListingTypeRatedCard ListingType = "RATEDCARD"
)

func (t ListingType) String() string { return string(t) }

func (t ListingType) IsValid() bool {
	switch t {
	case ListingTypeRawCard, ListingTypeBox, ListingTypeRatedCard:
		return true
	}
	return false
}

// ListingTypeOptions is the display table for ListingType.
var ListingTypeOptions = []EnumOption{
	{Value: string(ListingTypeRawCard), Description: "普通卡"},
	{Value: string(ListingTypeBox), Description: "原盒"},
	{Value: string(ListingTypeRatedCard), Description: "评级卡"},
}

// ListingStatus is the workflow state of a listing.
type ListingStatus string

const (
	ListingStatusPendingListing ListingStatus = "PENDINGLISTING"
	ListingStatusListed         ListingStatus = "LISTED"
	ListingStatusSoldOut        ListingStatus = "SOLDOUT"
)

func (s ListingStatus) String() string { return string(s) }

func (s ListingStatus) IsValid() bool {
	switch s {
	case ListingStatusPendingListing, ListingStatusListed, ListingStatusSoldOut:
		return true
	}
	return false
}

// CanTransitionTo reports whether the workflow graph allows moving from s
// to next. Forward: PENDINGLISTING → LISTED → SOLDOUT. Reverse: LISTED →
// PENDINGLISTING and SOLDOUT → LISTED. Self-transitions are allowed (a
// batch update may resubmit the current status).
func (s ListingStatus) CanTransitionTo(next ListingStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case ListingStatusPendingListing:
		return next == ListingStatusListed
	case ListingStatusListed:
		return next == ListingStatusSoldOut || next == ListingStatusPendingListing
	case ListingStatusSoldOut:
		return next == ListingStatusListed
	}
	return false
}

// ListingStatusOptions is the display table for ListingStatus.
var ListingStatusOptions = []EnumOption{
	{Value: string(ListingStatusPendingListing), Description: "待上架"},
	{Value: string(ListingStatusListed), Description: "已上架"},
	{Value: string(ListingStatusSoldOut), Description: "已售罄"},
}

// CardCondition grades the physical condition of a card.
type CardCondition string

const (
	CardConditionMint           CardCondition = "MINT"
	CardConditionNearMint       CardCondition = "NEARMINT"
	CardConditionLightlyPlayed  CardCondition = "LIGHTLYPLAYED"
	CardConditionDamaged        CardCondition = "DAMAGED"
)

func (c CardCondition) String() string { return string(c) }

func (c CardCondition) IsValid() bool {
	switch c {
	case CardConditionMint, CardConditionNearMint, CardConditionLightlyPlayed, CardConditionDamaged:
		return true
	}
	return false
}

// CardConditionOptions is the display table for CardCondition.
var CardConditionOptions = []EnumOption{
	{Value: string(CardConditionMint), Description: "完美品相"},
	{Value: string(CardConditionNearMint), Description: "近完美品相"},
	{Value: string(CardConditionLightlyPlayed), Description: "轻微磨损"},
	{Value: string(CardConditionDamaged), Description: "有损伤"},
}

// CardLanguage is the printed language of a card.
type CardLanguage string

const (
	CardLanguageChinese  CardLanguage = "ZH"
	CardLanguageEnglish  CardLanguage = "EN"
	CardLanguageFrench   CardLanguage = "FR"
	CardLanguageJapanese CardLanguage = "JA"
)

func (l CardLanguage) String() string { return string(l) }

func (l CardLanguage) IsValid() bool {
	switch l {
	case CardLanguageChinese, CardLanguageEnglish, CardLanguageFrench, CardLanguageJapanese:
		return true
	}
	return false
}

// CardLanguageOptions is the display table for CardLanguage.
var CardLanguageOptions = []EnumOption{
	{Value: string(CardLanguageChinese), Description: "中"},
	{Value: string(CardLanguageEnglish), Description: "英"},
	{Value: string(CardLanguageFrench), Description: "法"},
	{Value: string(CardLanguageJapanese), Description: "日"},
}

// ProductType classifies a catalog SKU.
type ProductType string

const (
	ProductTypeRaw    ProductType = "RAW"
	ProductTypeSealed ProductType = "SEALED"
)

func (t ProductType) String() string { return string(t) }

func (t ProductType) IsValid() bool {
	switch t {
	case ProductTypeRaw, ProductTypeSealed:
		return true
	}
	return false
}

// ProductTypeOptions is the display table for ProductType.
var ProductTypeOptions = []EnumOption{
	{Value: string(ProductTypeRaw), Description: "单卡"},
	{Value: string(ProductTypeSealed), Description: "原盒"},
}

// CategoryType tags a category with its role in the taxonomy.
type CategoryType string

const (
	CategoryTypeIP           CategoryType = "IP"
	CategoryTypeLanguage     CategoryType = "LANGUAGE"
	CategoryTypeSeries1      CategoryType = "SERIES1"
	CategoryTypeSeries2      CategoryType = "SERIES2"
	CategoryTypeRecentUpdate CategoryType = "RECENTUPDATE"
)

func (t CategoryType) String() string { return string(t) }

func (t CategoryType) IsValid() bool {
	switch t {
	case CategoryTypeIP, CategoryTypeLanguage, CategoryTypeSeries1,
		CategoryTypeSeries2, CategoryTypeRecentUpdate:
		return true
	}
	return false
}

// CategoryTypeOptions is the display table for CategoryType.
var CategoryTypeOptions = []EnumOption{
	{Value: string(CategoryTypeIP), Description: "IP（一级）"},
	{Value: string(CategoryTypeLanguage), Description: "语种（二级）"},
	{Value: string(CategoryTypeSeries1), Description: "系列1（三级）"},
	{Value: string(CategoryTypeSeries2), Description: "系列2（四级）"},
	{Value: string(CategoryTypeRecentUpdate), Description: "近期更新（标签）"},
}
