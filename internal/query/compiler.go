package query

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/henrier/rico-backend/internal/domain"
)

// Listing-side fields.
var (
	FieldOwner            = Field{EntityListing, "owner"}
	FieldProduct          = Field{EntityListing, "productInfo"}
	FieldBundleProduct    = Field{EntityListing, "bundleProduct"}
	FieldType             = Field{EntityListing, "type"}
	FieldStatus           = Field{EntityListing, "status"}
	FieldCondition        = Field{EntityListing, "condition"}
	FieldIsMainImage      = Field{EntityListing, "isMainImage"}
	FieldNotes            = Field{EntityListing, "notes"}
	FieldPrice            = Field{EntityListing, "price"}
	FieldQuantity         = Field{EntityListing, "quantity"}
	FieldLimitedTimePrice = Field{EntityListing, "limitedTimePrice"}
	FieldDeadline         = Field{EntityListing, "deadline"}
	FieldCreatedAt        = Field{EntityListing, "createdAt"}
	FieldUpdatedAt        = Field{EntityListing, "updatedAt"}
	FieldCreatedBy        = Field{EntityListing, "createdBy"}
	FieldUpdatedBy        = Field{EntityListing, "updatedBy"}
	FieldRatingCompany    = Field{EntityListing, "ratedCard.ratingCompany"}
	FieldCardScore        = Field{EntityListing, "ratedCard.cardScore"}
	FieldGradedCardNumber = Field{EntityListing, "ratedCard.gradedCardNumber"}
	FieldRatingInfoName   = Field{EntityListing, "ratedCard.ratingInfos.name"}
	FieldRatingInfoValue  = Field{EntityListing, "ratedCard.ratingInfos.value"}
)

// Product-side fields, reached through the listing's product reference.
var (
	FieldNameChinese    = Field{EntityProduct, "name.chinese"}
	FieldNameEnglish    = Field{EntityProduct, "name.english"}
	FieldNameJapanese   = Field{EntityProduct, "name.japanese"}
	FieldCode           = Field{EntityProduct, "code"}
	FieldLevel          = Field{EntityProduct, "level"}
	FieldCategories     = Field{EntityProduct, "categories"}
	FieldCardLanguage   = Field{EntityProduct, "cardLanguage"}
	FieldSuggestedPrice = Field{EntityProduct, "suggestedPrice"}
)

// compileCtx accumulates predicate nodes and pending range bounds for one
// Compile call.
type compileCtx struct {
	nodes  []Node
	ranges map[string]*rangeAcc
}

type rangeAcc struct {
	field    Field
	halfOpen bool
	min, max any
	minSet   bool
	maxSet   bool
}

type compileFunc func(c *compileCtx, param string, values []string) error

type paramSpec struct {
	name    string
	compile compileFunc
}

// listingParams is the closed registry of recognized wire parameters,
// in canonical order. Names are part of the wire contract and must match
// the client bit-for-bit.
var listingParams = []paramSpec{
	{"owner", exactUUID(FieldOwner)},
	{"productInfo", exactUUID(FieldProduct)},
	{"bundleProduct", exactUUID(FieldBundleProduct)},
	{"type", enumIn(FieldType, func(s string) bool { return domain.ListingType(s).IsValid() })},
	{"status", enumIn(FieldStatus, func(s string) bool { return domain.ListingStatus(s).IsValid() })},
	{"condition", enumIn(FieldCondition, func(s string) bool { return domain.CardCondition(s).IsValid() })},
	{"isMainImage", exactBool(FieldIsMainImage)},
	{"notes", substring(FieldNotes)},
	{"minPrice", rangeMin(FieldPrice, "price")},
	{"maxPrice", rangeMax(FieldPrice, "price")},
	{"minQuantity", rangeMin(FieldQuantity, "quantity")},
	{"maxQuantity", rangeMax(FieldQuantity, "quantity")},
	{"minLimitedTimePrice", rangeMin(FieldLimitedTimePrice, "limitedTimePrice")},
	{"maxLimitedTimePrice", rangeMax(FieldLimitedTimePrice, "limitedTimePrice")},
	{"deadlineStart", rangeStart(FieldDeadline, "deadline")},
	{"deadlineEnd", rangeEnd(FieldDeadline, "deadline")},
	{"ratedCardRatingCompany", uuidIn(FieldRatingCompany)},
	{"ratedCardCardScore", stringIn(FieldCardScore)},
	{"ratedCardGradedCardNumber", substring(FieldGradedCardNumber)},
	{"ratedCardRatingInfosName", substring(FieldRatingInfoName)},
	{"ratedCardRatingInfosValue", substring(FieldRatingInfoValue)},
	{"name", nameMerge},
	{"code", substring(FieldCode)},
	{"level", stringIn(FieldLevel)},
	{"categories", uuidIn(FieldCategories)},
	{"cardLanguage", enumIn(FieldCardLanguage, func(s string) bool { return domain.CardLanguage(s).IsValid() })},
	{"minSuggestedPrice", rangeMin(FieldSuggestedPrice, "suggestedPrice")},
	{"maxSuggestedPrice", rangeMax(FieldSuggestedPrice, "suggestedPrice")},
	{"createdAtStart", rangeStart(FieldCreatedAt, "createdAt")},
	{"createdAtEnd", rangeEnd(FieldCreatedAt, "createdAt")},
	{"updatedAtStart", rangeStart(FieldUpdatedAt, "updatedAt")},
	{"updatedAtEnd", rangeEnd(FieldUpdatedAt, "updatedAt")},
	{"createdBy", substring(FieldCreatedBy)},
	{"updatedBy", substring(FieldUpdatedBy)},
}

// rangeOrder fixes the emission order of range nodes.
var rangeOrder = []string{
	"price", "quantity", "limitedTimePrice", "deadline",
	"suggestedPrice", "createdAt", "updatedAt",
}

var listingParamIndex = func() map[string]paramSpec {
	m := make(map[string]paramSpec, len(listingParams))
	for _, s := range listingParams {
		m[s.name] = s
	}
	return m
}()

// Compile turns the flat wire parameter map into a predicate tree.
// Unknown parameters, malformed values and inverted ranges abort the whole
// compilation; filters are all-or-nothing. Empty values are treated as
// absent, matching clients that serialize unset form fields as "".
func Compile(params map[string][]string) (Node, error) {
	for name := range params {
		if _, ok := listingParamIndex[name]; !ok {
			return nil, &domain.QueryError{Code: domain.QueryUnknownField, Param: name}
		}
	}

	c := &compileCtx{ranges: make(map[string]*rangeAcc)}

	for _, spec := range listingParams {
		values := trimEmpty(params[spec.name])
		if len(values) == 0 {
			continue
		}
		if err := spec.compile(c, spec.name, values); err != nil {
			return nil, err
		}
	}

	nodes := c.nodes
	for _, base := range rangeOrder {
		acc, ok := c.ranges[base]
		if !ok {
			continue
		}
		if err := acc.check(base); err != nil {
			return nil, err
		}
		nodes = append(nodes, Range{
			Field:    acc.field,
			Min:      acc.min,
			Max:      acc.max,
			MinSet:   acc.minSet,
			MaxSet:   acc.maxSet,
			HalfOpen: acc.halfOpen,
		})
	}

	return And{Nodes: nodes}, nil
}

// check rejects an inverted range. Policy is fixed: a supplied min above
// max is an explicit error, never a silent empty result.
func (a *rangeAcc) check(base string) error {
	if !a.minSet || !a.maxSet {
		return nil
	}
	inverted := false
	switch min := a.min.(type) {
	case float64:
		inverted = min > a.max.(float64)
	case time.Time:
		inverted = min.After(a.max.(time.Time))
	}
	if inverted {
		return &domain.QueryError{Code: domain.QueryInvalidRange, Param: base}
	}
	return nil
}

func trimEmpty(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Param kinds
// ---------------------------------------------------------------------------

func exactUUID(f Field) compileFunc {
	return func(c *compileCtx, param string, values []string) error {
		id, err := uuid.Parse(values[0])
		if err != nil {
			return &domain.QueryError{Code: domain.QueryInvalidValue, Param: param}
		}
		c.nodes = append(c.nodes, Eq{Field: f, Value: id})
		return nil
	}
}

func exactBool(f Field) compileFunc {
	return func(c *compileCtx, param string, values []string) error {
		b, err := strconv.ParseBool(values[0])
		if err != nil {
			return &domain.QueryError{Code: domain.QueryInvalidValue, Param: param}
		}
		c.nodes = append(c.nodes, Eq{Field: f, Value: b})
		return nil
	}
}

func substring(f Field) compileFunc {
	return func(c *compileCtx, param string, values []string) error {
		c.nodes = append(c.nodes, Contains{Field: f, Needle: values[0]})
		return nil
	}
}

func stringIn(f Field) compileFunc {
	return func(c *compileCtx, param string, values []string) error {
		in := In{Field: f, Values: make([]any, len(values))}
		for i, v := range values {
			in.Values[i] = v
		}
		c.nodes = append(c.nodes, in)
		return nil
	}
}

func uuidIn(f Field) compileFunc {
	return func(c *compileCtx, param string, values []string) error {
		in := In{Field: f, Values: make([]any, len(values))}
		for i, v := range values {
			id, err := uuid.Parse(v)
			if err != nil {
				return &domain.QueryError{Code: domain.QueryInvalidValue, Param: param}
			}
			in.Values[i] = id
		}
		c.nodes = append(c.nodes, in)
		return nil
	}
}

func enumIn(f Field, valid func(string) bool) compileFunc {
	return func(c *compileCtx, param string, values []string) error {
		in := In{Field: f, Values: make([]any, len(values))}
		for i, v := range values {
			if !valid(v) {
				return &domain.QueryError{Code: domain.QueryInvalidValue, Param: param}
			}
			in.Values[i] = v
		}
		c.nodes = append(c.nodes, in)
		return nil
	}
}

// nameMerge compiles the merged free-text name filter: one needle ORed
// across the product's three localized name columns.
func nameMerge(c *compileCtx, _ string, values []string) error {
	needle := values[0]
	c.nodes = append(c.nodes, Or{Nodes: []Node{
		Contains{Field: FieldNameChinese, Needle: needle},
		Contains{Field: FieldNameEnglish, Needle: needle},
		Contains{Field: FieldNameJapanese, Needle: needle},
	}})
	return nil
}

func rangeMin(f Field, base string) compileFunc {
	return func(c *compileCtx, param string, values []string) error {
		n, err := strconv.ParseFloat(values[0], 64)
		if err != nil {
			return &domain.QueryError{Code: domain.QueryInvalidValue, Param: param}
		}
		acc := c.rangeFor(f, base, false)
		acc.min, acc.minSet = n, true
		return nil
	}
}

func rangeMax(f Field, base string) compileFunc {
	return func(c *compileCtx, param string, values []string) error {
		n, err := strconv.ParseFloat(values[0], 64)
		if err != nil {
			return &domain.QueryError{Code: domain.QueryInvalidValue, Param: param}
		}
		acc := c.rangeFor(f, base, false)
		acc.max, acc.maxSet = n, true
		return nil
	}
}

func rangeStart(f Field, base string) compileFunc {
	return func(c *compileCtx, param string, values []string) error {
		t, err := parseTime(values[0])
		if err != nil {
			return &domain.QueryError{Code: domain.QueryInvalidValue, Param: param}
		}
		acc := c.rangeFor(f, base, true)
		acc.min, acc.minSet = t, true
		return nil
	}
}

func rangeEnd(f Field, base string) compileFunc {
	return func(c *compileCtx, param string, values []string) error {
		t, err := parseTime(values[0])
		if err != nil {
			return &domain.QueryError{Code: domain.QueryInvalidValue, Param: param}
		}
		acc := c.rangeFor(f, base, true)
		acc.max, acc.maxSet = t, true
		return nil
	}
}

func (c *compileCtx) rangeFor(f Field, base string, halfOpen bool) *rangeAcc {
	if acc, ok := c.ranges[base]; ok {
		return acc
	}
	acc := &rangeAcc{field: f, halfOpen: halfOpen}
	c.ranges[base] = acc
	return acc
}

// parseTime accepts RFC 3339 timestamps and bare dates (the admin client
// sends both, depending on the picker).
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
