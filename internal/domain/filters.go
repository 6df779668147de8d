package domain

import "time"

// TemplateFilter narrows the field template page query. Zero value matches
// all. Substring filters are case-insensitive; the field-level filters match
// a template when any of its field definitions matches. Temporal ranges are
// half-open: start inclusive, end exclusive.
type TemplateFilter struct {
	Name        string
	FieldName   string
	DisplayName string
	Description string
	FieldType   FieldType
	Required    *bool
	CreatedBy   string
	UpdatedBy   string

	CreatedAtStart *time.Time
	CreatedAtEnd   *time.Time
	UpdatedAtStart *time.Time
	UpdatedAtEnd   *time.Time
}

// CategoryFilter narrows the category page query. Name matches any of the
// three localized names.
type CategoryFilter struct {
	Name string
	Type CategoryType
}

// RatingCompanyFilter narrows the rating company page query. Scores matches
// companies whose score list shares at least one value.
type RatingCompanyFilter struct {
	Name   string
	Scores []string
}
