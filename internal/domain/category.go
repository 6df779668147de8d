package domain

import "github.com/google/uuid"

// Category is one node of the product taxonomy. Parent references form a
// directed graph; the category service rejects edges that would introduce a
// cycle. CategoryTypes and ParentIDs mutate incrementally (add/remove),
// never by wholesale replacement.
type Category struct {
	ID            uuid.UUID
	Name          I18NString
	Images        []string
	CategoryTypes []CategoryType
	ParentIDs     []uuid.UUID
	Audit         AuditMetadata
}
