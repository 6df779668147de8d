package domain

import "github.com/google/uuid"

// Product is a catalog SKU. It holds weak references to categories and to
// at most one field template; CardEffects are the dynamic values bound
// under that template, validated by the field value codec on every write.
type Product struct {
	ID               uuid.UUID
	Name             I18NString
	Code             string
	Level            string
	SuggestedPrice   float64
	CardLanguage     CardLanguage
	Type             ProductType
	CategoryIDs      []uuid.UUID
	EffectTemplateID *uuid.UUID
	CardEffects      []FieldValue
	Images           []string
	Audit            AuditMetadata
}
