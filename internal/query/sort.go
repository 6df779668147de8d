package query

import (
	"strings"

	"github.com/henrier/rico-backend/internal/domain"
)

// OrderBy is one key of the composed ordering.
type OrderBy struct {
	Field Field
	Desc  bool
}

// FieldID is the implicit tie-break key. It is appended to every parsed
// sort so that repeated queries over unmodified data paginate without
// overlap or gaps.
var FieldID = Field{EntityListing, "id"}

// sortableFields maps recognized wire sort names to fields.
var sortableFields = map[string]Field{
	"id":               FieldID,
	"price":            FieldPrice,
	"quantity":         FieldQuantity,
	"limitedTimePrice": FieldLimitedTimePrice,
	"deadline":         FieldDeadline,
	"type":             FieldType,
	"status":           FieldStatus,
	"condition":        FieldCondition,
	"code":             FieldCode,
	"level":            FieldLevel,
	"suggestedPrice":   FieldSuggestedPrice,
	"createdAt":        FieldCreatedAt,
	"updatedAt":        FieldUpdatedAt,
}

// ParseSort composes the parallel sortFields/sortDirections arrays into a
// deterministic multi-key ordering. With no sort supplied the default is
// creation time descending. The trailing id ASC tie-break is always
// appended unless id was named explicitly.
func ParseSort(sortFields, sortDirections []string) ([]OrderBy, error) {
	if len(sortFields) != len(sortDirections) {
		return nil, &domain.QueryError{Code: domain.QueryInvalidSortSpec}
	}

	if len(sortFields) == 0 {
		return []OrderBy{
			{Field: FieldCreatedAt, Desc: true},
			{Field: FieldID},
		}, nil
	}

	order := make([]OrderBy, 0, len(sortFields)+1)
	explicitID := false
	for i, name := range sortFields {
		field, ok := sortableFields[name]
		if !ok {
			return nil, &domain.QueryError{Code: domain.QueryUnknownSortField, Param: name}
		}
		if field == FieldID {
			explicitID = true
		}

		var desc bool
		switch strings.ToLower(sortDirections[i]) {
		case "asc":
			desc = false
		case "desc":
			desc = true
		default:
			return nil, &domain.QueryError{Code: domain.QueryInvalidSortDirection, Param: sortDirections[i]}
		}

		order = append(order, OrderBy{Field: field, Desc: desc})
	}

	if !explicitID {
		order = append(order, OrderBy{Field: FieldID})
	}
	return order, nil
}
