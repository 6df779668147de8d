package domain

import (
	"github.com/google/uuid"
)

// FieldType is the closed set of dynamic field value types.
type FieldType string

const (
	FieldTypeText    FieldType = "TEXT"
	FieldTypeNumber  FieldType = "NUMBER"
	FieldTypeBoolean FieldType = "BOOLEAN"
	FieldTypeDate    FieldType = "DATE"
	FieldTypeEnum    FieldType = "ENUM"
)

func (t FieldType) String() string { return string(t) }

func (t FieldType) IsValid() bool {
	_, ok := fieldValidators[t]
	return ok
}

// FieldDefinition is one reusable typed field in a template.
// EnumOptions is meaningful only for FieldTypeEnum.
type FieldDefinition struct {
	Name        string    `json:"fieldName"`
	Type        FieldType `json:"fieldType"`
	DisplayName string    `json:"displayName"`
	Required    bool      `json:"required"`
	Description string    `json:"description"`
	EnumOptions []string  `json:"enumOptions,omitempty"`
}

// FieldTemplate is a named, ordered set of field definitions that product
// records attach dynamic values against. The registry owns templates;
// products reference them by id only.
type FieldTemplate struct {
	ID     uuid.UUID
	Name   string
	Fields []FieldDefinition
	Audit  AuditMetadata
}

// ValidateFieldSet checks the template invariants over a candidate field
// set: field names unique, every type known, ENUM fields carry at least one
// option. The first violation is returned; field-set validation is
// all-or-nothing on both create and replace.
func ValidateFieldSet(fields []FieldDefinition) error {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f.Name]; dup {
			return &SchemaError{Code: SchemaDuplicateFieldName, Field: f.Name}
		}
		seen[f.Name] = struct{}{}

		if !f.Type.IsValid() {
			return &SchemaError{Code: SchemaUnknownFieldType, Field: f.Name}
		}
		if f.Type == FieldTypeEnum && len(f.EnumOptions) == 0 {
			return &SchemaError{Code: SchemaEmptyEnumOptions, Field: f.Name}
		}
	}
	return nil
}

// FieldByName returns the definition for name, if declared.
func (t *FieldTemplate) FieldByName(name string) (FieldDefinition, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDefinition{}, false
}
