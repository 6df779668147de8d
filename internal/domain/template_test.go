package domain

import (
	"errors"
	"testing"
)

func TestValidateFieldSet_Valid(t *testing.T) {
	t.Parallel()

	fields := []FieldDefinition{
		{Name: "atk", Type: FieldTypeNumber, DisplayName: "Attack", Required: true},
		{Name: "effect", Type: FieldTypeText, DisplayName: "Effect"},
		{Name: "rarity", Type: FieldTypeEnum, EnumOptions: []string{"SR", "UR"}},
	}

	if err := ValidateFieldSet(fields); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateFieldSet_EmptySetIsValid(t *testing.T) {
	t.Parallel()

	// Templates may be created with a name only; fields come later.
	if err := ValidateFieldSet(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateFieldSet_DuplicateFieldName(t *testing.T) {
	t.Parallel()

	fields := []FieldDefinition{
		{Name: "atk", Type: FieldTypeNumber},
		{Name: "atk", Type: FieldTypeText},
	}

	err := ValidateFieldSet(fields)

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("want SchemaError, got %v", err)
	}
	if schemaErr.Code != SchemaDuplicateFieldName {
		t.Errorf("code: got %s, want %s", schemaErr.Code, SchemaDuplicateFieldName)
	}
	if schemaErr.Field != "atk" {
		t.Errorf("field: got %q, want %q", schemaErr.Field, "atk")
	}
	if !errors.Is(err, ErrValidation) {
		t.Error("SchemaError must unwrap to ErrValidation")
	}
}

func TestValidateFieldSet_EnumWithoutOptions(t *testing.T) {
	t.Parallel()

	err := ValidateFieldSet([]FieldDefinition{
		{Name: "rarity", Type: FieldTypeEnum},
	})

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("want SchemaError, got %v", err)
	}
	if schemaErr.Code != SchemaEmptyEnumOptions {
		t.Errorf("code: got %s, want %s", schemaErr.Code, SchemaEmptyEnumOptions)
	}
}

func TestValidateFieldSet_UnknownFieldType(t *testing.T) {
	t.Parallel()

	err := ValidateFieldSet([]FieldDefinition{
		{Name: "atk", Type: FieldType("DECIMAL")},
	})

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("want SchemaError, got %v", err)
	}
	if schemaErr.Code != SchemaUnknownFieldType {
		t.Errorf("code: got %s, want %s", schemaErr.Code, SchemaUnknownFieldType)
	}
}

func TestFieldTemplate_FieldByName(t *testing.T) {
	t.Parallel()

	tmpl := &FieldTemplate{
		Name: "Monster",
		Fields: []FieldDefinition{
			{Name: "atk", Type: FieldTypeNumber},
			{Name: "def", Type: FieldTypeNumber},
		},
	}

	if def, ok := tmpl.FieldByName("def"); !ok || def.Name != "def" {
		t.Errorf("FieldByName(def): got (%v, %v)", def, ok)
	}
	if _, ok := tmpl.FieldByName("hp"); ok {
		t.Error("FieldByName(hp): want not found")
	}
}
