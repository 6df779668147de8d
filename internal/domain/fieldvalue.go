package domain

import (
	"encoding/json"
	"slices"
	"strconv"
	"time"
)

// TypedValue is a dynamic field value tagged with its FieldType. Exactly one
// payload slot is meaningful, selected by Type.
type TypedValue struct {
	Type   FieldType
	Text   string
	Number float64
	Bool   bool
	Date   time.Time
	Enum   string
}

// FieldValue binds a validated value to a declared field name.
type FieldValue struct {
	Name  string     `json:"fieldName"`
	Value TypedValue `json:"value"`
}

// fieldValidator validates a raw (wire-decoded) value against one field
// definition. One validator per FieldType variant; the table is the single
// source of truth for which types exist.
type fieldValidator func(raw any, def FieldDefinition) (TypedValue, *ValueError)

var fieldValidators = map[FieldType]fieldValidator{
	FieldTypeText:    validateText,
	FieldTypeNumber:  validateNumber,
	FieldTypeBoolean: validateBoolean,
	FieldTypeDate:    validateDate,
	FieldTypeEnum:    validateEnum,
}

func validateText(raw any, def FieldDefinition) (TypedValue, *ValueError) {
	s, ok := raw.(string)
	if !ok {
		return TypedValue{}, &ValueError{Code: ValueTypeMismatch, Field: def.Name}
	}
	return TypedValue{Type: FieldTypeText, Text: s}, nil
}

func validateNumber(raw any, def FieldDefinition) (TypedValue, *ValueError) {
	switch n := raw.(type) {
	case float64:
		return TypedValue{Type: FieldTypeNumber, Number: n}, nil
	case int:
		return TypedValue{Type: FieldTypeNumber, Number: float64(n)}, nil
	case int64:
		return TypedValue{Type: FieldTypeNumber, Number: float64(n)}, nil
	}
	return TypedValue{}, &ValueError{Code: ValueTypeMismatch, Field: def.Name}
}

func validateBoolean(raw any, def FieldDefinition) (TypedValue, *ValueError) {
	b, ok := raw.(bool)
	if !ok {
		return TypedValue{}, &ValueError{Code: ValueTypeMismatch, Field: def.Name}
	}
	return TypedValue{Type: FieldTypeBoolean, Bool: b}, nil
}

func validateDate(raw any, def FieldDefinition) (TypedValue, *ValueError) {
	switch d := raw.(type) {
	case time.Time:
		return TypedValue{Type: FieldTypeDate, Date: d.UTC()}, nil
	case string:
		t, err := time.Parse(time.RFC3339, d)
		if err != nil {
			return TypedValue{}, &ValueError{Code: ValueTypeMismatch, Field: def.Name}
		}
		return TypedValue{Type: FieldTypeDate, Date: t.UTC()}, nil
	}
	return TypedValue{}, &ValueError{Code: ValueTypeMismatch, Field: def.Name}
}

func validateEnum(raw any, def FieldDefinition) (TypedValue, *ValueError) {
	s, ok := raw.(string)
	if !ok {
		return TypedValue{}, &ValueError{Code: ValueTypeMismatch, Field: def.Name}
	}
	if !slices.Contains(def.EnumOptions, s) {
		return TypedValue{}, &ValueError{Code: ValueInvalidEnumOption, Field: def.Name}
	}
	return TypedValue{Type: FieldTypeEnum, Enum: s}, nil
}

// ValidateValue validates one raw value against one field definition.
func ValidateValue(raw any, def FieldDefinition) (TypedValue, error) {
	validate, ok := fieldValidators[def.Type]
	if !ok {
		return TypedValue{}, &SchemaError{Code: SchemaUnknownFieldType, Field: def.Name}
	}
	v, verr := validate(raw, def)
	if verr != nil {
		return TypedValue{}, verr
	}
	return v, nil
}

// ValidateValueSet validates a whole raw value set against a template:
// every key must name a declared field, every required field must be
// present, every value must match its declared type. All violations are
// collected; the returned values follow template field order.
func ValidateValueSet(tmpl *FieldTemplate, raw map[string]any) ([]FieldValue, error) {
	var violations []ValueError

	for key := range raw {
		if _, declared := tmpl.FieldByName(key); !declared {
			violations = append(violations, ValueError{Code: ValueUnknownField, Field: key})
		}
	}

	values := make([]FieldValue, 0, len(raw))
	for _, def := range tmpl.Fields {
		rawValue, present := raw[def.Name]
		if !present {
			if def.Required {
				violations = append(violations, ValueError{Code: ValueMissingRequired, Field: def.Name})
			}
			continue
		}
		validate := fieldValidators[def.Type]
		v, verr := validate(rawValue, def)
		if verr != nil {
			violations = append(violations, *verr)
			continue
		}
		values = append(values, FieldValue{Name: def.Name, Value: v})
	}

	if len(violations) > 0 {
		return nil, &ValueErrors{Errors: violations}
	}
	return values, nil
}

// Raw returns the value in the wire-decoded shape fieldValidators accept,
// so stored values can be run back through ValidateValueSet.
func (v TypedValue) Raw() any {
	switch v.Type {
	case FieldTypeText:
		return v.Text
	case FieldTypeNumber:
		return v.Number
	case FieldTypeBoolean:
		return v.Bool
	case FieldTypeDate:
		return v.Date
	case FieldTypeEnum:
		return v.Enum
	}
	return nil
}

// RevalidateValues checks an already-validated value set against a (possibly
// different) template. Used when a template's field set is replaced while
// products still hold values bound to it.
func RevalidateValues(tmpl *FieldTemplate, values []FieldValue) ([]FieldValue, error) {
	raw := make(map[string]any, len(values))
	for _, v := range values {
		raw[v.Name] = v.Value.Raw()
	}
	return ValidateValueSet(tmpl, raw)
}

// EncodeString renders the value in its canonical storage form. The
// encoding round-trips: DecodeString(t, v.EncodeString()) reproduces v.
func (v TypedValue) EncodeString() string {
	switch v.Type {
	case FieldTypeText:
		return v.Text
	case FieldTypeNumber:
		return strconv.FormatFloat(v.Number, 'g', -1, 64)
	case FieldTypeBoolean:
		return strconv.FormatBool(v.Bool)
	case FieldTypeDate:
		return v.Date.UTC().Format(time.RFC3339Nano)
	case FieldTypeEnum:
		return v.Enum
	}
	return ""
}

// typedValueJSON is the persisted shape of a TypedValue: the type tag plus
// the canonical string encoding.
type typedValueJSON struct {
	Type  FieldType `json:"fieldType"`
	Value string    `json:"value"`
}

// MarshalJSON stores the value in its canonical string form.
func (v TypedValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(typedValueJSON{Type: v.Type, Value: v.EncodeString()})
}

// UnmarshalJSON parses the canonical string form back through DecodeString.
func (v *TypedValue) UnmarshalJSON(data []byte) error {
	var raw typedValueJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := DecodeString(raw.Type, raw.Value)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// DecodeString parses a canonical storage form back into a TypedValue.
func DecodeString(t FieldType, s string) (TypedValue, error) {
	switch t {
	case FieldTypeText:
		return TypedValue{Type: FieldTypeText, Text: s}, nil
	case FieldTypeNumber:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return TypedValue{}, &ValueError{Code: ValueTypeMismatch}
		}
		return TypedValue{Type: FieldTypeNumber, Number: n}, nil
	case FieldTypeBoolean:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return TypedValue{}, &ValueError{Code: ValueTypeMismatch}
		}
		return TypedValue{Type: FieldTypeBoolean, Bool: b}, nil
	case FieldTypeDate:
		d, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return TypedValue{}, &ValueError{Code: ValueTypeMismatch}
		}
		return TypedValue{Type: FieldTypeDate, Date: d.UTC()}, nil
	case FieldTypeEnum:
		return TypedValue{Type: FieldTypeEnum, Enum: s}, nil
	}
	return TypedValue{}, &SchemaError{Code: SchemaUnknownFieldType}
}
