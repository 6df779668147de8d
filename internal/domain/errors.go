package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation error")
)

// SchemaErrorCode identifies a field-template definition violation.
type SchemaErrorCode string

const (
	SchemaDuplicateFieldName SchemaErrorCode = "DUPLICATE_FIELD_NAME"
	SchemaEmptyEnumOptions   SchemaErrorCode = "EMPTY_ENUM_OPTIONS"
	SchemaUnknownFieldType   SchemaErrorCode = "UNKNOWN_FIELD_TYPE"
)

// SchemaError reports an invalid field-template definition.
// Field holds the offending field name where one exists.
type SchemaError struct {
	Code  SchemaErrorCode
	Field string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema: %s", e.Code)
	}
	return fmt.Sprintf("schema: %s: field %q", e.Code, e.Field)
}

func (e *SchemaError) Unwrap() error { return ErrValidation }

// ValueErrorCode identifies a value-vs-template mismatch.
type ValueErrorCode string

const (
	ValueMissingRequired   ValueErrorCode = "MISSING_REQUIRED"
	ValueTypeMismatch      ValueErrorCode = "TYPE_MISMATCH"
	ValueUnknownField      ValueErrorCode = "UNKNOWN_FIELD"
	ValueInvalidEnumOption ValueErrorCode = "INVALID_ENUM_OPTION"
)

// ValueError reports a dynamic field value that violates its bound template.
type ValueError struct {
	Code  ValueErrorCode
	Field string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("field value: %s: field %q", e.Code, e.Field)
}

func (e *ValueError) Unwrap() error { return ErrValidation }

// ValueErrors aggregates every violation found while validating a value set,
// so a client can fix all of them in one round trip.
type ValueErrors struct {
	Errors []ValueError
}

func (e *ValueErrors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("field values: %d violations", len(e.Errors))
}

func (e *ValueErrors) Unwrap() error { return ErrValidation }

// QueryErrorCode identifies an invalid filter or sort parameter.
type QueryErrorCode string

const (
	QueryUnknownField         QueryErrorCode = "UNKNOWN_FIELD"
	QueryUnknownSortField     QueryErrorCode = "UNKNOWN_SORT_FIELD"
	QueryInvalidSortDirection QueryErrorCode = "INVALID_SORT_DIRECTION"
	QueryInvalidSortSpec      QueryErrorCode = "INVALID_SORT_SPEC"
	QueryInvalidRange         QueryErrorCode = "INVALID_RANGE"
	QueryInvalidValue         QueryErrorCode = "INVALID_VALUE"
)

// QueryError reports a filter or sort parameter the compiler rejected.
// Compilation is all-or-nothing: the first violation aborts the request.
type QueryError struct {
	Code  QueryErrorCode
	Param string
}

func (e *QueryError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("query: %s", e.Code)
	}
	return fmt.Sprintf("query: %s: param %q", e.Code, e.Param)
}

func (e *QueryError) Unwrap() error { return ErrValidation }

// ErrorCode extracts the stable wire code for a domain error.
// Unrecognized errors map to INTERNAL_ERROR; the transport layer decides
// how much of the message to expose.
func ErrorCode(err error) string {
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		return "SCHEMA_" + string(schemaErr.Code)
	}
	var valueErr *ValueError
	if errors.As(err, &valueErr) {
		return "VALUE_" + string(valueErr.Code)
	}
	var valueErrs *ValueErrors
	if errors.As(err, &valueErrs) && len(valueErrs.Errors) > 0 {
		return "VALUE_" + string(valueErrs.Errors[0].Code)
	}
	var queryErr *QueryError
	if errors.As(err, &queryErr) {
		return "QUERY_" + string(queryErr.Code)
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrConflict):
		return "CONFLICT"
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	}
	return "INTERNAL_ERROR"
}
