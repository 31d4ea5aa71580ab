package types

import (
	"fmt"
	"sort"
	"strings"
)

type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("%d: %s [type: %s]", e.Code, e.Message, e.Type)
}

// Field error codes
const (
	CodeRequired         = "required"
	CodeMaxLength        = "max_length"
	CodeInvalid          = "invalid"
	CodeAlreadyExists    = "already_exists"
	CodePasswordMismatch = "password_mismatch"
	CodePasswordTooShort = "password_too_short"
	CodePasswordNumeric  = "password_numeric"
	CodeUnderage         = "underage"
	CodePhoneFormat      = "phone_format"
	CodeRegionMismatch   = "region_mismatch"
	CodeCityMismatch     = "city_mismatch"
	CodeInvalidChoice    = "invalid_choice"
	CodeMissingPicture   = "missing_picture"
	CodeInvalidImage     = "invalid_image"
	CodeTooLarge         = "too_large"
)

// FieldError is a single rejected input field
type FieldError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError collects field errors for one submitted form.
// A field keeps only its first error.
type ValidationError struct {
	Fields map[string]FieldError `json:"errors"`
}

// NewValidationError returns an empty ValidationError ready for Add
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]FieldError)}
}

// Add records an error for field unless one is already present
func (e *ValidationError) Add(field, code, message string) {
	if _, exists := e.Fields[field]; exists {
		return
	}
	e.Fields[field] = FieldError{Code: code, Message: message}
}

// Has reports whether field already failed
func (e *ValidationError) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

// Empty reports whether no field failed
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// OrNil returns nil when no field failed so callers can `return v.OrNil()`
func (e *ValidationError) OrNil() error {
	if e == nil || e.Empty() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name].Code))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
