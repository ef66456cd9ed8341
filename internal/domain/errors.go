package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// APIError represents a standardized API error with HTTP status code
type APIError struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// Common error types for RFC 7807 Problem Details
const (
	ErrorTypeValidation   = "validation_error"
	ErrorTypeNotFound     = "not_found"
	ErrorTypeBadRequest   = "bad_request"
	ErrorTypeUnauthorized = "unauthorized"
	ErrorTypeConflict     = "conflict"
	ErrorTypeRender       = "render_error"
	ErrorTypeInternal     = "internal_error"
)

// ErrStaleWorkbook is returned when optimistic locking is enabled and the stored
// workbook changed after it was loaded
var ErrStaleWorkbook = errors.New("workbook was modified by another writer")

// ValidationError aborts an operation before anything is persisted
type ValidationError struct {
	Message string
	// Fields maps a field name to its validation message
	Fields map[string]string
	// Missing lists required workbook tables absent from an import
	Missing []string
}

func (e *ValidationError) Error() string {
	switch {
	case len(e.Missing) > 0:
		return fmt.Sprintf("%s: missing tables %s", e.message(), strings.Join(e.Missing, ", "))
	case len(e.Fields) > 0:
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return fmt.Sprintf("%s: %s", e.message(), strings.Join(keys, ", "))
	default:
		return e.message()
	}
}

func (e *ValidationError) message() string {
	if e.Message == "" {
		return "validation failed"
	}
	return e.Message
}

// NewFieldError builds a ValidationError for a single field
func NewFieldError(field, message string) *ValidationError {
	return &ValidationError{Message: "validation failed", Fields: map[string]string{field: message}}
}

// NotFoundError is returned when a lookup by id has no match
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", strings.ToLower(e.Entity), e.ID)
}

// StoreReadError means a backing value exists but cannot be decoded as a workbook.
// The store treats it like an absent value and reinitializes.
type StoreReadError struct {
	Scope string
	Err   error
}

func (e *StoreReadError) Error() string {
	return fmt.Sprintf("workbook for scope %q is unreadable: %v", e.Scope, e.Err)
}

func (e *StoreReadError) Unwrap() error { return e.Err }

// RenderError is a fatal failure of the rasterization pipeline
type RenderError struct {
	Stage string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed during %s: %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
