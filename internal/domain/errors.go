package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrTenantRequired signals a request without a tenant id.
	ErrTenantRequired = errors.New("tenant id is required")
	// ErrInvalidContent signals a content record that failed validation.
	ErrInvalidContent = errors.New("invalid content record")
	// ErrSchemaUnavailable signals that the taxonomy store is unreachable
	// or returned malformed data. Retryable; nothing partial is cached.
	ErrSchemaUnavailable = errors.New("schema unavailable")
	// ErrUnresolvedCategory signals a filter on a category with no field
	// mapping. A vocabulary/mapping desync, fatal to the request.
	ErrUnresolvedCategory = errors.New("unresolved category")
	// ErrExtractionFallbackFailed signals an LLM fallback failure.
	// Recovered locally by continuing with an empty filter set.
	ErrExtractionFallbackFailed = errors.New("extraction fallback failed")
	// ErrMalformedTemporalExpression signals unparseable date text.
	// Recovered locally by omitting the temporal constraint.
	ErrMalformedTemporalExpression = errors.New("malformed temporal expression")
)

// UnresolvedCategoryError wraps ErrUnresolvedCategory with the category name.
type UnresolvedCategoryError struct {
	Category string
}

func (e *UnresolvedCategoryError) Error() string {
	return fmt.Sprintf("%s: %q has no field mapping", ErrUnresolvedCategory.Error(), e.Category)
}

func (e *UnresolvedCategoryError) Unwrap() error { return ErrUnresolvedCategory }

// NewUnresolvedCategory creates an unresolved category error.
func NewUnresolvedCategory(category string) error {
	return &UnresolvedCategoryError{Category: category}
}
