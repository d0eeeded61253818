package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for errors.Is() checking.
var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation error")
	ErrConflict    = errors.New("conflict")
	ErrForbidden   = errors.New("forbidden")
	ErrUnavailable = errors.New("unavailable")

	// ErrTransport marks failures where a remotely dispatched request never
	// reached a handler (unreachable endpoint, timeout, malformed envelope).
	// It is distinct from application errors so callers can tell "never ran"
	// apart from "ran and was rejected".
	ErrTransport = errors.New("transport error")

	// Registration defects. These surface while the handler registry is being
	// built at startup and are fatal configuration errors, unlike the
	// per-call ErrHandlerNotFound.
	ErrHandlerNotFound  = errors.New("no handler registered")
	ErrAmbiguousHandler = errors.New("handler already registered")
)

// ValidationError provides programmatic access to field-level validation failures.
// Use errors.Is(err, ErrValidation) for simple checks, or errors.As(err, &verr) to
// access verr.Fields for per-field error details.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e.Fields[field])
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ConflictError reports an optimistic-concurrency failure: the supplied
// concurrency token no longer matches the stored one. The write was not
// applied, not even partially.
type ConflictError struct {
	EntityType string
	ID         string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: stale concurrency token for %s %q", ErrConflict.Error(), e.EntityType, e.ID)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}
