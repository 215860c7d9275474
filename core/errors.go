package core

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrDuplicateEntity = errors.New("duplicate_entity")
	ErrNotFound        = errors.New("not_found")
	ErrInvalidRequest  = errors.New("invalid_request")
	ErrInternalFailure = errors.New("internal_failure")

	// ErrNoDocument is returned by the stores when a lookup matches nothing.
	ErrNoDocument = errors.New("no_document")
)

// Error is the error returned by the Service. Its kind is one of the
// sentinel errors above, and can be checked with errors.Is.
type Error struct {
	Kind    error
	Message string
	// KeyValue is set for ErrDuplicateEntity, with the fields that collided.
	KeyValue map[string]any
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// DuplicateKeyError is returned by the stores when a write violates a
// unique index.
type DuplicateKeyError struct {
	KeyValue map[string]any
	Cause    error
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key %s", formatKeyValue(e.KeyValue))
}

func (e *DuplicateKeyError) Unwrap() error {
	return e.Cause
}

func formatKeyValue(kv map[string]any) string {
	b, err := json.Marshal(kv)
	if err != nil {
		return fmt.Sprintf("%v", kv)
	}
	return string(b)
}

func duplicateEntity(dup *DuplicateKeyError) *Error {
	return &Error{
		Kind:     ErrDuplicateEntity,
		Message:  fmt.Sprintf("Pokemon exists in db with the same no or name %s", formatKeyValue(dup.KeyValue)),
		KeyValue: dup.KeyValue,
	}
}

func notFound(term string) *Error {
	return &Error{
		Kind:    ErrNotFound,
		Message: fmt.Sprintf("Pokemon with id, name or no '%s' not found", term),
	}
}

func invalidRequest(id string) *Error {
	return &Error{
		Kind:    ErrInvalidRequest,
		Message: fmt.Sprintf("Pokemon with id %q not found", id),
	}
}

func internalFailure() *Error {
	return &Error{
		Kind:    ErrInternalFailure,
		Message: "Can't process Pokemon - check server logs",
	}
}
