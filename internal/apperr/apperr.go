// Package apperr defines the error kinds surfaced by the domain layer.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage"
	default:
		return "internal"
	}
}

// Codes carried by validation errors that callers may want to branch on.
const (
	CodeMissingField       = "missing_field"
	CodeInvalidField       = "invalid_field"
	CodeCapacityExceeded   = "capacity_exceeded"
	CodeInvalidTransition  = "invalid_transition"
	CodeInvalidReference   = "invalid_reference"
	CodeRecoveryCodeFailed = "invalid_recovery_code"
)

// Error is the structured failure returned by services and repositories.
type Error struct {
	Kind    Kind
	Code    string
	Entity  string
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind == KindStorage {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// PublicMessage is the text safe to show to a caller. Storage failures never
// expose the underlying cause.
func (e *Error) PublicMessage() string {
	if e.Kind == KindStorage || e.Kind == KindInternal {
		return "internal error"
	}
	return e.Message
}

// Missing reports an absent required field.
func Missing(field string) error {
	return &Error{
		Kind:    KindValidation,
		Code:    CodeMissingField,
		Field:   field,
		Message: fmt.Sprintf("missing required field: %s", field),
	}
}

// Invalid reports a malformed field value.
func Invalid(field, message string) error {
	return &Error{
		Kind:    KindValidation,
		Code:    CodeInvalidField,
		Field:   field,
		Message: fmt.Sprintf("invalid %s: %s", field, message),
	}
}

// Validation builds a validation error with an explicit code.
func Validation(code, field, message string) error {
	return &Error{
		Kind:    KindValidation,
		Code:    code,
		Field:   field,
		Message: message,
	}
}

// Conflict reports a uniqueness violation on entity.field.
func Conflict(entity, field string) error {
	return &Error{
		Kind:    KindConflict,
		Entity:  entity,
		Field:   field,
		Message: fmt.Sprintf("%s with this %s already exists", entity, field),
	}
}

// Conflictf reports a conflicting state that is not a uniqueness violation.
func Conflictf(entity, format string, args ...interface{}) error {
	return &Error{
		Kind:    KindConflict,
		Entity:  entity,
		Message: fmt.Sprintf(format, args...),
	}
}

// NotFound reports an absent entity.
func NotFound(entity string) error {
	return &Error{
		Kind:    KindNotFound,
		Entity:  entity,
		Message: fmt.Sprintf("%s not found", entity),
	}
}

// NoResults reports an empty listing, which the API treats as absence.
func NoResults(entity, message string) error {
	return &Error{
		Kind:    KindNotFound,
		Entity:  entity,
		Message: message,
	}
}

// Storage wraps an underlying store failure.
func Storage(op string, err error) error {
	return &Error{
		Kind:    KindStorage,
		Message: op,
		Err:     err,
	}
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HasCode reports whether err is an *Error with the given code.
func HasCode(err error, code string) bool {
	e, ok := As(err)
	return ok && e.Code == code
}
