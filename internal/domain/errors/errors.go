package errors

import (
	"errors"
	"fmt"
)

// Sentinel kinds for handlers to map to HTTP status. Typed errors below match them via errors.Is.
var (
	ErrValidation    = errors.New("validation failed")
	ErrAlreadyExists = errors.New("already exists")
	ErrNotFound      = errors.New("not found")
)

// Named validation failures raised by the services.
var (
	ErrNotTemplate       = &ValidationError{Field: "template_id", Message: "project is not a template"}
	ErrIncorrectPassword = &ValidationError{Field: "old_password", Message: "incorrect old password"}
	ErrPasswordTooShort  = &ValidationError{Field: "password", Message: "password must be at least 8 characters"}
)

// ValidationError reports a broken entity invariant or use-case precondition.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Validation builds a ValidationError.
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// AlreadyExistsError reports a uniqueness conflict and carries the conflicting value.
type AlreadyExistsError struct {
	Entity string
	Field  string
	Value  string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Entity, e.Field, e.Value)
}

func (e *AlreadyExistsError) Is(target error) bool { return target == ErrAlreadyExists }

// AlreadyExists builds an AlreadyExistsError.
func AlreadyExists(entity, field, value string) error {
	return &AlreadyExistsError{Entity: entity, Field: field, Value: value}
}

// NotFoundError reports a missing identity.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NotFound builds a NotFoundError.
func NotFound(entity string, id int64) error {
	return &NotFoundError{Entity: entity, ID: id}
}
