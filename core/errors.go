package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string `json:"campo"`
	Error string `json:"error"`
}

// ValidationError holds every field that failed validation; it is user-correctable.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	if len(err.Fields) > 0 {
		return fmt.Sprintf("%s: %s", err.Fields[0].Field, err.Fields[0].Error)
	}
	return "validation failed"
}

// HasField reports whether `field` is one of the violated fields.
func (err ValidationError) HasField(field string) bool {
	for _, f := range err.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// NotFoundError reports a stale or foreign reference.
type NotFoundError struct {
	Resource string
	ID       int64
}

func NewNotFoundError(resource string, id int64) error {
	return &NotFoundError{Resource: resource, ID: id}
}

func (err NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", err.Resource, err.ID)
}

func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}

// StorageError is a connectivity or integrity failure coming from the persistence layer.
type StorageError struct {
	Op  string
	Err error
}

func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

func (err StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", err.Op, err.Err)
}

func (err StorageError) Unwrap() error { return err.Err }

func IsStorage(err error) bool {
	_, ok := errors.Cause(err).(*StorageError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
