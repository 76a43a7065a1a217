package store

import (
	"errors"
	"fmt"

	"github.com/reliefops/relief/pkg/schema"
)

var (
	// ErrMissingKey is returned when a mutation lacks a key column
	ErrMissingKey = schema.ErrMissingKey

	// ErrUnsupportedOperation is returned for updates on composite-key tables
	ErrUnsupportedOperation = schema.ErrUnsupportedOperation

	// ErrConstraintViolation is returned when the store rejects a mutation
	// through a constraint, trigger or procedure check
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrPermissionDenied is returned when the principal's grants reject a statement
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUnavailable is returned when no connection could be opened
	ErrUnavailable = errors.New("store unavailable")
)

// Constraint reasons
const (
	ReasonForeignKey = "foreign_key"
	ReasonUnique     = "unique"
	ReasonCheck      = "check"
	ReasonNotNull    = "not_null"
	ReasonInvariant  = "invariant"
	ReasonOther      = "other"
)

// ConstraintError carries the store's own explanation of a rejection.
type ConstraintError struct {
	Code       string
	Message    string
	Constraint string
	Reason     string
}

func (e *ConstraintError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("%s (%s): %s", ErrConstraintViolation, e.Constraint, e.Message)
	}
	return fmt.Sprintf("%s: %s", ErrConstraintViolation, e.Message)
}

func (e *ConstraintError) Is(target error) bool {
	return target == ErrConstraintViolation
}
