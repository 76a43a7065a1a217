package workflow

import (
	"errors"
	"fmt"

	"github.com/reliefops/relief/pkg/server/store"
)

var (
	// ErrInvalidInput is returned when an input cannot be coerced
	ErrInvalidInput = errors.New("invalid input")

	// ErrVictimNotInCamp is returned when a demonstration names a victim
	// without a camp
	ErrVictimNotInCamp = errors.New("victim not found or not assigned to a camp")
)

// Kind classifies a store failure
type Kind string

const (
	KindConstraint       Kind = "constraint"
	KindMissingReference Kind = "missing_reference"
	KindPermission       Kind = "permission_denied"
	KindUnavailable      Kind = "unavailable"
	KindOther            Kind = "other"
)

// Failure describes a rejected workflow operation
type Failure struct {
	Operation string
	Kind      Kind
	Message   string
	Err       error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s failed: %s", f.Operation, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// fail wraps a store error. Input errors pass through unchanged.
func fail(operation string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrVictimNotInCamp) {
		return err
	}

	f := &Failure{Operation: operation, Kind: KindOther, Message: err.Error(), Err: err}
	var ce *store.ConstraintError
	switch {
	case errors.As(err, &ce):
		f.Message = ce.Message
		f.Kind = KindConstraint
		if ce.Reason == store.ReasonForeignKey {
			f.Kind = KindMissingReference
		}
	case errors.Is(err, store.ErrPermissionDenied):
		f.Kind = KindPermission
	case errors.Is(err, store.ErrUnavailable):
		f.Kind = KindUnavailable
	}
	return f
}
