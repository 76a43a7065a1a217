package workflow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/reliefops/relief/pkg/model"
)

var validate = validator.New()

// optionalInt parses a blank-or-integer field.
func optionalInt(field, raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidInput, field, raw)
	}
	return &v, nil
}

// requiredInt parses an integer field that must be present.
func requiredInt(field, raw string) (int64, error) {
	v, err := optionalInt(field, raw)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	return *v, nil
}

// optionalDate validates a blank-or-YYYY-MM-DD field.
func optionalDate(field, raw string) (*string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if err := validate.Var(raw, "datetime="+model.DateLayout); err != nil {
		return nil, fmt.Errorf("%w: %s must be a date (YYYY-MM-DD), got %q", ErrInvalidInput, field, raw)
	}
	return &raw, nil
}

// requiredDate validates a YYYY-MM-DD field that must be present.
func requiredDate(field, raw string) (string, error) {
	v, err := optionalDate(field, raw)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	return *v, nil
}

func orDefault(raw, def string) string {
	if strings.TrimSpace(raw) == "" {
		return def
	}
	return raw
}
