package schema

import "strings"

// FieldValues maps column names to optional scalar values. A missing entry
// and a nil entry both bind as NULL.
type FieldValues map[string]any

// ParseFieldValues reads the descriptor's columns from untrusted input.
// Blank values become nil; input keys that are not declared columns are
// never looked at.
func ParseFieldValues(desc TableDescriptor, get func(column string) string) FieldValues {
	values := make(FieldValues, len(desc.columns))
	for _, c := range desc.columns {
		v := strings.TrimSpace(get(c))
		if v == "" {
			values[c] = nil
			continue
		}
		values[c] = v
	}
	return values
}

// Present reports whether column holds a non-NULL value.
func (v FieldValues) Present(column string) bool {
	val, ok := v[column]
	if !ok || val == nil {
		return false
	}
	if s, isString := val.(string); isString && s == "" {
		return false
	}
	return true
}

// Get returns the bound value for column, nil when absent.
func (v FieldValues) Get(column string) any {
	if !v.Present(column) {
		return nil
	}
	return v[column]
}

// Missing returns the columns among want that are not present, in order.
func (v FieldValues) Missing(want []string) []string {
	var missing []string
	for _, c := range want {
		if !v.Present(c) {
			missing = append(missing, c)
		}
	}
	return missing
}
