package schema

import (
	"errors"
	"fmt"
)

// TableDescriptor is the immutable description of one physical table.
type TableDescriptor struct {
	name    string
	key     Key
	columns []string
}

// NewTableDescriptor validates and builds a descriptor. Every key column must
// appear in columns and columns must not repeat.
func NewTableDescriptor(name string, key Key, columns ...string) (TableDescriptor, error) {
	if name == "" {
		return TableDescriptor{}, errors.New("table name is required")
	}
	if key.kind != KeySingle && key.kind != KeyComposite {
		return TableDescriptor{}, fmt.Errorf("table %s: invalid key", name)
	}
	if len(key.columns) == 0 {
		return TableDescriptor{}, fmt.Errorf("table %s: key has no columns", name)
	}

	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if c == "" {
			return TableDescriptor{}, fmt.Errorf("table %s: empty column name", name)
		}
		if seen[c] {
			return TableDescriptor{}, fmt.Errorf("table %s: duplicate column %s", name, c)
		}
		seen[c] = true
	}
	for _, k := range key.columns {
		if !seen[k] {
			return TableDescriptor{}, fmt.Errorf("table %s: key column %s is not a declared column", name, k)
		}
	}

	cols := make([]string, len(columns))
	copy(cols, columns)
	k := Key{kind: key.kind, columns: key.Columns()}
	return TableDescriptor{name: name, key: k, columns: cols}, nil
}

// MustTableDescriptor is like NewTableDescriptor but panics on error. It is
// meant for static registries.
func MustTableDescriptor(name string, key Key, columns ...string) TableDescriptor {
	d, err := NewTableDescriptor(name, key, columns...)
	if err != nil {
		panic(err)
	}
	return d
}

// Name returns the physical table name.
func (d TableDescriptor) Name() string {
	return d.name
}

// Key returns the primary key descriptor.
func (d TableDescriptor) Key() Key {
	return d.key
}

// Columns returns a copy of the declared columns in statement order.
func (d TableDescriptor) Columns() []string {
	cols := make([]string, len(d.columns))
	copy(cols, d.columns)
	return cols
}

// NonKeyColumns returns the declared columns that are not part of the key,
// in declaration order.
func (d TableDescriptor) NonKeyColumns() []string {
	cols := make([]string, 0, len(d.columns))
	for _, c := range d.columns {
		if !d.key.Contains(c) {
			cols = append(cols, c)
		}
	}
	return cols
}

// HasColumn reports whether column is declared on the table.
func (d TableDescriptor) HasColumn(column string) bool {
	for _, c := range d.columns {
		if c == column {
			return true
		}
	}
	return false
}
