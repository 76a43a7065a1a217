package schema

import "strings"

// KeyKind tags the shape of a primary key.
type KeyKind int

const (
	KeySingle KeyKind = iota + 1
	KeyComposite
)

func (k KeyKind) String() string {
	switch k {
	case KeySingle:
		return "single"
	case KeyComposite:
		return "composite"
	default:
		return "invalid"
	}
}

// Key is a primary key descriptor. The zero value is invalid.
type Key struct {
	kind    KeyKind
	columns []string
}

// Single returns a key made of one column.
func Single(column string) Key {
	return Key{kind: KeySingle, columns: []string{column}}
}

// Composite returns a key made of the given columns. Order matters: it is the
// order of the equality predicates in generated statements.
func Composite(columns ...string) Key {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return Key{kind: KeyComposite, columns: cols}
}

// Kind returns the key shape.
func (k Key) Kind() KeyKind {
	return k.kind
}

// IsComposite reports whether the key spans more than one column.
func (k Key) IsComposite() bool {
	return k.kind == KeyComposite
}

// Column returns the key column of a single-column key, or "" for a
// composite key.
func (k Key) Column() string {
	if k.kind != KeySingle {
		return ""
	}
	return k.columns[0]
}

// Columns returns a copy of the key columns in key order.
func (k Key) Columns() []string {
	cols := make([]string, len(k.columns))
	copy(cols, k.columns)
	return cols
}

// Contains reports whether column is part of the key.
func (k Key) Contains(column string) bool {
	for _, c := range k.columns {
		if c == column {
			return true
		}
	}
	return false
}

func (k Key) String() string {
	if k.kind == KeySingle {
		return k.columns[0]
	}
	return "(" + strings.Join(k.columns, ", ") + ")"
}
