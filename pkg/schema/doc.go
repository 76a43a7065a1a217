// Package schema describes the relief entities the record engine can reach.
//
// A TableDescriptor names a physical table, its primary key and the ordered
// list of columns. The key is a tagged variant: either a single column or an
// ordered composite of columns. Every CRUD path switches on that tag once.
//
// # Registry
//
// Default holds the eight relief entities and is read-only after package
// initialization:
//
//	desc, err := schema.Default.Describe("Victim")
//	if errors.Is(err, schema.ErrNotFound) {
//	    // unknown tab
//	}
//
// # Statements
//
// BuildSelect, BuildInsert, BuildUpdate and BuildDelete turn a descriptor and
// a FieldValues map into a Statement whose values are bound only through `?`
// placeholders. Identifiers are taken from the descriptor, never from input.
package schema
