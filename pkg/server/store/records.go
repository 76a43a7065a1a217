package store

import (
	"context"

	"github.com/reliefops/relief/pkg/schema"
	"github.com/reliefops/relief/pkg/session"
)

// Row is one record with values in descriptor column order.
type Row []any

// RecordsStore runs generic CRUD over any registered table
type RecordsStore interface {
	// List returns every row of the table with all declared columns.
	List(ctx context.Context, p session.Principal, desc schema.TableDescriptor) ([]Row, error)

	// Insert adds a row. Absent columns are inserted as NULL.
	Insert(ctx context.Context, p session.Principal, desc schema.TableDescriptor, values schema.FieldValues) error

	// Update rewrites every non-key column of the row named by the key.
	// Returns ErrUnsupportedOperation for composite keys without opening
	// a connection and ErrMissingKey when the key is absent.
	Update(ctx context.Context, p session.Principal, desc schema.TableDescriptor, values schema.FieldValues) (int64, error)

	// Delete removes the row matching every key column.
	// Returns ErrMissingKey when any key column is absent.
	Delete(ctx context.Context, p session.Principal, desc schema.TableDescriptor, values schema.FieldValues) (int64, error)
}
