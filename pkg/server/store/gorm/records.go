package gorm

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/reliefops/relief/pkg/db"
	"github.com/reliefops/relief/pkg/model"
	"github.com/reliefops/relief/pkg/schema"
	"github.com/reliefops/relief/pkg/server/store"
	"github.com/reliefops/relief/pkg/session"
)

// Ensure RecordsStore implements store.RecordsStore
var _ store.RecordsStore = (*RecordsStore)(nil)

// RecordsStore implements store.RecordsStore with statements built from
// table descriptors
type RecordsStore struct {
	conn db.Connector
}

// NewRecordsStore creates a new RecordsStore
func NewRecordsStore(conn db.Connector) *RecordsStore {
	return &RecordsStore{conn: conn}
}

// List returns every row of the table.
func (s *RecordsStore) List(ctx context.Context, p session.Principal, desc schema.TableDescriptor) ([]store.Row, error) {
	stmt := schema.BuildSelect(desc)

	var result []store.Row
	err := withConnection(ctx, s.conn, p, func(tx *gorm.DB) error {
		rows, err := tx.Raw(stmt.SQL, stmt.Args...).Rows()
		if err != nil {
			return err
		}
		defer rows.Close()

		width := len(desc.Columns())
		for rows.Next() {
			values := make([]any, width)
			dest := make([]any, width)
			for i := range values {
				dest[i] = &values[i]
			}
			if err := rows.Scan(dest...); err != nil {
				return err
			}
			for i, v := range values {
				values[i] = normalize(v)
			}
			result = append(result, store.Row(values))
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Insert adds a row.
func (s *RecordsStore) Insert(ctx context.Context, p session.Principal, desc schema.TableDescriptor, values schema.FieldValues) error {
	stmt := schema.BuildInsert(desc, values)
	return withConnection(ctx, s.conn, p, func(tx *gorm.DB) error {
		return tx.Exec(stmt.SQL, stmt.Args...).Error
	})
}

// Update rewrites the non-key columns of one row.
func (s *RecordsStore) Update(ctx context.Context, p session.Principal, desc schema.TableDescriptor, values schema.FieldValues) (int64, error) {
	stmt, err := schema.BuildUpdate(desc, values)
	if err != nil {
		return 0, err
	}
	return s.exec(ctx, p, stmt)
}

// Delete removes the row matching the full key.
func (s *RecordsStore) Delete(ctx context.Context, p session.Principal, desc schema.TableDescriptor, values schema.FieldValues) (int64, error) {
	stmt, err := schema.BuildDelete(desc, values)
	if err != nil {
		return 0, err
	}
	return s.exec(ctx, p, stmt)
}

func (s *RecordsStore) exec(ctx context.Context, p session.Principal, stmt schema.Statement) (int64, error) {
	var affected int64
	err := withConnection(ctx, s.conn, p, func(tx *gorm.DB) error {
		res := tx.Exec(stmt.SQL, stmt.Args...)
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

// normalize turns driver values into JSON friendly scalars.
func normalize(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format(model.DateLayout)
		}
		return t.Format(time.RFC3339)
	}
	return v
}
