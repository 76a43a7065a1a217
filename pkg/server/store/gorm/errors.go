package gorm

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/reliefops/relief/pkg/db"
	"github.com/reliefops/relief/pkg/server/store"
	"github.com/reliefops/relief/pkg/session"
)

// withConnection runs fn on a connection for p. Failing to open the
// connection is reported as store.ErrUnavailable; statement failures are
// classified by SQLSTATE.
func withConnection(ctx context.Context, c db.Connector, p session.Principal, fn func(tx *gorm.DB) error) error {
	opened := false
	err := db.WithConnection(ctx, c, p, func(tx *gorm.DB) error {
		opened = true
		return fn(tx)
	})
	if err != nil && !opened {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return classify(err)
}

// classify maps driver errors onto the store taxonomy. Errors the store did
// not raise pass through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fromSQLState(pgErr.Code, pgErr.Message, pgErr.ConstraintName, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fromSQLState(string(pqErr.Code), pqErr.Message, pqErr.Constraint, err)
	}
	return err
}

func fromSQLState(code, message, constraint string, err error) error {
	switch {
	case code == "42501":
		return fmt.Errorf("%w: %s", store.ErrPermissionDenied, message)
	case code == "P0001" || (len(code) == 5 && code[:2] == "23"):
		return &store.ConstraintError{
			Code:       code,
			Message:    message,
			Constraint: constraint,
			Reason:     reason(code),
		}
	}
	return err
}

func reason(code string) string {
	switch code {
	case "23503":
		return store.ReasonForeignKey
	case "23505":
		return store.ReasonUnique
	case "23514":
		return store.ReasonCheck
	case "23502":
		return store.ReasonNotNull
	case "P0001":
		return store.ReasonInvariant
	}
	return store.ReasonOther
}
