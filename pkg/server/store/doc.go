// Package store provides storage abstractions for the relief server.
//
// This package defines interfaces for database operations so endpoints and
// workflows can be tested against mocks. Every method takes the principal
// the operation runs as; implementations open one connection per call.
//
// # Available Stores
//
//   - RecordsStore: generic CRUD over registered tables
//   - WorkflowStore: stored procedures, functions and trigger demonstrations
//   - ReportsStore: dashboard and read-only queries
//   - HealthStore: connectivity checks
//
// # Errors
//
// Store rejections surface as *ConstraintError, which matches
// ErrConstraintViolation:
//
//	if errors.Is(err, store.ErrConstraintViolation) {
//	    var ce *store.ConstraintError
//	    errors.As(err, &ce)
//	    log.Printf("rejected by %s: %s", ce.Constraint, ce.Message)
//	}
package store
