package store

import (
	"context"

	"github.com/reliefops/relief/pkg/session"
)

// HealthStore provides health check operations
type HealthStore interface {
	// CheckConnectivity verifies the principal can reach the store
	CheckConnectivity(ctx context.Context, p session.Principal) error
}
