package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/reliefops/relief/pkg/db"
	"github.com/reliefops/relief/pkg/server/store"
	"github.com/reliefops/relief/pkg/session"
)

// Ensure HealthStore implements store.HealthStore
var _ store.HealthStore = (*HealthStore)(nil)

// HealthStore provides health check operations using GORM
type HealthStore struct {
	conn db.Connector
}

// NewHealthStore creates a new HealthStore
func NewHealthStore(conn db.Connector) *HealthStore {
	return &HealthStore{conn: conn}
}

// CheckConnectivity verifies database connectivity
func (s *HealthStore) CheckConnectivity(ctx context.Context, p session.Principal) error {
	return withConnection(ctx, s.conn, p, func(tx *gorm.DB) error {
		return tx.Exec("SELECT 1").Error
	})
}
