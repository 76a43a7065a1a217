// Package db provides store connections scoped to a principal.
//
// Every operation runs on a connection opened for the principal of the
// current session and released when the operation ends:
//
//	err := db.WithConnection(ctx, connector, principal, func(tx *gorm.DB) error {
//	    return tx.Exec(`DELETE FROM "victim" WHERE "victim_id" = ?`, 42).Error
//	})
//
// PostgresConnector dials per operation. PooledConnector caches a pool per
// principal; it changes resource use only, never behaviour.
//
// # Environment Variables
//
//   - DATABASE_URL: administrative connection for migrations
//   - DEBUG: set to "1" for SQL statement logging
package db
