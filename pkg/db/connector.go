package db

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/reliefops/relief/pkg/session"
)

// Connector opens a store connection authenticated as a principal. The
// returned release func must be called exactly once.
type Connector interface {
	Open(ctx context.Context, p session.Principal) (*gorm.DB, func(), error)
}

// PostgresConnector dials a fresh single-connection pool per Open.
type PostgresConnector struct {
	cfg  Config
	open func(dsn string) (*gorm.DB, error)
}

var _ Connector = (*PostgresConnector)(nil)

// NewPostgresConnector returns a connector for the store described by cfg.
func NewPostgresConnector(cfg Config) *PostgresConnector {
	return &PostgresConnector{cfg: cfg, open: Open}
}

func (c *PostgresConnector) Open(ctx context.Context, p session.Principal) (*gorm.DB, func(), error) {
	if p.IsZero() {
		return nil, nil, fmt.Errorf("no store principal")
	}
	gdb, err := c.open(c.cfg.DSN(p))
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	release := func() { _ = sqlDB.Close() }
	return gdb.WithContext(ctx), release, nil
}

// PooledConnector keeps one pool per principal for the life of the process.
// Release is a no-op; Close drops every pool.
type PooledConnector struct {
	cfg  Config
	open func(dsn string) (*gorm.DB, error)

	mu    sync.Mutex
	pools map[session.Principal]*gorm.DB
}

var _ Connector = (*PooledConnector)(nil)

// NewPooledConnector returns a connector caching pools per principal.
func NewPooledConnector(cfg Config) *PooledConnector {
	return &PooledConnector{cfg: cfg, open: Open, pools: make(map[session.Principal]*gorm.DB)}
}

func (c *PooledConnector) Open(ctx context.Context, p session.Principal) (*gorm.DB, func(), error) {
	if p.IsZero() {
		return nil, nil, fmt.Errorf("no store principal")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	gdb, ok := c.pools[p]
	if !ok {
		var err error
		gdb, err = c.open(c.cfg.DSN(p))
		if err != nil {
			return nil, nil, err
		}
		c.pools[p] = gdb
	}
	return gdb.WithContext(ctx), func() {}, nil
}

// Close closes every cached pool.
func (c *PooledConnector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for p, gdb := range c.pools {
		if sqlDB, err := gdb.DB(); err == nil {
			if err := sqlDB.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		delete(c.pools, p)
	}
	return firstErr
}

// WithConnection opens a connection for p, runs fn and releases the
// connection on every exit path, including a panic in fn.
func WithConnection(ctx context.Context, c Connector, p session.Principal, fn func(tx *gorm.DB) error) error {
	gdb, release, err := c.Open(ctx, p)
	if err != nil {
		return err
	}
	defer release()
	return fn(gdb)
}

// Verify opens a connection for p, pings the store and releases it.
func Verify(ctx context.Context, c Connector, p session.Principal) error {
	return WithConnection(ctx, c, p, func(tx *gorm.DB) error {
		sqlDB, err := tx.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
}
