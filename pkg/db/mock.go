package db

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/reliefops/relief/pkg/session"
)

// MockConnector hands out a single sqlmock-backed gorm connection and keeps
// count of opens and releases. It is meant for tests.
type MockConnector struct {
	DB     *sql.DB
	Mock   sqlmock.Sqlmock
	GormDB *gorm.DB

	// OpenErr, when set, fails every Open.
	OpenErr error

	mu         sync.Mutex
	opened     int
	released   int
	principals []session.Principal
}

var _ Connector = (*MockConnector)(nil)

// NewMockConnector creates a sqlmock database wrapped with gorm.
func NewMockConnector() (*MockConnector, error) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		return nil, err
	}

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 mockDB,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger:               logger.Default.LogMode(logger.Silent),
			DisableAutomaticPing: true,
		},
	)
	if err != nil {
		_ = mockDB.Close()
		return nil, err
	}

	return &MockConnector{DB: mockDB, Mock: mock, GormDB: gormDB}, nil
}

func (m *MockConnector) Open(ctx context.Context, p session.Principal) (*gorm.DB, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.OpenErr != nil {
		return nil, nil, m.OpenErr
	}
	if p.IsZero() {
		return nil, nil, errors.New("no store principal")
	}
	m.opened++
	m.principals = append(m.principals, p)

	once := sync.Once{}
	release := func() {
		once.Do(func() {
			m.mu.Lock()
			m.released++
			m.mu.Unlock()
		})
	}
	return m.GormDB.WithContext(ctx), release, nil
}

// Opened returns the number of connections handed out.
func (m *MockConnector) Opened() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opened
}

// Released returns the number of connections given back.
func (m *MockConnector) Released() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.released
}

// Principals returns the principal of every Open in order.
func (m *MockConnector) Principals() []session.Principal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]session.Principal(nil), m.principals...)
}

// Close closes the mock database
func (m *MockConnector) Close() error {
	return m.DB.Close()
}

// VerifyExpectations checks that all expectations were met
func (m *MockConnector) VerifyExpectations() error {
	return m.Mock.ExpectationsWereMet()
}
