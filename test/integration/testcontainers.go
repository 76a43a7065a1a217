package integration

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/reliefops/relief/pkg/db"
	"github.com/reliefops/relief/pkg/session"
)

// Store principals and the passwords the tests give them.
var principals = map[string]session.Principal{
	"admin":    {User: "relief_admin", Password: "admin-pw"},
	"operator": {User: "relief_operator", Password: "operator-pw"},
	"viewer":   {User: "relief_viewer", Password: "viewer-pw"},
	"guest":    {User: "relief_guest", Password: "guest-pw"},
	"audit":    {User: "relief_audit", Password: "audit-pw"},
}

// TestContext holds all the resources needed for integration tests
type TestContext struct {
	DB          *gorm.DB // superuser connection for setup and assertions
	Container   testcontainers.Container
	DatabaseURL string
	Store       db.Config
	Server      *ServerInstance
}

// NewTestContext starts PostgreSQL, migrates it and starts a relief server.
// Modes:
//   - Inline mode (default): the server runs in-process
//   - Binary mode: set RELIEF_BINARY to the path of a reliefctl binary
func NewTestContext(ctx context.Context) (*TestContext, error) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to find project root: %w", err)
	}
	migrationsDir := filepath.Join(projectRoot, "db", "migrations")

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("relief_test"),
		tcpostgres.WithUsername("relief"),
		tcpostgres.WithPassword("relief"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	tc := &TestContext{Container: pgContainer}
	if err := tc.setup(ctx, migrationsDir); err != nil {
		tc.Close(ctx)
		return nil, err
	}
	return tc, nil
}

func (tc *TestContext) setup(ctx context.Context, migrationsDir string) error {
	host, err := tc.Container.Host(ctx)
	if err != nil {
		return fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := tc.Container.MappedPort(ctx, "5432")
	if err != nil {
		return fmt.Errorf("failed to get container port: %w", err)
	}
	tc.DatabaseURL = fmt.Sprintf("postgres://relief:relief@%s:%s/relief_test?sslmode=disable", host, port.Port())
	tc.Store = db.Config{Host: host, Port: port.Int(), Database: "relief_test", SSLMode: "disable"}

	if err := runMigrations(tc.DatabaseURL, migrationsDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	tc.DB, err = db.Connect(tc.DatabaseURL)
	if err != nil {
		return err
	}

	for _, p := range principals {
		if err := tc.DB.Exec(fmt.Sprintf(`ALTER ROLE %q PASSWORD '%s'`, p.User, p.Password)).Error; err != nil {
			return fmt.Errorf("failed to set password of %s: %w", p.User, err)
		}
	}
	if err := tc.seed(); err != nil {
		return fmt.Errorf("failed to seed: %w", err)
	}

	binaryPath := os.Getenv("RELIEF_BINARY")
	if binaryPath != "" {
		log.Printf("Using binary: %s", binaryPath)
		tc.Server, err = startBinaryServer(binaryPath, tc.Store)
	} else {
		log.Println("Using inline server mode")
		tc.Server, err = startInlineServer(tc.Store)
	}
	return err
}

// seed inserts the camps, people and stock the features refer to.
func (tc *TestContext) seed() error {
	statements := []string{
		`INSERT INTO disaster (disaster_id, type, severity, start_date, city, district, state)
		 VALUES (1, 'Flood', 'High', '2024-05-28', 'Kochi', 'Ernakulam', 'Kerala')`,
		`INSERT INTO relief_camp (camp_id, name, village, district, state, capacity, camp_status, open_date, disaster_id)
		 VALUES (11, 'North School', 'Aluva', 'Ernakulam', 'Kerala', 4, 'Open', '2024-05-29', 1),
		        (12, 'Temple Hall', 'Kalady', 'Ernakulam', 'Kerala', 0, 'Planned', NULL, 1)`,
		`INSERT INTO volunteer (volunteer_id, name, phone, availability) VALUES (201, 'Meera', '555-0101', 'Full-time')`,
		`INSERT INTO victim (victim_id, name, age, gender, village, district, state, camp_id)
		 VALUES (301, 'Ravi', 42, 'M', 'Aluva', 'Ernakulam', 'Kerala', 11)`,
		`INSERT INTO resource (resource_id, category, item_name, unit) VALUES (401, 'Food', 'Rice', 'kg')`,
		`INSERT INTO stocked_at (camp_id, resource_id, current_qty, reorder_level) VALUES (11, 401, 50, 10)`,
	}
	for _, stmt := range statements {
		if err := tc.DB.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// Close cleans up all test resources
func (tc *TestContext) Close(ctx context.Context) {
	if tc.Server != nil {
		tc.Server.Stop()
	}
	if tc.DB != nil {
		if sqlDB, err := tc.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}

// findProjectRoot locates the project root directory
func findProjectRoot() (string, error) {
	paths := []string{
		"../..",
		"..",
		".",
	}

	for _, p := range paths {
		goMod := filepath.Join(p, "go.mod")
		if _, err := os.Stat(goMod); err == nil {
			return filepath.Abs(p)
		}
	}

	return "", fmt.Errorf("project root not found (looking for go.mod)")
}

// runMigrations applies the reference migrations the way reliefctl does.
func runMigrations(dbURL, migrationsDir string) error {
	m, err := migrate.New("file://"+migrationsDir, dbURL+"&x-migrations-table=relief_schema_migrations")
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
