package db

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/reliefops/relief/pkg/session"
)

// Config holds the store location shared by every principal
type Config struct {
	Host     string
	Port     int
	Database string
	SSLMode  string
}

// DSN returns a keyword/value connection string for the principal.
func (c Config) DSN(p session.Principal) string {
	pairs := []string{
		"host=" + quoteValue(c.Host),
		"port=" + strconv.Itoa(c.Port),
		"dbname=" + quoteValue(c.Database),
		"user=" + quoteValue(p.User),
	}
	if p.Password != "" {
		pairs = append(pairs, "password="+quoteValue(p.Password))
	}
	if c.SSLMode != "" {
		pairs = append(pairs, "sslmode="+quoteValue(c.SSLMode))
	}
	return strings.Join(pairs, " ")
}

// quoteValue quotes a libpq keyword value, escaping backslashes and quotes.
func quoteValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// Open dials the store with gorm. Simple protocol keeps statements out of
// the server's prepared statement cache.
func Open(dsn string) (*gorm.DB, error) {
	logMode := logger.Silent
	if os.Getenv("DEBUG") == "1" {
		logMode = logger.Info
	}

	db, err := gorm.Open(
		postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logMode),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Connect opens the administrative connection named by DATABASE_URL.
// Request traffic never uses it; it serves migrations and tooling.
func Connect(url string) (*gorm.DB, error) {
	if url == "" {
		url = URL()
	}
	if url == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	return Open(url)
}

// URL returns the database URL from environment.
// Returns empty string if DATABASE_URL is not set.
func URL() string {
	return os.Getenv("DATABASE_URL")
}
