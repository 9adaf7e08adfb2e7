// Package gormstore provides a gorm-backed implementation of the storage.Store
// interface for PostgreSQL and SQLite.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	msqlite "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mmynk/invoicer/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Dialect names the database engine behind a DSN.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Store implements storage.Store using gorm.
type Store struct {
	db         *gorm.DB
	dialect    Dialect
	migrateURL string
}

// Option configures a Store.
type Option func(*gorm.Config)

// WithLogLevel sets the gorm SQL log level.
func WithLogLevel(level logger.LogLevel) Option {
	return func(c *gorm.Config) {
		c.Logger = c.Logger.LogMode(level)
	}
}

// Open connects to the database named by dsn. The dialect is chosen from
// the DSN: postgres:// and postgresql:// URLs use PostgreSQL, sqlite://
// URLs, file: URIs and bare paths use SQLite. Open does not migrate the
// schema; call MigrateUp for that.
func Open(dsn string, opts ...Option) (*Store, error) {
	dialect, connDSN, migrateURL, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}

	cfg := &gorm.Config{
		NowFunc: now,
		Logger: logger.New(
			slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
			logger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
		TranslateError: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var dialector gorm.Dialector
	switch dialect {
	case DialectPostgres:
		dialector = postgres.Open(connDSN)
	default:
		dialector = &sqlite.Dialector{DriverName: "sqlite", DSN: connDSN}
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dialect == DialectSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		// SQLite allows a single writer; one connection avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	}

	return &Store{db: db, dialect: dialect, migrateURL: migrateURL}, nil
}

// Dialect returns the database engine in use.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// DB exposes the underlying gorm handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// now is the store clock: UTC at the precision both engines keep.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// parseDSN returns the dialect, the driver DSN and the golang-migrate URL for dsn.
func parseDSN(dsn string) (Dialect, string, string, error) {
	switch {
	case dsn == "":
		return "", "", "", errors.New("database DSN is empty")
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DialectPostgres, dsn, dsn, nil
	}

	path := strings.TrimPrefix(dsn, "sqlite://")
	path = strings.TrimPrefix(path, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return "", "", "", fmt.Errorf("sqlite needs a database file, got %q", dsn)
	}

	// Create parent directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", "", "", fmt.Errorf("failed to create database directory: %w", err)
	}

	connDSN := "file:" + path +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
	return DialectSQLite, connDSN, "sqlite://" + path, nil
}

// translateError maps driver errors onto the storage sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storage.ErrNotFound
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", storage.ErrConflict, err)
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return fmt.Errorf("%w: %v", storage.ErrConflict, err)
	}
	return err
}
