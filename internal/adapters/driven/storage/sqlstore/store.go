package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/prsync/internal/adapters/driven/storage/sqlstore/migrations"
	"github.com/custodia-labs/prsync/internal/core/domain"
	"github.com/custodia-labs/prsync/internal/core/ports/driven"
	"github.com/custodia-labs/prsync/internal/logger"
)

// sqlitePragmas are applied to every SQLite connection. Foreign keys must be
// on for the pull request cascade to reach associations.
const (
	foreignKeysPragma = "_pragma=foreign_keys(1)"
	sqlitePragmas     = foreignKeysPragma + "&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_time_format=sqlite"
)

// gooseMu guards goose's package-level dialect and filesystem.
var gooseMu sync.Mutex

// Store is a relational store that provides access to the sync and run
// history interfaces through wrapper types. The same SQL serves SQLite and
// PostgreSQL: $n placeholders and ON CONFLICT are understood by both.
type Store struct {
	db      *sql.DB
	driver  string
	dialect string
	dir     string
}

// Open connects to the database. driver is domain.DriverSQLite or
// domain.DriverPostgres. For SQLite, dsn is a file path and its directory
// is created if missing.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	s := &Store{driver: driver}

	var sqlDriver string
	switch driver {
	case domain.DriverSQLite:
		path, err := sqliteDSN(dsn)
		if err != nil {
			return nil, err
		}
		sqlDriver, dsn = "sqlite", path
		s.dialect, s.dir = "sqlite3", migrations.DirSQLite
	case domain.DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("%w: postgres requires a DSN", domain.ErrInvalidInput)
		}
		sqlDriver = "pgx"
		s.dialect, s.dir = "postgres", migrations.DirPostgres
	default:
		return nil, fmt.Errorf("%w: unsupported database driver %q", domain.ErrInvalidInput, driver)
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s.db = db
	return s, nil
}

// sqliteDSN turns a file path into a modernc DSN with the store's pragmas.
func sqliteDSN(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: sqlite requires a database path", domain.ErrInvalidInput)
	}
	file, query, hasQuery := strings.Cut(path, "?")
	if dir := filepath.Dir(file); dir != "." && !strings.HasPrefix(file, "file:") {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return "", fmt.Errorf("creating data directory: %w", err)
		}
	}
	if !hasQuery {
		return path + "?" + sqlitePragmas, nil
	}
	// Purges rely on cascades, so foreign keys stay on whatever else is set.
	if !strings.Contains(query, "foreign_keys") {
		path += "&" + foreignKeysPragma
	}
	return path, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the configured driver name.
func (s *Store) Driver() string {
	return s.driver
}

// SyncStore returns a SyncStore interface backed by this store.
func (s *Store) SyncStore() driven.SyncStore {
	return &syncStore{store: s}
}

// RunStore returns a RunStore interface backed by this store.
func (s *Store) RunStore() driven.RunStore {
	return &runStore{store: s}
}

// Migrate applies all pending migrations of the store's dialect.
func (s *Store) Migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrations.FS, s.dir)
	if err != nil {
		return fmt.Errorf("opening migrations: %w", err)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(gooseLogger{})

	if err := goose.SetDialect(s.dialect); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, s.db, "."); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Version returns the applied schema version.
func (s *Store) Version(ctx context.Context) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := goose.SetDialect(s.dialect); err != nil {
		return 0, fmt.Errorf("setting goose dialect: %w", err)
	}
	v, err := goose.GetDBVersionContext(ctx, s.db)
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}

// gooseLogger routes goose output to the process logger.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) {
	logger.Debug("goose: "+strings.TrimSuffix(format, "\n"), v...)
}

func (gooseLogger) Fatalf(format string, v ...any) {
	logger.Error("goose: "+strings.TrimSuffix(format, "\n"), v...)
}
