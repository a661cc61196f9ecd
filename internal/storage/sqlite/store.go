package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/habit/internal/logger"
	"github.com/julianstephens/habit/internal/migration"
	"github.com/julianstephens/habit/internal/storage"
	"github.com/julianstephens/habit/migrations"
)

// busy_timeout lets a second process wait for the write lock instead of
// failing immediately with SQLITE_BUSY.
const dsnParams = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

var _ storage.Provider = (*Store)(nil)

// Store is the SQLite-backed habit store. It owns a single connection that is
// opened on first use and held until Close.
type Store struct {
	path string
	db   *sql.DB
	now  func() time.Time
}

type Option func(*Store)

// WithClock overrides the source of "now", which decides what today is.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path: path,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init creates the database if needed and applies pending migrations.
// Safe to call any number of times.
func (s *Store) Init() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	if err := s.open(); err != nil {
		return err
	}

	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Load opens an existing database and checks its schema version. A file
// without the habit schema is reported as ErrNotInitialized and left as is.
// An older schema is migrated forward.
func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return storage.ErrNotInitialized
	}

	if err := s.open(); err != nil {
		return err
	}

	if err := s.checkSchema(); err != nil {
		_ = s.Close()
		return err
	}

	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) open() error {
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path+dsnParams)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to open database: %w", err)
	}

	s.db = db
	return nil
}

// conn returns the open connection, loading the database on first use.
func (s *Store) conn() (*sql.DB, error) {
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s.db, nil
}

func (s *Store) migrationRunner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS), nil
}

func (s *Store) runMigrations() error {
	runner, err := s.migrationRunner()
	if err != nil {
		return err
	}

	_, err = runner.Apply(func(msg string) {
		logger.Debug(msg, "db", s.path)
	})
	return err
}

func (s *Store) checkSchema() error {
	runner, err := s.migrationRunner()
	if err != nil {
		return err
	}

	current, err := runner.CurrentVersion()
	if err != nil {
		return err
	}
	if current == 0 {
		return storage.ErrNotInitialized
	}

	hasHabits, err := s.tableExists("habits")
	if err != nil {
		return fmt.Errorf("failed to check habits table: %w", err)
	}
	if !hasHabits {
		return storage.ErrNotInitialized
	}

	if err := runner.ValidateVersion(); err != nil {
		return err
	}

	applied, err := runner.Apply(func(msg string) {
		logger.Debug(msg, "db", s.path)
	})
	if err != nil {
		return fmt.Errorf("failed to upgrade schema: %w", err)
	}
	if applied > 0 {
		logger.Info("Upgraded database schema", "db", s.path, "applied", applied)
	}
	return nil
}

// SchemaVersion returns the applied and the latest known schema versions.
func (s *Store) SchemaVersion() (current, latest int, err error) {
	if _, err := s.conn(); err != nil {
		return 0, 0, err
	}

	runner, err := s.migrationRunner()
	if err != nil {
		return 0, 0, err
	}
	if current, err = runner.CurrentVersion(); err != nil {
		return 0, 0, err
	}
	if latest, err = runner.LatestVersion(); err != nil {
		return 0, 0, err
	}
	return current, latest, nil
}

// tableExists checks if a table exists in the SQLite database.
// The check is case-insensitive to match SQLite's behavior.
func (s *Store) tableExists(tableName string) (bool, error) {
	db, err := s.conn()
	if err != nil {
		return false, err
	}

	var count int
	row := db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name COLLATE NOCASE = ?", tableName)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying database connection, or nil before Init/Load.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

// Timestamps are stored as RFC3339 text at second precision so a value read
// back compares equal to the one returned at insert time.
func formatTimestamp(t time.Time) string {
	return t.Truncate(time.Second).Format(time.RFC3339)
}

func parseTimestamp(value sql.NullString) (time.Time, error) {
	if !value.Valid || value.String == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, value.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", value.String, err)
	}
	return t, nil
}
