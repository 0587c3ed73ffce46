// Package migration applies versioned SQL migrations with golang-migrate.
//
// Files follow golang-migrate naming (VERSION_name.up.sql and
// VERSION_name.down.sql) and live in one directory per driver:
//
//	//go:embed migrations
//	var files embed.FS
//
//	set := migration.NewSet(files, map[string]string{
//	    "sqlite":   "migrations/sqlite",
//	    "postgres": "migrations/postgres",
//	})
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Set is a group of migrations with one directory per driver.
type Set struct {
	fsys fs.FS
	dirs map[string]string
}

// NewSet creates a Set reading driver directories from fsys.
func NewSet(fsys fs.FS, dirs map[string]string) *Set {
	return &Set{fsys: fsys, dirs: dirs}
}

// Dir returns the migration directory for driver.
func (s *Set) Dir(driver string) (string, bool) {
	dir, ok := s.dirs[driver]
	return dir, ok
}

// Up applies all pending migrations for driver and returns the resulting
// version. No pending migrations is not an error.
func Up(db *sql.DB, driver string, set *Set) (uint, error) {
	m, err := newMigrator(db, driver, set)
	if err != nil {
		return 0, err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migrate up: %w", err)
	}
	return currentVersion(m)
}

// Down rolls back every migration for driver.
func Down(db *sql.DB, driver string, set *Set) error {
	m, err := newMigrator(db, driver, set)
	if err != nil {
		return err
	}
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// Version returns the applied version and dirty flag. Zero means none applied.
func Version(db *sql.DB, driver string, set *Set) (uint, bool, error) {
	m, err := newMigrator(db, driver, set)
	if err != nil {
		return 0, false, err
	}
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

func currentVersion(m *migrate.Migrate) (uint, error) {
	v, _, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	return v, err
}

// newMigrator builds a migrator on the shared pool. The migrator is never
// closed, since closing it would close db.
func newMigrator(db *sql.DB, driver string, set *Set) (*migrate.Migrate, error) {
	dir, ok := set.Dir(driver)
	if !ok {
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}

	instance, err := driverInstance(db, driver)
	if err != nil {
		return nil, fmt.Errorf("create %s migrate driver: %w", driver, err)
	}

	source, err := iofs.New(set.fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driver, instance)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

func driverInstance(db *sql.DB, driver string) (migratedb.Driver, error) {
	switch driver {
	case "sqlite":
		return sqlite3.WithInstance(db, &sqlite3.Config{})
	case "postgres":
		return postgres.WithInstance(db, &postgres.Config{})
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}
