package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	app_errors "github.com/cyrilcaoyang/gopoe/internal/errors"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// InitDB connects to the SQLite database at dataSourceName and applies the
// embedded schema migrations. Migration is the single, idempotent
// "ensure schema" step: it runs exactly once per process, here, not lazily
// at call sites.
func InitDB(dataSourceName string) (*sql.DB, error) {
	dir := filepath.Dir(dataSourceName)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("%w: failed to create database directory: %v", app_errors.ErrStorage, err)
	}

	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", app_errors.ErrStorage, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("%w: failed to connect to database: %v", app_errors.ErrStorage, err)
	}

	// WAL lets concurrently running front-end processes read while one writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		slog.Warn("Failed to enable WAL mode for SQLite, continuing without it.", "error", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		slog.Warn("Failed to enable foreign key enforcement for SQLite.", "error", err)
	}

	if err := migrateSchema(db); err != nil {
		return nil, fmt.Errorf("%w: failed to migrate schema: %v", app_errors.ErrStorage, err)
	}

	return db, nil
}

func migrateSchema(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not load embedded migrations: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("could not create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
