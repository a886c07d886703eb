package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/KK-2k06/DreamInk/db/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// newMigrator wraps conn in a migrator over the embedded schema.
// The migrator owns conn: closing it closes the connection.
func newMigrator(conn *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(conn, &sqlite.Config{DatabaseName: "main"})
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// withMigrator opens a dedicated connection to path, since golang-migrate
// closes the connection it is handed.
func withMigrator(ctx context.Context, path string, fn func(*migrate.Migrate) error) error {
	conn, err := NewSQLiteConnection(ctx, DefaultConnectionConfig(path))
	if err != nil {
		return err
	}
	m, err := newMigrator(conn)
	if err != nil {
		conn.Close()
		return err
	}
	defer m.Close()
	return fn(m)
}

// MigrateUp applies all pending migrations to the database at path.
// An up-to-date schema is not an error.
func MigrateUp(ctx context.Context, path string) error {
	return withMigrator(ctx, path, func(m *migrate.Migrate) error {
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		return nil
	})
}

// MigrateDown rolls back steps migrations; -1 rolls back everything.
func MigrateDown(ctx context.Context, path string, steps int) error {
	return withMigrator(ctx, path, func(m *migrate.Migrate) error {
		var err error
		if steps == -1 {
			err = m.Down()
		} else {
			err = m.Steps(-steps)
		}
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to roll back migrations: %w", err)
		}
		return nil
	})
}

// MigrationVersion reports the applied schema version and whether the last
// migration stopped partway. Version 0 means nothing has been applied.
func MigrationVersion(ctx context.Context, path string) (version uint, dirty bool, err error) {
	err = withMigrator(ctx, path, func(m *migrate.Migrate) error {
		var verr error
		version, dirty, verr = m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			version, dirty = 0, false
			return nil
		}
		if verr != nil {
			return fmt.Errorf("failed to get migration version: %w", verr)
		}
		return nil
	})
	return version, dirty, err
}
