package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var MigrationsFS embed.FS

// RunMigrations applies the embedded schema for driver (DriverPostgres or
// DriverSQLite) to the database at dsn.
func RunMigrations(driver, dsn string) error {
	slog.Info("Running store migrations", "driver", driver)

	sourceInstance, err := iofs.New(MigrationsFS, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("failed to create iofs source driver: %w", err)
	}
	defer func() {
		if cerr := sourceInstance.Close(); cerr != nil {
			slog.Warn("Error closing migration source", "error", cerr)
		}
	}()

	sqlDriver := "postgres"
	if driver == DriverSQLite {
		sqlDriver = "sqlite3"
	}
	migrateDB, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection for migration: %w", err)
	}
	if err = migrateDB.Ping(); err != nil {
		_ = migrateDB.Close()
		return fmt.Errorf("failed to ping database for migration: %w", err)
	}

	var dbDriver database.Driver
	switch driver {
	case DriverPostgres:
		dbDriver, err = postgres.WithInstance(migrateDB, &postgres.Config{
			MigrationsTable: postgres.DefaultMigrationsTable,
		})
	case DriverSQLite:
		dbDriver, err = sqlite3.WithInstance(migrateDB, &sqlite3.Config{
			MigrationsTable: sqlite3.DefaultMigrationsTable,
		})
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
	if err != nil {
		_ = migrateDB.Close()
		return fmt.Errorf("could not create %s driver instance: %w", driver, err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceInstance, driver, dbDriver)
	if err != nil {
		_ = dbDriver.Close()
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	m.Log = &migrateLogAdapter{}

	err = m.Up()
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		slog.Warn("Error closing migration source", "error", srcErr)
	}
	if dbErr != nil {
		slog.Warn("Error closing migration database connection", "error", dbErr)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		slog.Debug("No store schema changes to apply")
	} else {
		slog.Info("Store migrations completed")
	}
	return nil
}

type migrateLogAdapter struct{}

func (l *migrateLogAdapter) Printf(format string, v ...any) {
	slog.Debug(fmt.Sprintf(format, v...))
}

func (l *migrateLogAdapter) Verbose() bool {
	return false
}
