package migrations

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/uptrace/bun"

	"nudem-backend/internal/database"
	"nudem-backend/internal/models"
)

// MigrateOptions defines configuration options for migration.
type MigrateOptions struct {
	// MigrationsDir is the directory containing SQL migration files, used in
	// postgres mode.
	MigrationsDir string
	// AutoMigrate determines whether to run migrations automatically on startup.
	AutoMigrate bool
}

func DefaultOptions() MigrateOptions {
	return MigrateOptions{
		MigrationsDir: "./migrations",
		AutoMigrate:   true,
	}
}

// Runner handles database schema setup. Against postgres it runs the SQL
// migrations with golang-migrate; against SQLite (development and tests) it
// creates the tables directly from the bun models.
type Runner struct {
	bunDB   *bun.DB
	options MigrateOptions
}

func NewRunner(bunDB *bun.DB, opts MigrateOptions) *Runner {
	return &Runner{bunDB: bunDB, options: opts}
}

func (r *Runner) Run(ctx context.Context) error {
	if !r.options.AutoMigrate {
		return nil
	}
	if database.IsPostgres(r.bunDB) {
		return r.runPostgres()
	}
	return r.createTables(ctx)
}

func (r *Runner) runPostgres() error {
	if _, err := os.Stat(r.options.MigrationsDir); err != nil {
		return fmt.Errorf("migrations directory %s not found: %w", r.options.MigrationsDir, err)
	}

	driver, err := postgres.WithInstance(r.bunDB.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+r.options.MigrationsDir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to initialize migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

func (r *Runner) createTables(ctx context.Context) error {
	tables := []interface{}{
		(*models.User)(nil),
		(*models.Booking)(nil),
	}
	for _, model := range tables {
		if _, err := r.bunDB.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", model, err)
		}
	}
	return nil
}
