package provision

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/vvka-141/pgetl/pkg/pgetl"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationsTable records the applied schema version in the target database.
const MigrationsTable = "pgetl_schema_migrations"

// Schema applies and removes the embedded migrations.
type Schema struct {
	logger pgetl.Logger
}

func NewSchema(logger pgetl.Logger) *Schema {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Schema{logger: logger}
}

// Apply creates any missing tables. Already-applied migrations are a no-op.
func (s *Schema) Apply(ctx context.Context, pool *pgxpool.Pool) error {
	return s.run(ctx, pool, "apply", func(m *migrate.Migrate) error { return m.Up() })
}

// Drop removes the tables by running every down migration.
func (s *Schema) Drop(ctx context.Context, pool *pgxpool.Pool) error {
	return s.run(ctx, pool, "drop", func(m *migrate.Migrate) error { return m.Down() })
}

// Version returns the applied schema version, or 0 when nothing is applied.
func (s *Schema) Version(ctx context.Context, pool *pgxpool.Pool) (uint, bool, error) {
	var version uint
	var dirty bool
	err := s.run(ctx, pool, "version", func(m *migrate.Migrate) error {
		v, d, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		version, dirty = v, d
		return err
	})
	return version, dirty, err
}

func (s *Schema) run(ctx context.Context, pool *pgxpool.Pool, action string, step func(*migrate.Migrate) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("%w: open embedded migrations: %w", pgetl.ErrProvisionFailed, err)
	}

	// Closing the migrator closes this *sql.DB but leaves the pool open.
	sqlDB := stdlib.OpenDBFromPool(pool)
	driver, err := migratepgx.WithInstance(sqlDB, &migratepgx.Config{MigrationsTable: MigrationsTable})
	if err != nil {
		sqlDB.Close()
		return fmt.Errorf("%w: create migration driver: %w", pgetl.ErrProvisionFailed, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		driver.Close()
		return fmt.Errorf("%w: create migrator: %w", pgetl.ErrProvisionFailed, err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			s.logger.Verbose("Failed to close migration source: %v", srcErr)
		}
		if dbErr != nil {
			s.logger.Verbose("Failed to close migration database: %v", dbErr)
		}
	}()

	err = step(m)
	if errors.Is(err, migrate.ErrNoChange) {
		s.logger.Verbose("Schema %s: no change", action)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %s schema: %w", pgetl.ErrProvisionFailed, action, err)
	}
	s.logger.Verbose("Schema %s: done", action)
	return nil
}
