package db

import (
	"context"
	"embed"

	"lead_intel_backend/platform/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies the embedded read-model schema. It is a no-op when
// migrations are disabled, which is the normal case when the tables are owned
// by the dashboard application.
func RunMigrations(ctx context.Context, cfg config.MigrationConfig, pool *pgxpool.Pool) error {
	if !cfg.GetRunMigrations() {
		return nil
	}

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	return goose.UpContext(ctx, sqlDB, "migrations")
}
