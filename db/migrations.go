package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"github.com/satheeshds/contactbook/config"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// Migrate applies pending schema migrations for the given backend. Safe to
// call on every start; applied versions are tracked by goose.
func Migrate(ctx context.Context, db *sqlx.DB, backend string) error {
	slog.Info("running database migrations", "driver", backend)

	var (
		dialect goose.Dialect
		dir     string
	)
	switch backend {
	case config.DriverSQLite:
		dialect, dir = goose.DialectSQLite3, "migrations/sqlite"
	case config.DriverPostgres:
		dialect, dir = goose.DialectPostgres, "migrations/postgres"
	default:
		return fmt.Errorf("unsupported database driver %q", backend)
	}

	fsys, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	provider, err := goose.NewProvider(dialect, db.DB, fsys)
	if err != nil {
		return fmt.Errorf("creating migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	for _, r := range results {
		slog.Debug("applied migration", "source", r.Source.Path, "duration", r.Duration)
	}

	slog.Info("database migrations complete", "applied", len(results))
	return nil
}
