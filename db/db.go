package db

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/satheeshds/contactbook/config"
)

// MemoryDSN opens a private in-memory SQLite database.
const MemoryDSN = ":memory:"

// driverName maps a configured backend to its database/sql driver.
func driverName(backend string) (string, error) {
	switch backend {
	case config.DriverSQLite:
		return "sqlite", nil
	case config.DriverPostgres:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", backend)
	}
}

// Open connects to the configured database and verifies the connection.
// SQLite databases run in WAL mode with foreign keys on; the directory of a
// file-backed database is created if needed.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	name, err := driverName(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn := cfg.DSN
	if cfg.Driver == config.DriverSQLite {
		if dsn != MemoryDSN {
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return nil, fmt.Errorf("creating db directory: %w", err)
			}
		}
		dsn = sqliteDSN(dsn)
	}

	db, err := sqlx.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if cfg.DSN == MemoryDSN {
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	slog.Info("database connected", "driver", cfg.Driver, "path", redact(cfg))
	return db, nil
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)"
}

// redact keeps credentials in a postgres URL out of the logs.
func redact(cfg config.DatabaseConfig) string {
	if cfg.Driver != config.DriverPostgres {
		return cfg.DSN
	}
	at := strings.LastIndex(cfg.DSN, "@")
	scheme := strings.Index(cfg.DSN, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return cfg.DSN
	}
	return cfg.DSN[:scheme+3] + "***" + cfg.DSN[at:]
}
