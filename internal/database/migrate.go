package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations
var migrationsFS embed.FS

// MigrationSet names a directory of goose migrations embedded in the binary.
type MigrationSet string

const (
	SetPostgres     MigrationSet = "migrations/postgres"
	SetRelaySQLite  MigrationSet = "migrations/sqlite/relay"
	SetClientSQLite MigrationSet = "migrations/sqlite/client"
)

func (s MigrationSet) dialect() goose.Dialect {
	if s == SetPostgres {
		return goose.DialectPostgres
	}
	return goose.DialectSQLite3
}

// EnsureSchema brings the PostgreSQL schema up to date.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if db == nil || db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	// The *sql.DB only borrows connections from the pool.
	return Migrate(ctx, stdlib.OpenDBFromPool(db.Pool), SetPostgres)
}

func Migrate(ctx context.Context, sqlDB *sql.DB, set MigrationSet) error {
	fsys, err := fs.Sub(migrationsFS, string(set))
	if err != nil {
		return fmt.Errorf("open migration set %s: %w", set, err)
	}

	provider, err := goose.NewProvider(set.dialect(), sqlDB, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations %s: %w", set, err)
	}

	for _, result := range results {
		slog.Info("migration applied", "set", string(set), "version", result.Source.Version, "duration", result.Duration)
	}
	return nil
}
