package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-task-relay/internal/config"
)

// DB is the Postgres pool shared by a service's stores.
type DB struct {
	Pool    *pgxpool.Pool
	service string
}

// New connects the named service ("authority" or "relay") to Postgres. The
// service name is reported to the server as application_name so the two
// processes can be told apart in pg_stat_activity.
func New(ctx context.Context, service string, cfg config.Database) (*DB, error) {
	poolCfg, err := poolConfig(service, cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("%s: create connection pool: %w", service, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: ping database: %w", service, err)
	}

	slog.Info("database connected",
		"service", service,
		"driver", "postgres",
		"host", poolCfg.ConnConfig.Host,
		"database", poolCfg.ConnConfig.Database,
		"max_conns", poolCfg.MaxConns,
		"min_conns", poolCfg.MinConns,
	)
	return &DB{Pool: pool, service: service}, nil
}

func poolConfig(service string, cfg config.Database) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%s: parse DATABASE_URL: %w", service, err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second

	if _, set := poolCfg.ConnConfig.RuntimeParams["application_name"]; !set {
		poolCfg.ConnConfig.RuntimeParams["application_name"] = "go-task-relay-" + service
	}
	return poolCfg, nil
}

func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		slog.Debug("database pool closed", "service", db.service)
	}
}

// Health backs the /health endpoint.
func (db *DB) Health(ctx context.Context) error {
	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("%s database: %w", db.service, err)
	}
	return nil
}
