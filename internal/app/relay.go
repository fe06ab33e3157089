package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"go-task-relay/internal/config"
	"go-task-relay/internal/credstore"
	"go-task-relay/internal/database"
	"go-task-relay/internal/handler"
	"go-task-relay/internal/metrics"
	"go-task-relay/internal/relay"
	"go-task-relay/internal/router"
	"go-task-relay/internal/security/password"
	"go-task-relay/internal/upstream"
)

func NewRelay(ctx context.Context, cfg *config.Relay) (*App, error) {
	policy, err := relay.ParsePolicy(cfg.RegistrationPolicy)
	if err != nil {
		return nil, err
	}

	store, health, cleanups, err := openCredentialStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	collectors := metrics.NewRelay()
	authority := upstream.New(cfg.AuthorityURL, cfg.UpstreamTimeout, upstream.WithObserver(collectors))
	relayService := relay.NewService(store, authority, password.NewBcrypt(cfg.BcryptCost), policy, collectors)
	relayHandler := handler.NewRelayHandler(relayService)

	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		metricsHandler = collectors.Handler()
	}

	routes := router.NewRelay(cfg.Server, relayHandler, router.RelayOptions{
		Metrics:     metricsHandler,
		RequestDump: cfg.RequestDump,
		Health:      health,
	})

	slog.Info("relay configured",
		"authority_url", cfg.AuthorityURL,
		"upstream_timeout", cfg.UpstreamTimeout.String(),
		"credential_store", cfg.CredentialStore,
		"registration_policy", string(policy),
		"metrics", cfg.MetricsEnabled,
	)

	return newApp("relay", cfg.Server, routes, cleanups), nil
}

func openCredentialStore(ctx context.Context, cfg *config.Relay) (credstore.Store, router.HealthCheck, []func(), error) {
	switch cfg.CredentialStore {
	case config.StoreMemory:
		slog.Warn("relay credential store is in memory; registrations are lost on restart")
		return credstore.NewMemoryStore(), nil, nil, nil

	case config.StorePostgres:
		db, err := database.New(ctx, "relay", cfg.Database)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("failed to ensure database schema: %w", err)
		}
		return credstore.NewPostgresStore(db.Pool), db.Health, []func(){db.Close}, nil

	default:
		sqlDB, err := database.OpenSQLite(ctx, cfg.SQLitePath, database.SetRelaySQLite)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open credential store: %w", err)
		}
		store := credstore.NewSQLiteStore(sqlDB)
		closeStore := func() {
			if err := store.Close(); err != nil {
				slog.Warn("closing credential store failed", "error", err)
			}
		}
		return store, sqlDB.PingContext, []func(){closeStore}, nil
	}
}
