package app

import (
	"context"
	"fmt"
	"log/slog"

	"go-task-relay/internal/config"
	"go-task-relay/internal/database"
	"go-task-relay/internal/handler"
	"go-task-relay/internal/middleware"
	"go-task-relay/internal/repository"
	"go-task-relay/internal/router"
	"go-task-relay/internal/security/password"
	"go-task-relay/internal/service"
)

type authorityRepositories struct {
	users  service.UserRepository
	tokens service.TokenRepository
	tasks  service.TaskRepository
}

func NewAuthority(ctx context.Context, cfg *config.Authority) (*App, error) {
	var (
		repos    authorityRepositories
		health   router.HealthCheck
		cleanups []func()
	)

	switch cfg.Store {
	case config.StoreMemory:
		slog.Warn("authority store is in memory; accounts and tasks are lost on restart")
		mem := repository.NewMemory()
		repos = authorityRepositories{users: mem.Users(), tokens: mem.Tokens(), tasks: mem.Tasks()}

	default:
		slog.Info("connecting to PostgreSQL")
		db, err := database.New(ctx, "authority", cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ensure database schema: %w", err)
		}
		repos = authorityRepositories{
			users:  repository.NewUserRepository(db.Pool),
			tokens: repository.NewTokenRepository(db.Pool),
			tasks:  repository.NewTaskRepository(db.Pool),
		}
		health = db.Health
		cleanups = append(cleanups, db.Close)
		slog.Info("database ready")
	}

	hasher := password.NewArgon2id(password.Argon2idParams{
		MemoryKiB:   cfg.Argon2Memory,
		Iterations:  cfg.Argon2Iterations,
		Parallelism: cfg.Argon2Parallelism,
	})

	authService := service.NewAuthService(repos.users, repos.tokens, hasher, cfg.TokenSecret)
	taskService := service.NewTaskService(repos.tasks)

	routes := router.NewAuthority(cfg.Server, middleware.NewAuthMiddleware(authService), router.AuthorityHandlers{
		Auth: handler.NewAuthHandler(authService),
		Task: handler.NewTaskHandler(taskService),
	}, health)

	return newApp("authority", cfg.Server, routes, cleanups), nil
}
