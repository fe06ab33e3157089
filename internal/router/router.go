package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"go-task-relay/internal/config"
	"go-task-relay/internal/handler"
	"go-task-relay/internal/middleware"
)

// HealthCheck reports whether a backing store is usable. Nil means the
// service has nothing to check.
type HealthCheck func(ctx context.Context) error

type RelayOptions struct {
	// Metrics serves /metrics when non-nil.
	Metrics     http.Handler
	RequestDump bool
	Health      HealthCheck
}

// NewRelay routes the client-facing relay: POST /api/register and
// POST /api/login.
func NewRelay(cfg config.Server, relayHandler *handler.RelayHandler, opts RelayOptions) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(
		cfg.RateLimitRPM, cfg.AuthRateLimit, []string{"/api/login", "/api/register"}, middleware.ErrorField)

	r.Use(middleware.Recovery(middleware.ErrorField))
	r.Use(middleware.Logging)
	if opts.RequestDump {
		r.Use(middleware.RequestDump)
	}
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.Get("/health", healthHandler(opts.Health))
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(rateLimitMiddleware.Handler)
		api.Use(middleware.Timeout(cfg.RequestTimeout, middleware.RelayTimeoutBody))

		api.Post("/register", relayHandler.Register)
		api.Post("/login", relayHandler.Login)
	})

	return r
}

type AuthorityHandlers struct {
	Auth *handler.AuthHandler
	Task *handler.TaskHandler
}

// NewAuthority routes the identity authority and the task-record service.
func NewAuthority(cfg config.Server, authMiddleware *middleware.AuthMiddleware, h AuthorityHandlers, health HealthCheck) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(
		cfg.RateLimitRPM, cfg.AuthRateLimit, []string{"/api/login/", "/api/register/"}, middleware.DetailField)

	r.Use(middleware.Recovery(middleware.DetailField))
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.Get("/health", healthHandler(health))

	r.Route("/api", func(api chi.Router) {
		api.Use(rateLimitMiddleware.Handler)
		api.Use(middleware.Timeout(cfg.RequestTimeout, middleware.AuthorityTimeoutBody))

		api.Post("/register/", h.Auth.Register)
		api.Post("/login/", h.Auth.Login)

		api.Route("/tasks", func(tasks chi.Router) {
			tasks.Use(authMiddleware.RequireAuth)

			tasks.Get("/", h.Task.List)
			tasks.Post("/", h.Task.Create)
			tasks.Get("/export/", h.Task.Export)
			tasks.Get("/{id}/", h.Task.Get)
			tasks.Put("/{id}/", h.Task.Update)
			tasks.Patch("/{id}/", h.Task.Update)
			tasks.Delete("/{id}/", h.Task.Delete)
		})
	})

	return r
}

func healthHandler(check HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("unavailable"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
