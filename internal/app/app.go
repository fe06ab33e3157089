package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go-task-relay/internal/config"
)

const shutdownTimeout = 10 * time.Second

// App is one HTTP service process: a server plus the resources it owns.
type App struct {
	name         string
	server       *http.Server
	cleanupFuncs []func()
}

func newApp(name string, cfg config.Server, handler http.Handler, cleanups []func()) *App {
	return &App{
		name: name,
		server: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
		cleanupFuncs: cleanups,
	}
}

// Handler exposes the routed handler, mainly for in-process tests.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves until SIGINT/SIGTERM and then shuts down gracefully.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.Serve(ctx)
}

// Serve serves until ctx is cancelled or the listener fails.
func (a *App) Serve(ctx context.Context) error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "service", a.name, "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		a.Close()
		if ok {
			return fmt.Errorf("%s server failed: %w", a.name, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownErr := a.server.Shutdown(shutdownCtx)
	a.Close()
	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped", "service", a.name)
	return nil
}

// Close releases owned resources in reverse acquisition order.
func (a *App) Close() {
	for i := len(a.cleanupFuncs) - 1; i >= 0; i-- {
		a.cleanupFuncs[i]()
	}
	a.cleanupFuncs = nil
}
