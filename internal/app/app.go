package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jurisconnect/console/internal/config"
	"github.com/jurisconnect/console/internal/observability"

	"golang.org/x/sync/errgroup"
)

const shutdownGrace = 10 * time.Second

// App holds the wired console process: the HTTP server plus the
// runtime pieces that need an orderly shutdown.
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Server        *http.Server
	Observability *observability.Runtime
	Cleanup       func(context.Context) error
}

func New(cfg *config.Config, logger *slog.Logger, server *http.Server, runtime *observability.Runtime, cleanup func(context.Context) error) *App {
	return &App{Config: cfg, Logger: logger, Server: server, Observability: runtime, Cleanup: cleanup}
}

// Run serves until ctx is cancelled or the process receives SIGINT or
// SIGTERM, then drains in-flight requests and flushes observability
// within shutdownGrace.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info("console listening", "addr", a.Server.Addr, "environment", a.Config.Environment)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		a.Logger.Info("console shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()

		var errs []error
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		if a.Cleanup != nil {
			if err := a.Cleanup(shutdownCtx); err != nil {
				errs = append(errs, err)
			}
		}
		if err := a.Observability.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
