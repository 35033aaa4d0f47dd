package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jurisconnect/console/internal/app"
	"github.com/jurisconnect/console/internal/cep"
	"github.com/jurisconnect/console/internal/config"
	"github.com/jurisconnect/console/internal/directory"
	"github.com/jurisconnect/console/internal/gateway"
	"github.com/jurisconnect/console/internal/http/handler"
	"github.com/jurisconnect/console/internal/http/router"
	"github.com/jurisconnect/console/internal/observability"
	"github.com/jurisconnect/console/internal/repository"
	"github.com/jurisconnect/console/internal/security"
	"github.com/jurisconnect/console/internal/session"
	"github.com/jurisconnect/console/internal/tools/smokecheck"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "console",
		Short:        "JurisConnect legal-practice admin console",
		SilenceUsage: true,
	}
	root.Version = version
	root.AddCommand(newServeCommand())
	root.AddCommand(smokecheck.NewRootCommand())
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the console HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			return a.Run(cmd.Context())
		},
	}
}

func buildApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	runtime, err := observability.InitRuntime(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	db, err := repository.OpenDatabase(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	records := repository.NewSessionRecordRepository(db)

	var volatile session.VolatileTokenStore
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		volatile = session.NewRedisTokenStore(redisClient, "console_session_token", cfg.SessionTTL)
		logger.Info("volatile session tier: redis", "addr", cfg.RedisAddr)
	} else {
		volatile = session.NewMemoryTokenStore()
		logger.Info("volatile session tier: in-memory")
	}

	store := session.NewStore(records, volatile, logger)
	cookies := security.NewCookieManager(cfg.CookieSecret, cfg.CookieTTL, cfg.CookieSecure)

	apiClient := &http.Client{
		Transport: &gateway.Transport{
			Tokens: store,
			OnUnauthorized: func(ctx context.Context, sid string) {
				logger.Warn("session rejected upstream, clearing", "session_id", sid)
				if err := store.Clear(ctx, sid); err != nil {
					logger.Error("forced logout cleanup failed", "error", err)
				}
			},
		},
		Timeout: cfg.APITimeout,
	}
	gw := gateway.New(cfg.APIBaseURL, apiClient, store, logger)

	cepClient := cep.NewClient(cfg.CEPBaseURL, &http.Client{Timeout: cfg.APITimeout})

	mux := router.NewRouter(router.Dependencies{
		AuthHandler:    handler.NewAuthHandler(gw, store, logger),
		ConsoleHandler: handler.NewConsoleHandler(directory.NewService(), cepClient, logger),
		PageHandler:    handler.NewPageHandler(store, logger),
		CookieManager:  cookies,
		Sessions:       store,
		Readiness: func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Ping()
		},
		EnableOTelHTTP: cfg.EnableOTelHTTP,
	})

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	cleanup := func(ctx context.Context) error {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				return err
			}
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return app.New(cfg, logger, server, runtime, cleanup), nil
}
