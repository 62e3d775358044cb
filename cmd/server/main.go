package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/teamchat/internal/api"
	"github.com/lalith-99/teamchat/internal/config"
	"github.com/lalith-99/teamchat/internal/db"
	"github.com/lalith-99/teamchat/internal/middleware"
	"github.com/lalith-99/teamchat/internal/observ"
	"github.com/lalith-99/teamchat/internal/repository"
	"github.com/lalith-99/teamchat/internal/repository/memory"
	"github.com/lalith-99/teamchat/internal/repository/postgres"
	"github.com/lalith-99/teamchat/internal/session"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// ---------------------------------------------------------------
	// 1. Config and logger
	// ---------------------------------------------------------------
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// ctx is cancelled on SIGINT/SIGTERM and drives shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---------------------------------------------------------------
	// 2. Storage
	//
	// Postgres by default. Migrations run on every start; applied files
	// are recorded in schema_migrations and skipped.
	// ---------------------------------------------------------------
	var (
		store  repository.Store
		health api.Pinger
	)
	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		store = memory.New()
	default:
		database, err := db.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer database.Close()

		if err := database.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		store = postgres.NewStore(database.Pool())
		health = database
	}

	// ---------------------------------------------------------------
	// 3. Token revocation
	//
	// Without Redis, logout still answers 204 but the token stays valid
	// until it expires.
	// ---------------------------------------------------------------
	var sessions middleware.RevocationStore
	if cfg.RedisURL != "" {
		rs, err := session.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer func() { _ = rs.Close() }()
		sessions = rs
	} else {
		logger.Warn("REDIS_URL is empty, logout will not revoke tokens")
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(ctx)

	// ---------------------------------------------------------------
	// 4. HTTP server
	// ---------------------------------------------------------------
	router, err := api.NewRouter(api.RouterConfig{
		Store:       store,
		Logger:      logger,
		JWTSecret:   cfg.JWTSecret,
		TokenTTL:    cfg.TokenTTL,
		Sessions:    sessions,
		RateLimiter: limiter,
		Health:      health,
	})
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting teamchat",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.Env),
			zap.String("storage", cfg.Storage),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
