package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/aada-api/internal/bootstrap"
	"github.com/aada-api/internal/config"
	jwtinfra "github.com/aada-api/internal/infrastructure/jwt"
	"github.com/aada-api/internal/infrastructure/metrics"
	"github.com/aada-api/internal/infrastructure/square"
	"github.com/aada-api/internal/pkg/logging"
	transporthttp "github.com/aada-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, reading from environment")
	}
	cfg := config.Load()
	logging.Setup(cfg.AppEnv, cfg.LogLevel)

	if err := run(cfg); err != nil {
		slog.Error("api stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	if err := cfg.Validate(config.RequireDatabase, config.RequireStorage, config.RequireJWT, config.RequireMail, config.RequirePush); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, closeRepos, err := bootstrap.Repositories(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeRepos()

	storage, err := bootstrap.BlobStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("blob store: %w", err)
	}
	if storage.Local != nil {
		defer storage.Local.Close()
	}
	push, err := bootstrap.PushSender(ctx, cfg)
	if err != nil {
		return fmt.Errorf("push sender: %w", err)
	}
	mailer, err := bootstrap.Mailer(cfg)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}
	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("jwt provider: %w", err)
	}

	deps := &transporthttp.Deps{
		Repos:       repos,
		Store:       storage.Store,
		LocalStore:  storage.Local,
		Push:        push,
		Mailer:      mailer,
		JWTProvider: jwtProvider,
		Metrics:     metrics.NewHTTP(),
	}
	if cfg.Validate(config.RequireBilling) == nil {
		deps.Billing = square.NewClient(cfg.Square)
	} else {
		slog.Warn("square not configured, invoice issuing disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(ctx, cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "db", cfg.DBDriver, "storage", cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
