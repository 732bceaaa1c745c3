// Command api runs the user management HTTP service.
//
// @title                       User Management API
// @version                     1.0
// @description                 Registration, session tokens and admin user management.
// @BasePath                    /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
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

	"github.com/joho/godotenv"

	_ "github.com/usermanagement/user-api/docs"
	"github.com/usermanagement/user-api/internal/api"
	"github.com/usermanagement/user-api/internal/api/handler"
	"github.com/usermanagement/user-api/internal/core/ports"
	"github.com/usermanagement/user-api/internal/core/service"
	mongodb "github.com/usermanagement/user-api/internal/infrastructure/db/mongo"
	redisdb "github.com/usermanagement/user-api/internal/infrastructure/db/redis"
	"github.com/usermanagement/user-api/internal/infrastructure/revocation"
	"github.com/usermanagement/user-api/internal/infrastructure/security"
	"github.com/usermanagement/user-api/internal/pkg/config"
	"github.com/usermanagement/user-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "user-api",
	})

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
	log.Info().Msg("server stopped")
}

// run wires the service and blocks until a shutdown signal arrives or the
// listener fails. Every connection opened here is closed before it returns.
func run(cfg *config.Config) error {
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Persistence ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return fmt.Errorf("connect to mongodb: %w", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect")
		}
	}()

	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	users := mongodb.NewUserRepository(db, hasher)
	if err := users.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	checks := map[string]handler.DependencyCheck{
		"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
	}

	// --- Sessions ---
	tokens, err := security.NewJWTService(cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("token configuration: %w", err)
	}

	var revocations ports.RevocationRegistry
	switch cfg.Revocation.Backend {
	case config.BackendRedis:
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Error().Err(err).Msg("redis close")
			}
		}()
		revocations = redisdb.NewRevocationRegistry(rdb)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	default:
		mem := revocation.NewMemoryRegistry(logger.Component("revocation"))
		mem.StartSweeper(ctx, cfg.Revocation.SweepInterval)
		revocations = mem
	}
	log.Info().
		Str("backend", cfg.Revocation.Backend).
		Dur("sweep_interval", cfg.Revocation.SweepInterval).
		Msg("revocation registry ready")

	// --- HTTP ---
	router := api.NewRouter(api.Deps{
		AuthService: service.NewAuthService(users, hasher, tokens, revocations, logger.Component("auth")),
		UserService: service.NewUserService(users, logger.Component("users")),
		Tokens:      tokens,
		Revocations: revocations,
		Checks:      checks,
		Logger:      logger.Component("http"),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	return nil
}
