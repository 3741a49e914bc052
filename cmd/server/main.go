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

	"github.com/HammerMeetNail/readshelf/internal/config"
	"github.com/HammerMeetNail/readshelf/internal/database"
	"github.com/HammerMeetNail/readshelf/internal/handlers"
	"github.com/HammerMeetNail/readshelf/internal/logging"
	"github.com/HammerMeetNail/readshelf/internal/middleware"
	"github.com/HammerMeetNail/readshelf/internal/services"
)

func main() {
	if err := run(); err != nil {
		logging.Error("Application error", logging.Fields{"error": err})
		os.Exit(1)
	}
}

func run() error {
	logger := logging.New()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if cfg.Server.Debug {
		logger.SetLevel(logging.LevelDebug)
		logging.SetDefaultLevel(logging.LevelDebug)
		logger.Debug("Debug logging enabled", logging.Fields{"env": cfg.Server.Environment})
	}

	logger.Info("Starting readshelf server...")

	logger.Info("Connecting to PostgreSQL", logging.Fields{
		"host": cfg.Database.Host,
		"port": cfg.Database.Port,
	})
	db, err := database.NewPostgresDB(cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	migrator, err := database.NewMigrator(cfg.Database.DSN(), "migrations")
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return fmt.Errorf("running migrations: %w", err)
	}
	if version, dirty, err := migrator.Version(); err == nil {
		logger.Info("Migrations completed", logging.Fields{"version": version, "dirty": dirty})
	}
	_ = migrator.Close()

	logger.Info("Connecting to Redis", logging.Fields{"addr": cfg.Redis.Addr()})
	redisDB, err := database.NewRedisDB(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisDB.Close() }()

	dbAdapter := services.NewPoolAdapter(db.Pool)

	tokenService, err := services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	userService := services.NewUserService(dbAdapter)
	authService := services.NewAuthService(cfg.Auth.BcryptCost)
	invitationService := services.NewInvitationService(dbAdapter, cfg.Invitation.TTL)
	friendService := services.NewFriendService(dbAdapter)

	handler := newRouter(routerDeps{
		health:      handlers.NewHealthHandler(db, redisDB),
		auth:        handlers.NewAuthHandler(userService, authService, tokenService),
		invitations: handlers.NewInvitationHandler(invitationService, cfg.Invitation.BaseURL),
		friends:     handlers.NewFriendHandler(friendService),
		authMW:      middleware.NewAuthMiddleware(tokenService),
		authLimiter: middleware.NewAuthRateLimiter(redisDB.Client, cfg.Auth.RateLimit),
		security:    middleware.NewSecurityHeaders(cfg.Server.Secure),
		logger:      middleware.NewRequestLogger(logger),
		compress:    middleware.NewCompress(),
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Could not gracefully shutdown the server", logging.Fields{"error": err})
		}
		close(done)
	}()

	logger.Info("Server listening", logging.Fields{"addr": addr, "env": cfg.Server.Environment})
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("Server stopped")
	return nil
}
