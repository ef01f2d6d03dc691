package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"mytrader-platform/config"
	"mytrader-platform/internal/api"
	"mytrader-platform/internal/auth"
	"mytrader-platform/internal/cache"
	"mytrader-platform/internal/database"
	"mytrader-platform/internal/entitlement"
	"mytrader-platform/internal/vault"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogging(cfg.LoggingConfig)
	log.Info().Msg("Configuration loaded")

	ctx := context.Background()

	// Vault overrides file/env secrets when enabled
	vaultClient, err := vault.NewClient(cfg.VaultConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create vault client")
	}
	if vaultClient.IsEnabled() {
		secrets, err := vaultClient.GetPlatformSecrets(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read platform secrets from vault")
		}
		if secrets.JWTSecret != "" {
			cfg.AuthConfig.JWTSecret = secrets.JWTSecret
		}
		if secrets.DBPassword != "" {
			cfg.DatabaseConfig.Password = secrets.DBPassword
		}
		log.Info().Msg("Platform secrets loaded from vault")
	}

	// Initialize database
	db, err := database.NewDB(database.Config{
		Host:     cfg.DatabaseConfig.Host,
		Port:     cfg.DatabaseConfig.Port,
		User:     cfg.DatabaseConfig.User,
		Password: cfg.DatabaseConfig.Password,
		Database: cfg.DatabaseConfig.Database,
		SSLMode:  cfg.DatabaseConfig.SSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.RunMigrations(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	repo := database.NewRepository(db)

	// Redis cache (optional, the platform degrades to database reads)
	var cacheService *cache.CacheService
	var sessions auth.SessionStore
	if cfg.RedisConfig.Enabled {
		cacheService, err = cache.NewCacheService(cfg.RedisConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create cache service")
		}
		defer cacheService.Close()
		sessions = cache.NewSessionStore(cacheService)
	} else {
		log.Warn().Msg("Redis disabled, refresh sessions are in-memory only")
		sessions = cache.NewMemorySessionStore()
	}

	// Authentication service
	authService := auth.NewService(repo, sessions, auth.Config{
		JWTSecret:            cfg.AuthConfig.JWTSecret,
		AccessTokenDuration:  cfg.AuthConfig.AccessTokenDuration,
		RefreshTokenDuration: cfg.AuthConfig.RefreshTokenDuration,
		MinPasswordLength:    cfg.AuthConfig.MinPasswordLength,
		BcryptCost:           cfg.AuthConfig.BcryptCost,
	})

	// Bootstrap administrator (no-op when ADMIN_PASSWORD is unset)
	if _, err := auth.SeedAdminUser(ctx, db); err != nil {
		log.Warn().Err(err).Msg("Admin seeding failed")
	}

	// Entitlement resolver
	var entitlementCache entitlement.Cache
	if cacheService != nil {
		entitlementCache = cacheService
	}
	entitlements := entitlement.NewService(repo, entitlementCache)

	// HTTP server
	server := api.NewServer(api.ServerConfig{
		Port:           cfg.ServerConfig.Port,
		Host:           cfg.ServerConfig.Host,
		AllowedOrigins: cfg.ServerConfig.AllowedOrigins,
		ProductionMode: os.Getenv("APP_ENV") == "production",
	}, repo, authService, entitlements, cacheService, vaultClient)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.ServerConfig.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Server stopped")
}

// setupLogging configures the global zerolog logger.
func setupLogging(cfg config.LoggingConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var out *os.File
	switch cfg.Output {
	case "", "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	default:
		f, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			out = os.Stdout
		} else {
			out = f
		}
	}

	if cfg.JSONFormat {
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: out}).With().Timestamp().Logger()
	}
}
