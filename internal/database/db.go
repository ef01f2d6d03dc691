package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// DB wraps the PostgreSQL connection pool
type DB struct {
	Pool *pgxpool.Pool
}

// Config holds database configuration
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// NewDB creates a new database connection
func NewDB(cfg Config) (*DB, error) {
	// Build connection string
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	// Parse connection string
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	// Configure connection pool
	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	// Create connection pool
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	log.Info().Str("database", cfg.Database).Msg("Connected to PostgreSQL")

	return &DB{Pool: pool}, nil
}

// Close closes the database connection
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		log.Info().Msg("Database connection closed")
	}
}

// RunMigrations executes database migrations
func (db *DB) RunMigrations(ctx context.Context) error {
	log.Info().Msg("Running database migrations...")

	migrations := []string{
		// Subscription plans catalog
		`CREATE TABLE IF NOT EXISTS subscription_plans (
			id SERIAL PRIMARY KEY,
			name VARCHAR(50) NOT NULL UNIQUE,
			currency VARCHAR(3) NOT NULL DEFAULT 'BRL',
			price_monthly DECIMAL(12, 2) NOT NULL,
			price_annual DECIMAL(12, 2) NOT NULL,
			annual_discount_percent DECIMAL(5, 4) NOT NULL DEFAULT 0,
			strategy_limit INTEGER NOT NULL,
			realtime_data BOOLEAN NOT NULL DEFAULT FALSE,
			advanced_alerts BOOLEAN NOT NULL DEFAULT FALSE,
			consulting_tools BOOLEAN NOT NULL DEFAULT FALSE,
			community_access BOOLEAN NOT NULL DEFAULT FALSE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_subscription_plans_active ON subscription_plans(is_active)`,

		// User accounts. The plan override and custom fees are flattened
		// into nullable columns so resolution needs a single row read.
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(100) NOT NULL,
			full_name VARCHAR(255) NOT NULL,
			display_name VARCHAR(30) NOT NULL,
			phone_country_code VARCHAR(5),
			phone_number VARCHAR(15),
			is_phone_verified BOOLEAN NOT NULL DEFAULT FALSE,
			phone_verified_at TIMESTAMPTZ,
			role VARCHAR(20) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'active',
			risk_profile VARCHAR(20),
			subscription_plan_id INTEGER REFERENCES subscription_plans(id),
			billing_period VARCHAR(10),
			override_strategy_limit INTEGER,
			override_features JSONB,
			override_reason VARCHAR(500),
			override_granted_by UUID,
			override_granted_at TIMESTAMPTZ,
			override_expires_at TIMESTAMPTZ,
			custom_broker_commission_rate DECIMAL(10, 6),
			custom_b3_emolument_rate DECIMAL(10, 6),
			custom_settlement_fee_rate DECIMAL(10, 6),
			custom_income_tax_rate DECIMAL(10, 6),
			custom_day_trade_income_tax_rate DECIMAL(10, 6),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_login_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)`,
		`CREATE INDEX IF NOT EXISTS idx_users_status ON users(status)`,
		`CREATE INDEX IF NOT EXISTS idx_users_plan ON users(subscription_plan_id)`,

		// Platform-wide configuration singleton (always row 1)
		`CREATE TABLE IF NOT EXISTS system_config (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			broker_commission_rate DECIMAL(10, 6),
			b3_emolument_rate DECIMAL(10, 6),
			settlement_fee_rate DECIMAL(10, 6),
			income_tax_rate DECIMAL(10, 6),
			day_trade_income_tax_rate DECIMAL(10, 6),
			max_open_strategies_per_user INTEGER NOT NULL,
			max_strategies_in_template INTEGER NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_by UUID NOT NULL
		)`,
	}

	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Info().Msg("Database migrations completed successfully")
	return nil
}
