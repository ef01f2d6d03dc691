package auth

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"mytrader-platform/internal/database"
	"mytrader-platform/internal/domain"
)

const (
	// DefaultAdminEmail is used when ADMIN_EMAIL is not set
	DefaultAdminEmail = "admin@mytrader.local"
	// AdminBcryptCost is the bcrypt cost for the seeded admin password
	AdminBcryptCost = 12
)

// SeedAdminUser ensures an administrator account exists so the platform
// can be configured after a fresh deploy. The password comes from
// ADMIN_PASSWORD; without it no account is created.
func SeedAdminUser(ctx context.Context, db *database.DB) (*domain.User, error) {
	repo := database.NewRepository(db)

	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = DefaultAdminEmail
	}

	existing, err := repo.GetUserByEmail(ctx, adminEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to check for admin user: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		log.Warn().Msg("ADMIN_PASSWORD not set, skipping admin seeding")
		return nil, nil
	}

	log.Info().Str("email", adminEmail).Msg("Admin user not found, creating")

	hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), AdminBcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	email, err := domain.NewEmail(adminEmail)
	if err != nil {
		return nil, fmt.Errorf("invalid admin email: %w", err)
	}
	passwordHash, err := domain.NewPasswordHash(string(hashed))
	if err != nil {
		return nil, fmt.Errorf("failed to wrap admin password hash: %w", err)
	}

	admin, err := domain.RegisterAdministrator(email, passwordHash, "Platform Administrator", "admin")
	if err != nil {
		return nil, fmt.Errorf("failed to build admin user: %w", err)
	}

	if err := repo.CreateUser(ctx, admin); err != nil {
		return nil, fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Info().Str("user_id", admin.ID().String()).Msg("Admin user created")
	return admin, nil
}
