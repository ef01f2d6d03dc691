package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"mytrader-platform/internal/database"
	"mytrader-platform/internal/domain"
)

// SessionStore persists refresh token sessions (Redis in production). The
// token is stored hashed; see HashRefreshToken.
type SessionStore interface {
	StoreSession(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error
	// GetSession returns uuid.Nil with a nil error when the session does
	// not exist or has expired.
	GetSession(ctx context.Context, tokenHash string) (uuid.UUID, error)
	DeleteSession(ctx context.Context, tokenHash string) error
}

// Service handles authentication operations
type Service struct {
	repo            *database.Repository
	sessions        SessionStore
	jwtManager      *JWTManager
	passwordManager *PasswordManager
	config          Config
}

// NewService creates a new authentication service
func NewService(repo *database.Repository, sessions SessionStore, config Config) *Service {
	if config.JWTSecret == "" {
		log.Fatal().Msg("JWT secret is required")
	}

	if config.AccessTokenDuration == 0 {
		config.AccessTokenDuration = 15 * time.Minute
	}
	if config.RefreshTokenDuration == 0 {
		config.RefreshTokenDuration = 7 * 24 * time.Hour
	}

	return &Service{
		repo:            repo,
		sessions:        sessions,
		jwtManager:      NewJWTManager(config.JWTSecret, config.AccessTokenDuration, config.RefreshTokenDuration),
		passwordManager: NewPasswordManager(config.BcryptCost, config.MinPasswordLength),
		config:          config,
	}
}

// GetJWTManager returns the JWT manager for use in middleware
func (s *Service) GetJWTManager() *JWTManager {
	return s.jwtManager
}

// Register creates a new Trader account on the requested subscription plan
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	email, err := domain.NewEmail(req.Email)
	if err != nil {
		return nil, err
	}
	riskProfile, err := domain.ParseRiskProfile(req.RiskProfile)
	if err != nil {
		return nil, err
	}
	billing, err := domain.ParseBillingPeriod(req.BillingPeriod)
	if err != nil {
		return nil, err
	}

	// Check if email exists
	existing, err := s.repo.GetUserByEmail(ctx, email.Value())
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	// Only active plans accept signups
	plan, err := s.repo.GetPlanByID(ctx, req.SubscriptionPlanID)
	if err != nil {
		return nil, fmt.Errorf("failed to check plan: %w", err)
	}
	if plan == nil || !plan.IsActive() {
		return nil, AuthError{Code: "PLAN_UNAVAILABLE", Message: "subscription plan not available"}
	}

	// Validate password strength
	if err := s.passwordManager.ValidatePasswordStrength(req.Password); err != nil {
		return nil, AuthError{Code: ErrWeakPassword.Code, Message: err.Error()}
	}

	// Hash password
	rawHash, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	passwordHash, err := domain.NewPasswordHash(rawHash)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap password hash: %w", err)
	}

	user, err := domain.RegisterTrader(email, passwordHash, req.FullName, req.DisplayName,
		riskProfile, plan.ID(), billing)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().Str("user_id", user.ID().String()).Str("plan", plan.Name()).Msg("Trader registered")
	return user, nil
}

// Login authenticates a user and issues a token pair
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email, err := domain.NewEmail(req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetUserByEmail(ctx, email.Value())
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if !s.passwordManager.VerifyPassword(req.Password, user.PasswordHash().Value()) {
		return nil, ErrInvalidCredentials
	}

	switch user.Status() {
	case domain.StatusSuspended:
		return nil, ErrAccountSuspended
	case domain.StatusDeleted:
		return nil, ErrAccountDeleted
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	user.RecordLogin()
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID().String()).Msg("Failed to record login time")
	}

	return &LoginResponse{
		User:         ToUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

// RefreshTokens rotates a refresh token into a fresh token pair
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	tokenHash := HashRefreshToken(refreshToken)

	userID, err := s.sessions.GetSession(ctx, tokenHash)
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	if userID == uuid.Nil {
		return nil, ErrInvalidToken
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	switch user.Status() {
	case domain.StatusSuspended:
		return nil, ErrAccountSuspended
	case domain.StatusDeleted:
		return nil, ErrAccountDeleted
	}

	// Rotate: the presented token is single use
	if err := s.sessions.DeleteSession(ctx, tokenHash); err != nil {
		log.Warn().Err(err).Msg("Failed to delete rotated session")
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	return &RefreshResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

// Logout revokes the presented refresh token
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.sessions.DeleteSession(ctx, HashRefreshToken(refreshToken))
}

// ChangePassword verifies the current password and stores a new hash
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	if !s.passwordManager.VerifyPassword(req.CurrentPassword, user.PasswordHash().Value()) {
		return ErrInvalidCredentials
	}

	if err := s.passwordManager.ValidatePasswordStrength(req.NewPassword); err != nil {
		return AuthError{Code: ErrWeakPassword.Code, Message: err.Error()}
	}

	rawHash, err := s.passwordManager.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	newHash, err := domain.NewPasswordHash(rawHash)
	if err != nil {
		return fmt.Errorf("failed to wrap password hash: %w", err)
	}

	user.ChangePassword(newHash)
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *Service) issueTokens(ctx context.Context, user *domain.User) (*TokenPair, error) {
	pair, err := s.jwtManager.GenerateTokenPair(UserClaims{
		UserID: user.ID().String(),
		Email:  user.Email().Value(),
		Role:   string(user.Role()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	if err := s.sessions.StoreSession(ctx, HashRefreshToken(pair.RefreshToken),
		user.ID(), s.jwtManager.GetRefreshTokenDuration()); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return pair, nil
}

// ToUserResponse shapes a user aggregate for API output
func ToUserResponse(user *domain.User) UserResponse {
	var riskProfile *string
	if rp := user.RiskProfile(); rp != nil {
		s := string(*rp)
		riskProfile = &s
	}
	var billing *string
	if bp := user.BillingPeriod(); bp != nil {
		s := string(*bp)
		billing = &s
	}

	return UserResponse{
		ID:                 user.ID().String(),
		Email:              user.Email().Value(),
		FullName:           user.FullName(),
		DisplayName:        user.DisplayName(),
		Role:               string(user.Role()),
		Status:             string(user.Status()),
		RiskProfile:        riskProfile,
		SubscriptionPlanID: user.SubscriptionPlanID(),
		BillingPeriod:      billing,
		CreatedAt:          user.CreatedAt(),
		LastLoginAt:        user.LastLoginAt(),
	}
}
