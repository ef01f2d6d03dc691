// Package entitlement resolves the strategy limit, feature bundle and fee
// schedule actually applied to a user: administrative overrides beat plan
// defaults, and custom fee rates merge with the platform schedule per
// field.
package entitlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"mytrader-platform/internal/cache"
	"mytrader-platform/internal/domain"
)

// Resolution errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserDeleted       = errors.New("user is deleted")
	ErrNotTrader         = errors.New("user has no subscription entitlements")
	ErrPlanNotFound      = errors.New("subscription plan not found")
	ErrConfigUnavailable = errors.New("system configuration not initialized")
)

// Repository is the slice of the data layer the resolver needs.
type Repository interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	GetPlanByID(ctx context.Context, planID int) (*domain.SubscriptionPlan, error)
	GetSystemConfig(ctx context.Context) (*domain.SystemConfig, error)
}

// Cache is the slice of the cache layer the resolver needs. A nil Cache
// disables caching entirely.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// FeeRates is the resolved fee schedule in serializable form.
type FeeRates struct {
	BrokerCommissionRate  *decimal.Decimal `json:"broker_commission_rate,omitempty"`
	B3EmolumentRate       *decimal.Decimal `json:"b3_emolument_rate,omitempty"`
	SettlementFeeRate     *decimal.Decimal `json:"settlement_fee_rate,omitempty"`
	IncomeTaxRate         *decimal.Decimal `json:"income_tax_rate,omitempty"`
	DayTradeIncomeTaxRate *decimal.Decimal `json:"day_trade_income_tax_rate,omitempty"`
}

// OverrideInfo describes the active override applied to a resolution.
type OverrideInfo struct {
	Reason    string     `json:"reason"`
	GrantedBy uuid.UUID  `json:"granted_by"`
	GrantedAt time.Time  `json:"granted_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Resolution is a user's fully resolved entitlements.
type Resolution struct {
	UserID        uuid.UUID           `json:"user_id"`
	PlanID        int                 `json:"plan_id"`
	PlanName      string              `json:"plan_name"`
	StrategyLimit int                 `json:"strategy_limit"`
	Features      domain.PlanFeatures `json:"features"`
	Fees          FeeRates            `json:"fees"`
	Override      *OverrideInfo       `json:"override,omitempty"`
	ResolvedAt    time.Time           `json:"resolved_at"`
}

// Service resolves entitlements with a cache-aside read path.
type Service struct {
	repo     Repository
	cache    Cache
	cacheTTL time.Duration
}

// NewService creates an entitlement resolver. Pass a nil cache to resolve
// straight from the database on every call.
func NewService(repo Repository, c Cache) *Service {
	return &Service{
		repo:     repo,
		cache:    c,
		cacheTTL: cache.DefaultEntitlementTTL,
	}
}

// Resolve computes the entitlements applied to a Trader. Suspended users
// still resolve (their strategies are frozen elsewhere); deleted users do
// not.
func (s *Service) Resolve(ctx context.Context, userID uuid.UUID) (*Resolution, error) {
	if s.cache != nil {
		var cached Resolution
		if err := s.cache.GetJSON(ctx, cache.EntitlementKey(userID.String()), &cached); err == nil {
			return &cached, nil
		}
	}

	resolution, err := s.resolveFromStore(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cache.EntitlementKey(userID.String()), resolution, s.cacheTTL); err != nil {
			log.Warn().Err(err).Str("user_id", userID.String()).Msg("Failed to cache entitlement resolution")
		}
	}

	return resolution, nil
}

// Invalidate drops a user's cached resolution. Call after any mutation
// that affects entitlements (plan change, override grant/revoke, custom
// fees).
func (s *Service) Invalidate(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.EntitlementKey(userID.String())); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("Failed to invalidate entitlement cache")
	}
}

func (s *Service) resolveFromStore(ctx context.Context, userID uuid.UUID) (*Resolution, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Status() == domain.StatusDeleted {
		return nil, ErrUserDeleted
	}
	if user.Role() != domain.RoleTrader || user.SubscriptionPlanID() == nil {
		return nil, ErrNotTrader
	}

	plan, err := s.repo.GetPlanByID(ctx, *user.SubscriptionPlanID())
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}

	systemConfig, err := s.repo.GetSystemConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load system config: %w", err)
	}
	if systemConfig == nil {
		return nil, ErrConfigUnavailable
	}

	fees := systemConfig.EffectiveFees(user.CustomFees())

	resolution := &Resolution{
		UserID:        user.ID(),
		PlanID:        plan.ID(),
		PlanName:      plan.Name(),
		StrategyLimit: user.EffectiveStrategyLimit(plan.StrategyLimit()),
		Features:      user.EffectiveFeatures(plan.Features()),
		Fees: FeeRates{
			BrokerCommissionRate:  fees.BrokerCommissionRate(),
			B3EmolumentRate:       fees.B3EmolumentRate(),
			SettlementFeeRate:     fees.SettlementFeeRate(),
			IncomeTaxRate:         fees.IncomeTaxRate(),
			DayTradeIncomeTaxRate: fees.DayTradeIncomeTaxRate(),
		},
		ResolvedAt: time.Now().UTC(),
	}

	// Only an active override shows up in the resolution; an expired one
	// is as good as absent.
	if o := user.PlanOverride(); o != nil && o.IsActive() {
		resolution.Override = &OverrideInfo{
			Reason:    o.Reason(),
			GrantedBy: o.GrantedBy(),
			GrantedAt: o.GrantedAt(),
			ExpiresAt: o.ExpiresAt(),
		}
	}

	return resolution, nil
}
