package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"mytrader-platform/internal/domain"
)

// UserRow mirrors the users table. The plan override and custom fee rates
// live in nullable columns on the same row.
type UserRow struct {
	ID              uuid.UUID
	Email           string
	PasswordHash    string
	FullName        string
	DisplayName     string
	PhoneCountry    *string
	PhoneNumber     *string
	IsPhoneVerified bool
	PhoneVerifiedAt *time.Time

	Role               string
	Status             string
	RiskProfile        *string
	SubscriptionPlanID *int
	BillingPeriod      *string

	OverrideStrategyLimit *int
	OverrideFeatures      []byte // JSONB bundle, nil when no features override
	OverrideReason        *string
	OverrideGrantedBy     *uuid.UUID
	OverrideGrantedAt     *time.Time
	OverrideExpiresAt     *time.Time

	CustomBrokerCommissionRate  *decimal.Decimal
	CustomB3EmolumentRate       *decimal.Decimal
	CustomSettlementFeeRate     *decimal.Decimal
	CustomIncomeTaxRate         *decimal.Decimal
	CustomDayTradeIncomeTaxRate *decimal.Decimal

	CreatedAt   time.Time
	LastLoginAt *time.Time
}

// ToDomain rebuilds the user aggregate from its persisted row.
func (r *UserRow) ToDomain() (*domain.User, error) {
	email, err := domain.NewEmail(r.Email)
	if err != nil {
		return nil, fmt.Errorf("corrupt user row %s: %w", r.ID, err)
	}
	hash, err := domain.NewPasswordHash(r.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("corrupt user row %s: %w", r.ID, err)
	}
	role, err := domain.ParseRole(r.Role)
	if err != nil {
		return nil, fmt.Errorf("corrupt user row %s: %w", r.ID, err)
	}
	status, err := domain.ParseStatus(r.Status)
	if err != nil {
		return nil, fmt.Errorf("corrupt user row %s: %w", r.ID, err)
	}

	var riskProfile *domain.RiskProfile
	if r.RiskProfile != nil {
		rp, err := domain.ParseRiskProfile(*r.RiskProfile)
		if err != nil {
			return nil, fmt.Errorf("corrupt user row %s: %w", r.ID, err)
		}
		riskProfile = &rp
	}

	var billing *domain.BillingPeriod
	if r.BillingPeriod != nil {
		bp, err := domain.ParseBillingPeriod(*r.BillingPeriod)
		if err != nil {
			return nil, fmt.Errorf("corrupt user row %s: %w", r.ID, err)
		}
		billing = &bp
	}

	var phone *domain.PhoneNumber
	if r.PhoneCountry != nil && r.PhoneNumber != nil {
		p, err := domain.NewPhoneNumber(*r.PhoneCountry, *r.PhoneNumber)
		if err != nil {
			return nil, fmt.Errorf("corrupt user row %s: %w", r.ID, err)
		}
		phone = &p
	}

	override, err := r.overrideFromRow()
	if err != nil {
		return nil, err
	}

	fees, err := r.customFeesFromRow()
	if err != nil {
		return nil, err
	}

	return domain.RehydrateUser(domain.RehydrateUserParams{
		ID:                 r.ID,
		Email:              email,
		PasswordHash:       hash,
		FullName:           r.FullName,
		DisplayName:        r.DisplayName,
		Phone:              phone,
		IsPhoneVerified:    r.IsPhoneVerified,
		PhoneVerifiedAt:    r.PhoneVerifiedAt,
		Role:               role,
		Status:             status,
		RiskProfile:        riskProfile,
		SubscriptionPlanID: r.SubscriptionPlanID,
		BillingPeriod:      billing,
		PlanOverride:       override,
		CustomFees:         fees,
		CreatedAt:          r.CreatedAt,
		LastLoginAt:        r.LastLoginAt,
	}), nil
}

// overrideFromRow rebuilds the plan override; a row without a grantor has
// no override.
func (r *UserRow) overrideFromRow() (*domain.PlanOverride, error) {
	if r.OverrideGrantedBy == nil {
		return nil, nil
	}

	var features *domain.PlanFeatures
	if len(r.OverrideFeatures) > 0 {
		var f domain.PlanFeatures
		if err := json.Unmarshal(r.OverrideFeatures, &f); err != nil {
			return nil, fmt.Errorf("corrupt override features on user %s: %w", r.ID, err)
		}
		features = &f
	}

	reason := ""
	if r.OverrideReason != nil {
		reason = *r.OverrideReason
	}
	grantedAt := time.Time{}
	if r.OverrideGrantedAt != nil {
		grantedAt = *r.OverrideGrantedAt
	}

	return domain.RehydrateOverride(*r.OverrideGrantedBy, grantedAt, reason,
		r.OverrideStrategyLimit, features, r.OverrideExpiresAt), nil
}

// customFeesFromRow rebuilds the user's custom fee schedule, nil when all
// five rate columns are NULL.
func (r *UserRow) customFeesFromRow() (*domain.TradingFees, error) {
	if r.CustomBrokerCommissionRate == nil && r.CustomB3EmolumentRate == nil &&
		r.CustomSettlementFeeRate == nil && r.CustomIncomeTaxRate == nil &&
		r.CustomDayTradeIncomeTaxRate == nil {
		return nil, nil
	}

	fees, err := domain.NewTradingFees(
		r.CustomBrokerCommissionRate,
		r.CustomB3EmolumentRate,
		r.CustomSettlementFeeRate,
		r.CustomIncomeTaxRate,
		r.CustomDayTradeIncomeTaxRate,
	)
	if err != nil {
		return nil, fmt.Errorf("corrupt custom fees on user %s: %w", r.ID, err)
	}
	return &fees, nil
}

// PlanRow mirrors the subscription_plans table.
type PlanRow struct {
	ID                    int
	Name                  string
	Currency              string
	PriceMonthly          decimal.Decimal
	PriceAnnual           decimal.Decimal
	AnnualDiscountPercent decimal.Decimal
	StrategyLimit         int
	RealtimeData          bool
	AdvancedAlerts        bool
	ConsultingTools       bool
	CommunityAccess       bool
	IsActive              bool
	CreatedAt             time.Time
	UpdatedAt             *time.Time
}

// ToDomain rebuilds the plan aggregate from its persisted row.
func (r *PlanRow) ToDomain() (*domain.SubscriptionPlan, error) {
	monthly, err := domain.NewMoney(r.PriceMonthly, r.Currency)
	if err != nil {
		return nil, fmt.Errorf("corrupt plan row %d: %w", r.ID, err)
	}
	annual, err := domain.NewMoney(r.PriceAnnual, r.Currency)
	if err != nil {
		return nil, fmt.Errorf("corrupt plan row %d: %w", r.ID, err)
	}

	return domain.RehydratePlan(domain.RehydratePlanParams{
		ID:                    r.ID,
		Name:                  r.Name,
		PriceMonthly:          monthly,
		PriceAnnual:           annual,
		AnnualDiscountPercent: r.AnnualDiscountPercent,
		StrategyLimit:         r.StrategyLimit,
		Features: domain.PlanFeatures{
			RealtimeData:    r.RealtimeData,
			AdvancedAlerts:  r.AdvancedAlerts,
			ConsultingTools: r.ConsultingTools,
			CommunityAccess: r.CommunityAccess,
		},
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}), nil
}

// SystemConfigRow mirrors the system_config singleton row.
type SystemConfigRow struct {
	ID                       int
	BrokerCommissionRate     *decimal.Decimal
	B3EmolumentRate          *decimal.Decimal
	SettlementFeeRate        *decimal.Decimal
	IncomeTaxRate            *decimal.Decimal
	DayTradeIncomeTaxRate    *decimal.Decimal
	MaxOpenStrategiesPerUser int
	MaxStrategiesInTemplate  int
	UpdatedAt                time.Time
	UpdatedBy                uuid.UUID
}

// ToDomain rebuilds the configuration singleton from its persisted row.
func (r *SystemConfigRow) ToDomain() (*domain.SystemConfig, error) {
	fees, err := domain.NewTradingFees(
		r.BrokerCommissionRate,
		r.B3EmolumentRate,
		r.SettlementFeeRate,
		r.IncomeTaxRate,
		r.DayTradeIncomeTaxRate,
	)
	if err != nil {
		return nil, fmt.Errorf("corrupt system config row: %w", err)
	}

	return domain.RehydrateSystemConfig(domain.RehydrateSystemConfigParams{
		Fees:                     fees,
		MaxOpenStrategiesPerUser: r.MaxOpenStrategiesPerUser,
		MaxStrategiesInTemplate:  r.MaxStrategiesInTemplate,
		UpdatedAt:                r.UpdatedAt,
		UpdatedBy:                r.UpdatedBy,
	}), nil
}

// overrideFeaturesJSON serializes the override feature bundle for storage,
// nil when the override carries no features dimension.
func overrideFeaturesJSON(f *domain.PlanFeatures) ([]byte, error) {
	if f == nil {
		return nil, nil
	}
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal override features: %w", err)
	}
	return data, nil
}
