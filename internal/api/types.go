package api

import (
	"time"

	"github.com/shopspring/decimal"

	"mytrader-platform/internal/auth"
	"mytrader-platform/internal/domain"
)

// UpdateProfileRequest carries profile changes for the current user.
// Both fields are optional; absent fields are left untouched.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	RiskProfile *string `json:"risk_profile"`
}

// SetPhoneRequest carries a phone number. An empty country code means a
// Brazilian number.
type SetPhoneRequest struct {
	CountryCode string `json:"country_code"`
	Number      string `json:"number" binding:"required"`
}

// UpdateSubscriptionRequest switches the current user to another plan.
type UpdateSubscriptionRequest struct {
	SubscriptionPlanID int    `json:"subscription_plan_id" binding:"required"`
	BillingPeriod      string `json:"billing_period" binding:"required"`
}

// GrantOverrideRequest grants a plan override to a user. Kind selects a
// preset ("vip", "trial", "beta") or "custom" with explicit dimensions.
type GrantOverrideRequest struct {
	Kind          string               `json:"kind" binding:"required"`
	Reason        string               `json:"reason"`
	StrategyLimit *int                 `json:"strategy_limit"`
	Features      *domain.PlanFeatures `json:"features"`
	ExpiresAt     *time.Time           `json:"expires_at"`
	TrialDays     int                  `json:"trial_days"`
}

// FeeRatesRequest carries a (partial) fee schedule. Absent rates fall
// back to the platform defaults at resolution time.
type FeeRatesRequest struct {
	BrokerCommissionRate  *decimal.Decimal `json:"broker_commission_rate"`
	B3EmolumentRate       *decimal.Decimal `json:"b3_emolument_rate"`
	SettlementFeeRate     *decimal.Decimal `json:"settlement_fee_rate"`
	IncomeTaxRate         *decimal.Decimal `json:"income_tax_rate"`
	DayTradeIncomeTaxRate *decimal.Decimal `json:"day_trade_income_tax_rate"`
}

// ToTradingFees validates the request against the domain rate rules.
func (r FeeRatesRequest) ToTradingFees() (domain.TradingFees, error) {
	return domain.NewTradingFees(
		r.BrokerCommissionRate,
		r.B3EmolumentRate,
		r.SettlementFeeRate,
		r.IncomeTaxRate,
		r.DayTradeIncomeTaxRate,
	)
}

// CreatePlanRequest creates a subscription plan.
type CreatePlanRequest struct {
	Name                  string              `json:"name" binding:"required"`
	PriceMonthly          decimal.Decimal     `json:"price_monthly"`
	PriceAnnual           decimal.Decimal     `json:"price_annual"`
	AnnualDiscountPercent decimal.Decimal     `json:"annual_discount_percent"`
	StrategyLimit         int                 `json:"strategy_limit" binding:"required"`
	Features              domain.PlanFeatures `json:"features"`
}

// UpdatePlanRequest changes plan pricing, limit or features. Sections are
// optional; absent sections are left untouched.
type UpdatePlanRequest struct {
	Pricing *struct {
		PriceMonthly          decimal.Decimal `json:"price_monthly"`
		PriceAnnual           decimal.Decimal `json:"price_annual"`
		AnnualDiscountPercent decimal.Decimal `json:"annual_discount_percent"`
	} `json:"pricing"`
	StrategyLimit *int                 `json:"strategy_limit"`
	Features      *domain.PlanFeatures `json:"features"`
}

// UpdateSystemLimitsRequest changes the global platform limits.
type UpdateSystemLimitsRequest struct {
	MaxOpenStrategiesPerUser int `json:"max_open_strategies_per_user" binding:"required"`
	MaxStrategiesInTemplate  int `json:"max_strategies_in_template" binding:"required"`
}

// PhoneResponse is a user's phone number in API form.
type PhoneResponse struct {
	CountryCode string     `json:"country_code"`
	Number      string     `json:"number"`
	Formatted   string     `json:"formatted"`
	IsVerified  bool       `json:"is_verified"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
}

// OverrideResponse is a plan override in API form.
type OverrideResponse struct {
	StrategyLimit *int                 `json:"strategy_limit,omitempty"`
	Features      *domain.PlanFeatures `json:"features,omitempty"`
	Reason        string               `json:"reason"`
	GrantedBy     string               `json:"granted_by"`
	GrantedAt     time.Time            `json:"granted_at"`
	ExpiresAt     *time.Time           `json:"expires_at,omitempty"`
	IsActive      bool                 `json:"is_active"`
}

// UserDetailResponse is the full user view for /users/me and admin reads.
type UserDetailResponse struct {
	auth.UserResponse
	Phone      *PhoneResponse    `json:"phone,omitempty"`
	Override   *OverrideResponse `json:"override,omitempty"`
	CustomFees *FeeRatesRequest  `json:"custom_fees,omitempty"`
}

// PlanResponse is a subscription plan in API form.
type PlanResponse struct {
	ID                    int                 `json:"id"`
	Name                  string              `json:"name"`
	Currency              string              `json:"currency"`
	PriceMonthly          decimal.Decimal     `json:"price_monthly"`
	PriceAnnual           decimal.Decimal     `json:"price_annual"`
	AnnualDiscountPercent decimal.Decimal     `json:"annual_discount_percent"`
	StrategyLimit         int                 `json:"strategy_limit"`
	Features              domain.PlanFeatures `json:"features"`
	IsActive              bool                `json:"is_active"`
	CreatedAt             time.Time           `json:"created_at"`
	UpdatedAt             *time.Time          `json:"updated_at,omitempty"`
	SubscriberCount       *int                `json:"subscriber_count,omitempty"`
}

// SystemConfigResponse is the platform configuration in API form.
type SystemConfigResponse struct {
	Fees                     FeeRatesRequest `json:"fees"`
	MaxOpenStrategiesPerUser int             `json:"max_open_strategies_per_user"`
	MaxStrategiesInTemplate  int             `json:"max_strategies_in_template"`
	UpdatedAt                time.Time       `json:"updated_at"`
	UpdatedBy                string          `json:"updated_by"`
}

// ToUserDetailResponse converts a user aggregate to its full API form.
func ToUserDetailResponse(user *domain.User) UserDetailResponse {
	resp := UserDetailResponse{UserResponse: auth.ToUserResponse(user)}

	if phone := user.Phone(); phone != nil {
		resp.Phone = &PhoneResponse{
			CountryCode: phone.CountryCode(),
			Number:      phone.Number(),
			Formatted:   phone.InternationalFormat(),
			IsVerified:  user.IsPhoneVerified(),
			VerifiedAt:  user.PhoneVerifiedAt(),
		}
	}

	if o := user.PlanOverride(); o != nil {
		resp.Override = &OverrideResponse{
			StrategyLimit: o.StrategyLimitOverride(),
			Features:      o.FeaturesOverride(),
			Reason:        o.Reason(),
			GrantedBy:     o.GrantedBy().String(),
			GrantedAt:     o.GrantedAt(),
			ExpiresAt:     o.ExpiresAt(),
			IsActive:      o.IsActive(),
		}
	}

	if fees := user.CustomFees(); fees != nil {
		resp.CustomFees = &FeeRatesRequest{
			BrokerCommissionRate:  fees.BrokerCommissionRate(),
			B3EmolumentRate:       fees.B3EmolumentRate(),
			SettlementFeeRate:     fees.SettlementFeeRate(),
			IncomeTaxRate:         fees.IncomeTaxRate(),
			DayTradeIncomeTaxRate: fees.DayTradeIncomeTaxRate(),
		}
	}

	return resp
}

// ToPlanResponse converts a plan aggregate to its API form.
func ToPlanResponse(plan *domain.SubscriptionPlan) PlanResponse {
	return PlanResponse{
		ID:                    plan.ID(),
		Name:                  plan.Name(),
		Currency:              plan.PriceMonthly().Currency(),
		PriceMonthly:          plan.PriceMonthly().Amount(),
		PriceAnnual:           plan.PriceAnnual().Amount(),
		AnnualDiscountPercent: plan.AnnualDiscountPercent(),
		StrategyLimit:         plan.StrategyLimit(),
		Features:              plan.Features(),
		IsActive:              plan.IsActive(),
		CreatedAt:             plan.CreatedAt(),
		UpdatedAt:             plan.UpdatedAt(),
	}
}

// ToSystemConfigResponse converts the singleton config to its API form.
func ToSystemConfigResponse(cfg *domain.SystemConfig) SystemConfigResponse {
	fees := cfg.Fees()
	return SystemConfigResponse{
		Fees: FeeRatesRequest{
			BrokerCommissionRate:  fees.BrokerCommissionRate(),
			B3EmolumentRate:       fees.B3EmolumentRate(),
			SettlementFeeRate:     fees.SettlementFeeRate(),
			IncomeTaxRate:         fees.IncomeTaxRate(),
			DayTradeIncomeTaxRate: fees.DayTradeIncomeTaxRate(),
		},
		MaxOpenStrategiesPerUser: cfg.MaxOpenStrategiesPerUser(),
		MaxStrategiesInTemplate:  cfg.MaxStrategiesInTemplate(),
		UpdatedAt:                cfg.UpdatedAt(),
		UpdatedBy:                cfg.UpdatedBy().String(),
	}
}
