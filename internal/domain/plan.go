package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MaxPlanNameLength bounds subscription plan names.
const MaxPlanNameLength = 50

// SubscriptionPlan is a named pricing/feature/limit bundle (Básico,
// Pleno, Consultor). Prices are BRL-only and the annual price must be a
// real discount over 12 monthly payments.
type SubscriptionPlan struct {
	id                    int
	name                  string
	priceMonthly          Money
	priceAnnual           Money
	annualDiscountPercent decimal.Decimal
	strategyLimit         int
	features              PlanFeatures
	isActive              bool
	createdAt             time.Time
	updatedAt             *time.Time
}

// NewSubscriptionPlan creates a plan. The ID stays zero until the plan is
// persisted.
func NewSubscriptionPlan(name string, priceMonthly, priceAnnual Money, annualDiscountPercent decimal.Decimal, strategyLimit int, features PlanFeatures) (*SubscriptionPlan, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, validationErr("name", "plan name cannot be empty")
	}
	if len(trimmed) > MaxPlanNameLength {
		return nil, validationErr("name", fmt.Sprintf("plan name cannot exceed %d characters", MaxPlanNameLength))
	}

	if err := validatePlanPricing(priceMonthly, priceAnnual, annualDiscountPercent); err != nil {
		return nil, err
	}

	if strategyLimit <= 0 {
		return nil, validationErr("strategyLimit", "strategy limit must be positive")
	}

	return &SubscriptionPlan{
		name:                  trimmed,
		priceMonthly:          priceMonthly,
		priceAnnual:           priceAnnual,
		annualDiscountPercent: annualDiscountPercent,
		strategyLimit:         strategyLimit,
		features:              features,
		isActive:              true,
		createdAt:             time.Now().UTC(),
	}, nil
}

func validatePlanPricing(priceMonthly, priceAnnual Money, annualDiscountPercent decimal.Decimal) error {
	if priceMonthly.Currency() != "BRL" || priceAnnual.Currency() != "BRL" {
		return validationErr("price", "plan prices must be in BRL")
	}
	if annualDiscountPercent.IsNegative() || annualDiscountPercent.GreaterThan(decimal.NewFromInt(1)) {
		return validationErr("annualDiscountPercent", "annual discount must be between 0 and 1")
	}
	// Annual billing must be a real discount over 12 monthly payments.
	if priceMonthly.Amount().IsPositive() {
		monthlyTotal := priceMonthly.Amount().Mul(decimal.NewFromInt(12))
		if priceAnnual.Amount().GreaterThanOrEqual(monthlyTotal) {
			return validationErr("priceAnnual", "annual price must be less than 12 monthly payments")
		}
	}
	return nil
}

// NewBasicoPlan creates the stock free tier (3 strategies).
func NewBasicoPlan() (*SubscriptionPlan, error) {
	return NewSubscriptionPlan("Básico", ZeroMoney("BRL"), ZeroMoney("BRL"), decimal.Zero, 3, BasicFeatures())
}

// NewPlenoPlan creates the stock first paid tier (R$ 99.90/month, 20%
// annual discount, 10 strategies).
func NewPlenoPlan() (*SubscriptionPlan, error) {
	monthly, err := BRL(decimal.RequireFromString("99.90"))
	if err != nil {
		return nil, err
	}
	annual, err := BRL(decimal.RequireFromString("959.04"))
	if err != nil {
		return nil, err
	}
	return NewSubscriptionPlan("Pleno", monthly, annual, decimal.RequireFromString("0.20"), 10, PlenoFeatures())
}

// NewConsultorPlan creates the stock top tier (R$ 299.00/month, 20%
// annual discount, 50 strategies).
func NewConsultorPlan() (*SubscriptionPlan, error) {
	monthly, err := BRL(decimal.RequireFromString("299.00"))
	if err != nil {
		return nil, err
	}
	annual, err := BRL(decimal.RequireFromString("2870.40"))
	if err != nil {
		return nil, err
	}
	return NewSubscriptionPlan("Consultor", monthly, annual, decimal.RequireFromString("0.20"), 50, ConsultorFeatures())
}

// RehydratePlanParams carries the persisted state of a plan.
type RehydratePlanParams struct {
	ID                    int
	Name                  string
	PriceMonthly          Money
	PriceAnnual           Money
	AnnualDiscountPercent decimal.Decimal
	StrategyLimit         int
	Features              PlanFeatures
	IsActive              bool
	CreatedAt             time.Time
	UpdatedAt             *time.Time
}

// RehydratePlan reconstructs a persisted plan without re-running creation
// validation.
func RehydratePlan(p RehydratePlanParams) *SubscriptionPlan {
	return &SubscriptionPlan{
		id:                    p.ID,
		name:                  p.Name,
		priceMonthly:          p.PriceMonthly,
		priceAnnual:           p.PriceAnnual,
		annualDiscountPercent: p.AnnualDiscountPercent,
		strategyLimit:         p.StrategyLimit,
		features:              p.Features,
		isActive:              p.IsActive,
		createdAt:             p.CreatedAt,
		updatedAt:             copyTime(p.UpdatedAt),
	}
}

// ID returns the persisted plan ID (zero before the first save).
func (p *SubscriptionPlan) ID() int { return p.id }

// SetID assigns the database-generated ID after the first save.
func (p *SubscriptionPlan) SetID(id int) { p.id = id }

// Name returns the plan name.
func (p *SubscriptionPlan) Name() string { return p.name }

// PriceMonthly returns the monthly price.
func (p *SubscriptionPlan) PriceMonthly() Money { return p.priceMonthly }

// PriceAnnual returns the annual price.
func (p *SubscriptionPlan) PriceAnnual() Money { return p.priceAnnual }

// AnnualDiscountPercent returns the advertised annual discount fraction.
func (p *SubscriptionPlan) AnnualDiscountPercent() decimal.Decimal { return p.annualDiscountPercent }

// StrategyLimit returns how many strategies the plan allows.
func (p *SubscriptionPlan) StrategyLimit() int { return p.strategyLimit }

// Features returns the plan's feature bundle.
func (p *SubscriptionPlan) Features() PlanFeatures { return p.features }

// IsActive reports whether the plan is offered to new subscribers.
func (p *SubscriptionPlan) IsActive() bool { return p.isActive }

// CreatedAt returns when the plan was created.
func (p *SubscriptionPlan) CreatedAt() time.Time { return p.createdAt }

// UpdatedAt returns when the plan was last mutated, or nil.
func (p *SubscriptionPlan) UpdatedAt() *time.Time { return copyTime(p.updatedAt) }

// UpdatePricing re-validates and replaces the plan's pricing.
func (p *SubscriptionPlan) UpdatePricing(priceMonthly, priceAnnual Money, annualDiscountPercent decimal.Decimal) error {
	if err := validatePlanPricing(priceMonthly, priceAnnual, annualDiscountPercent); err != nil {
		return err
	}
	p.priceMonthly = priceMonthly
	p.priceAnnual = priceAnnual
	p.annualDiscountPercent = annualDiscountPercent
	p.touch()
	return nil
}

// UpdateStrategyLimit replaces the strategy limit.
func (p *SubscriptionPlan) UpdateStrategyLimit(newLimit int) error {
	if newLimit <= 0 {
		return validationErr("strategyLimit", "strategy limit must be positive")
	}
	p.strategyLimit = newLimit
	p.touch()
	return nil
}

// UpdateFeatures replaces the feature bundle.
func (p *SubscriptionPlan) UpdateFeatures(features PlanFeatures) {
	p.features = features
	p.touch()
}

// Activate makes the plan available. A no-op when already active.
func (p *SubscriptionPlan) Activate() {
	if p.isActive {
		return
	}
	p.isActive = true
	p.touch()
}

// Deactivate withdraws the plan. A no-op when already inactive.
func (p *SubscriptionPlan) Deactivate() {
	if !p.isActive {
		return
	}
	p.isActive = false
	p.touch()
}

func (p *SubscriptionPlan) touch() {
	now := time.Now().UTC()
	p.updatedAt = &now
}
