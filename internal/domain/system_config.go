package domain

import (
	"time"

	"github.com/google/uuid"
)

// SystemConfigID is the fixed ID of the singleton configuration row.
// Exactly one SystemConfig exists system-wide.
const SystemConfigID = 1

// SystemConfig holds global default trading fees and platform limits.
// Created once via NewDefaultSystemConfig, thereafter only mutated.
type SystemConfig struct {
	id                       int
	fees                     TradingFees
	maxOpenStrategiesPerUser int
	maxStrategiesInTemplate  int
	updatedAt                time.Time
	updatedBy                uuid.UUID
}

// NewDefaultSystemConfig creates the singleton configuration with default
// Brazilian market fees (first-time setup).
func NewDefaultSystemConfig(administratorID uuid.UUID) (*SystemConfig, error) {
	if administratorID == uuid.Nil {
		return nil, validationErr("administratorID", "administrator ID cannot be empty")
	}

	// Default B3 fee schedule. Broker commission is zero: most Brazilian
	// brokers no longer charge one.
	defaultFees, err := NewTradingFees(
		Rate("0"),        // broker commission
		Rate("0.000325"), // B3 emolument 0.0325%
		Rate("0.000275"), // settlement 0.0275%
		Rate("0.15"),     // income tax 15% swing-trade
		Rate("0.20"),     // income tax 20% day-trade
	)
	if err != nil {
		return nil, err
	}

	return &SystemConfig{
		id:                       SystemConfigID,
		fees:                     defaultFees,
		maxOpenStrategiesPerUser: 100,
		maxStrategiesInTemplate:  20,
		updatedAt:                time.Now().UTC(),
		updatedBy:                administratorID,
	}, nil
}

// RehydrateSystemConfigParams carries the persisted singleton state.
type RehydrateSystemConfigParams struct {
	Fees                     TradingFees
	MaxOpenStrategiesPerUser int
	MaxStrategiesInTemplate  int
	UpdatedAt                time.Time
	UpdatedBy                uuid.UUID
}

// RehydrateSystemConfig reconstructs the persisted singleton.
func RehydrateSystemConfig(p RehydrateSystemConfigParams) *SystemConfig {
	return &SystemConfig{
		id:                       SystemConfigID,
		fees:                     p.Fees,
		maxOpenStrategiesPerUser: p.MaxOpenStrategiesPerUser,
		maxStrategiesInTemplate:  p.MaxStrategiesInTemplate,
		updatedAt:                p.UpdatedAt,
		updatedBy:                p.UpdatedBy,
	}
}

// ID returns the fixed singleton ID.
func (c *SystemConfig) ID() int { return c.id }

// Fees returns the system default fee schedule.
func (c *SystemConfig) Fees() TradingFees { return c.fees }

// MaxOpenStrategiesPerUser returns the global open-strategy cap.
func (c *SystemConfig) MaxOpenStrategiesPerUser() int { return c.maxOpenStrategiesPerUser }

// MaxStrategiesInTemplate returns the per-template strategy cap.
func (c *SystemConfig) MaxStrategiesInTemplate() int { return c.maxStrategiesInTemplate }

// UpdatedAt returns the last mutation time.
func (c *SystemConfig) UpdatedAt() time.Time { return c.updatedAt }

// UpdatedBy returns the administrator behind the last mutation.
func (c *SystemConfig) UpdatedBy() uuid.UUID { return c.updatedBy }

// UpdateFees replaces the default fee schedule.
func (c *SystemConfig) UpdateFees(fees TradingFees, updatedBy uuid.UUID) error {
	if updatedBy == uuid.Nil {
		return validationErr("updatedBy", "updatedBy cannot be empty")
	}
	c.fees = fees
	c.updatedAt = time.Now().UTC()
	c.updatedBy = updatedBy
	return nil
}

// UpdateLimits replaces the global limits.
func (c *SystemConfig) UpdateLimits(maxOpenStrategiesPerUser, maxStrategiesInTemplate int, updatedBy uuid.UUID) error {
	if maxOpenStrategiesPerUser <= 0 {
		return validationErr("maxOpenStrategiesPerUser", "max open strategies must be positive")
	}
	if maxStrategiesInTemplate <= 0 {
		return validationErr("maxStrategiesInTemplate", "max strategies in template must be positive")
	}
	if updatedBy == uuid.Nil {
		return validationErr("updatedBy", "updatedBy cannot be empty")
	}
	c.maxOpenStrategiesPerUser = maxOpenStrategiesPerUser
	c.maxStrategiesInTemplate = maxStrategiesInTemplate
	c.updatedAt = time.Now().UTC()
	c.updatedBy = updatedBy
	return nil
}

// EffectiveFees merges a user's custom fees with the system defaults,
// field by field. A nil or fully-empty custom value yields the defaults
// unchanged.
func (c *SystemConfig) EffectiveFees(userCustomFees *TradingFees) TradingFees {
	if userCustomFees == nil || !userCustomFees.HasCustomFees() {
		return c.fees
	}
	return userCustomFees.MergeWithDefaults(c.fees)
}
