package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxOverrideReasonLength bounds the administrative reason text.
const MaxOverrideReasonLength = 500

// VIPStrategyLimit is the effectively-unlimited strategy limit granted to
// VIP users.
const VIPStrategyLimit = 9999

// PlanOverride is an administrator-granted, optionally time-bounded
// replacement of a user's plan-derived strategy limit and/or feature
// bundle (VIP, trial, beta, staff grants).
//
// Limit and features are independent dimensions: each replaces the plan
// value only when its own field is set. The features override is
// all-or-nothing at the bundle level — there is no per-flag inheritance.
type PlanOverride struct {
	strategyLimitOverride *int
	featuresOverride      *PlanFeatures
	expiresAt             *time.Time
	reason                string
	grantedBy             uuid.UUID
	grantedAt             time.Time
}

// NewPlanOverride creates a plan override. At least one of the strategy
// limit and features overrides must be set; an expiry, when given, must be
// strictly in the future.
func NewPlanOverride(grantedBy uuid.UUID, reason string, strategyLimit *int, features *PlanFeatures, expiresAt *time.Time) (*PlanOverride, error) {
	if grantedBy == uuid.Nil {
		return nil, validationErr("grantedBy", "grantedBy cannot be empty")
	}

	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return nil, validationErr("reason", "reason cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > MaxOverrideReasonLength {
		return nil, validationErr("reason", fmt.Sprintf("reason cannot exceed %d characters", MaxOverrideReasonLength))
	}

	if strategyLimit != nil && *strategyLimit <= 0 {
		return nil, validationErr("strategyLimitOverride", "strategy limit must be positive")
	}

	if expiresAt != nil && !expiresAt.After(time.Now().UTC()) {
		return nil, validationErr("expiresAt", "expiration date must be in the future")
	}

	if strategyLimit == nil && features == nil {
		return nil, validationErr("", "at least one override (strategy limit or features) must be specified")
	}

	return &PlanOverride{
		strategyLimitOverride: copyInt(strategyLimit),
		featuresOverride:      copyFeatures(features),
		expiresAt:             copyTime(expiresAt),
		reason:                trimmed,
		grantedBy:             grantedBy,
		grantedAt:             time.Now().UTC(),
	}, nil
}

// NewVIPOverride grants unlimited strategies plus all features, with no
// expiration.
func NewVIPOverride(grantedBy uuid.UUID, reason string) (*PlanOverride, error) {
	limit := VIPStrategyLimit
	features := ConsultorFeatures()
	return NewPlanOverride(grantedBy, "VIP: "+reason, &limit, &features, nil)
}

// NewTrialOverride grants Consultor features for a limited number of days.
func NewTrialOverride(grantedBy uuid.UUID, durationDays int) (*PlanOverride, error) {
	features := ConsultorFeatures()
	expiresAt := time.Now().UTC().AddDate(0, 0, durationDays)
	return NewPlanOverride(grantedBy, fmt.Sprintf("Trial: %d days", durationDays), nil, &features, &expiresAt)
}

// NewBetaTesterOverride grants an elevated limit plus all features, with
// no expiration.
func NewBetaTesterOverride(grantedBy uuid.UUID) (*PlanOverride, error) {
	limit := 100
	features := ConsultorFeatures()
	return NewPlanOverride(grantedBy, "Beta Tester", &limit, &features, nil)
}

// RehydrateOverride reconstructs a persisted override without re-running
// creation-time validation. The expiry may already be in the past.
func RehydrateOverride(grantedBy uuid.UUID, grantedAt time.Time, reason string, strategyLimit *int, features *PlanFeatures, expiresAt *time.Time) *PlanOverride {
	return &PlanOverride{
		strategyLimitOverride: copyInt(strategyLimit),
		featuresOverride:      copyFeatures(features),
		expiresAt:             copyTime(expiresAt),
		reason:                reason,
		grantedBy:             grantedBy,
		grantedAt:             grantedAt,
	}
}

// StrategyLimitOverride returns the limit override, or nil when this
// override does not touch the limit dimension.
func (o *PlanOverride) StrategyLimitOverride() *int { return copyInt(o.strategyLimitOverride) }

// FeaturesOverride returns the full replacement feature bundle, or nil
// when this override does not touch the features dimension.
func (o *PlanOverride) FeaturesOverride() *PlanFeatures { return copyFeatures(o.featuresOverride) }

// ExpiresAt returns the expiry timestamp, or nil for a permanent override.
func (o *PlanOverride) ExpiresAt() *time.Time { return copyTime(o.expiresAt) }

// Reason returns the administrative reason for the grant.
func (o *PlanOverride) Reason() string { return o.reason }

// GrantedBy returns the administrator that granted the override.
func (o *PlanOverride) GrantedBy() uuid.UUID { return o.grantedBy }

// GrantedAt returns when the override was granted.
func (o *PlanOverride) GrantedAt() time.Time { return o.grantedAt }

// IsExpired reports whether the expiry is set and has passed. An override
// with no expiry never expires.
func (o *PlanOverride) IsExpired() bool {
	return o.expiresAt != nil && !o.expiresAt.After(time.Now().UTC())
}

// IsActive reports whether the override currently applies.
func (o *PlanOverride) IsActive() bool {
	return !o.IsExpired()
}

func (o *PlanOverride) String() string {
	status := "ACTIVE"
	if o.IsExpired() {
		status = "EXPIRED"
	}
	expiry := "permanent"
	if o.expiresAt != nil {
		expiry = "until " + o.expiresAt.Format("2006-01-02")
	}
	return fmt.Sprintf("[%s] %s (%s)", status, o.reason, expiry)
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyFeatures(v *PlanFeatures) *PlanFeatures {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
