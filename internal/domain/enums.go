package domain

// Role is the closed set of user roles. Trader-only fields (risk profile,
// subscription, overrides) are validated against this tag.
type Role string

const (
	RoleTrader        Role = "trader"
	RoleModerator     Role = "moderator"
	RoleAdministrator Role = "administrator"
)

// ParseRole validates a role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleTrader, RoleModerator, RoleAdministrator:
		return Role(s), nil
	}
	return "", validationErr("role", "invalid role: "+s)
}

// Status is the user account lifecycle state. Deleted is terminal.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusDeleted   Status = "deleted"
)

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusSuspended, StatusDeleted:
		return Status(s), nil
	}
	return "", validationErr("status", "invalid status: "+s)
}

// RiskProfile classifies a trader's appetite for risk.
type RiskProfile string

const (
	RiskConservative RiskProfile = "conservative"
	RiskModerate     RiskProfile = "moderate"
	RiskAggressive   RiskProfile = "aggressive"
)

// ParseRiskProfile validates a risk profile string.
func ParseRiskProfile(s string) (RiskProfile, error) {
	switch RiskProfile(s) {
	case RiskConservative, RiskModerate, RiskAggressive:
		return RiskProfile(s), nil
	}
	return "", validationErr("riskProfile", "invalid risk profile: "+s)
}

// BillingPeriod is how often a trader's subscription is charged.
type BillingPeriod string

const (
	BillingMonthly BillingPeriod = "monthly"
	BillingAnnual  BillingPeriod = "annual"
)

// ParseBillingPeriod validates a billing period string.
func ParseBillingPeriod(s string) (BillingPeriod, error) {
	switch BillingPeriod(s) {
	case BillingMonthly, BillingAnnual:
		return BillingPeriod(s), nil
	}
	return "", validationErr("billingPeriod", "invalid billing period: "+s)
}
