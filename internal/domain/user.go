package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Name length bounds for user profiles.
const (
	MaxFullNameLength    = 255
	MinDisplayNameLength = 2
	MaxDisplayNameLength = 30
)

var displayNamePattern = regexp.MustCompile(`^[a-zA-Z0-9À-ÿ\s_-]+$`)

// User is the aggregate root for accounts: identity, role, subscription
// linkage, the optional administrative plan override and optional custom
// fees. Its resolution methods compute the entitlements actually applied
// to the user (active override > plan default; limit and features resolve
// independently).
type User struct {
	id           uuid.UUID
	email        Email
	passwordHash PasswordHash

	fullName    string
	displayName string

	phone           *PhoneNumber
	isPhoneVerified bool
	phoneVerifiedAt *time.Time

	role   Role
	status Status

	// Trader-only fields
	riskProfile        *RiskProfile
	subscriptionPlanID *int
	billingPeriod      *BillingPeriod

	planOverride *PlanOverride
	customFees   *TradingFees

	createdAt   time.Time
	lastLoginAt *time.Time
}

func newUser(email Email, passwordHash PasswordHash, fullName, displayName string, role Role) *User {
	return &User{
		id:           uuid.New(),
		email:        email,
		passwordHash: passwordHash,
		fullName:     strings.TrimSpace(fullName),
		displayName:  strings.TrimSpace(displayName),
		role:         role,
		status:       StatusActive,
		createdAt:    time.Now().UTC(),
	}
}

// RegisterTrader registers a Trader. Traders must carry a risk profile
// and a subscription plan from day one.
func RegisterTrader(email Email, passwordHash PasswordHash, fullName, displayName string, riskProfile RiskProfile, subscriptionPlanID int, billingPeriod BillingPeriod) (*User, error) {
	if err := validateFullName(fullName); err != nil {
		return nil, err
	}
	if err := validateDisplayName(displayName); err != nil {
		return nil, err
	}
	if subscriptionPlanID <= 0 {
		return nil, validationErr("subscriptionPlanId", "subscription plan is required for traders")
	}

	u := newUser(email, passwordHash, fullName, displayName, RoleTrader)
	u.riskProfile = &riskProfile
	u.subscriptionPlanID = &subscriptionPlanID
	u.billingPeriod = &billingPeriod
	return u, nil
}

// RegisterAdministrator registers an Administrator.
func RegisterAdministrator(email Email, passwordHash PasswordHash, fullName, displayName string) (*User, error) {
	if err := validateFullName(fullName); err != nil {
		return nil, err
	}
	if err := validateDisplayName(displayName); err != nil {
		return nil, err
	}
	return newUser(email, passwordHash, fullName, displayName, RoleAdministrator), nil
}

// RegisterModerator registers a Moderator.
func RegisterModerator(email Email, passwordHash PasswordHash, fullName, displayName string) (*User, error) {
	if err := validateFullName(fullName); err != nil {
		return nil, err
	}
	if err := validateDisplayName(displayName); err != nil {
		return nil, err
	}
	return newUser(email, passwordHash, fullName, displayName, RoleModerator), nil
}

func validateFullName(fullName string) error {
	trimmed := strings.TrimSpace(fullName)
	if trimmed == "" {
		return validationErr("fullName", "full name cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > MaxFullNameLength {
		return validationErr("fullName", fmt.Sprintf("full name cannot exceed %d characters", MaxFullNameLength))
	}
	return nil
}

func validateDisplayName(displayName string) error {
	trimmed := strings.TrimSpace(displayName)
	if trimmed == "" {
		return validationErr("displayName", "display name cannot be empty")
	}
	if n := utf8.RuneCountInString(trimmed); n < MinDisplayNameLength || n > MaxDisplayNameLength {
		return validationErr("displayName", fmt.Sprintf("display name must be between %d and %d characters", MinDisplayNameLength, MaxDisplayNameLength))
	}
	if !displayNamePattern.MatchString(trimmed) {
		return validationErr("displayName", "display name contains invalid characters")
	}
	return nil
}

// RehydrateUserParams carries the persisted state of a user.
type RehydrateUserParams struct {
	ID                 uuid.UUID
	Email              Email
	PasswordHash       PasswordHash
	FullName           string
	DisplayName        string
	Phone              *PhoneNumber
	IsPhoneVerified    bool
	PhoneVerifiedAt    *time.Time
	Role               Role
	Status             Status
	RiskProfile        *RiskProfile
	SubscriptionPlanID *int
	BillingPeriod      *BillingPeriod
	PlanOverride       *PlanOverride
	CustomFees         *TradingFees
	CreatedAt          time.Time
	LastLoginAt        *time.Time
}

// RehydrateUser reconstructs a persisted user in one step, restoring
// exact state (id, timestamps, status) without re-running registration
// validation.
func RehydrateUser(p RehydrateUserParams) *User {
	var riskProfile *RiskProfile
	if p.RiskProfile != nil {
		r := *p.RiskProfile
		riskProfile = &r
	}
	var billing *BillingPeriod
	if p.BillingPeriod != nil {
		b := *p.BillingPeriod
		billing = &b
	}
	var fees *TradingFees
	if p.CustomFees != nil {
		f := *p.CustomFees
		fees = &f
	}
	var phone *PhoneNumber
	if p.Phone != nil {
		ph := *p.Phone
		phone = &ph
	}
	return &User{
		id:                 p.ID,
		email:              p.Email,
		passwordHash:       p.PasswordHash,
		fullName:           p.FullName,
		displayName:        p.DisplayName,
		phone:              phone,
		isPhoneVerified:    p.IsPhoneVerified,
		phoneVerifiedAt:    copyTime(p.PhoneVerifiedAt),
		role:               p.Role,
		status:             p.Status,
		riskProfile:        riskProfile,
		subscriptionPlanID: copyInt(p.SubscriptionPlanID),
		billingPeriod:      billing,
		planOverride:       p.PlanOverride,
		customFees:         fees,
		createdAt:          p.CreatedAt,
		lastLoginAt:        copyTime(p.LastLoginAt),
	}
}

// ID returns the user ID.
func (u *User) ID() uuid.UUID { return u.id }

// Email returns the user's normalized email address.
func (u *User) Email() Email { return u.email }

// PasswordHash returns the stored password hash.
func (u *User) PasswordHash() PasswordHash { return u.passwordHash }

// FullName returns the user's full legal name.
func (u *User) FullName() string { return u.fullName }

// DisplayName returns the user's public display name.
func (u *User) DisplayName() string { return u.displayName }

// Phone returns the user's phone number, or nil.
func (u *User) Phone() *PhoneNumber {
	if u.phone == nil {
		return nil
	}
	p := *u.phone
	return &p
}

// IsPhoneVerified reports whether the phone number was verified.
func (u *User) IsPhoneVerified() bool { return u.isPhoneVerified }

// PhoneVerifiedAt returns when the phone was verified, or nil.
func (u *User) PhoneVerifiedAt() *time.Time { return copyTime(u.phoneVerifiedAt) }

// Role returns the user's role.
func (u *User) Role() Role { return u.role }

// Status returns the lifecycle status.
func (u *User) Status() Status { return u.status }

// RiskProfile returns the trader's risk profile, or nil for non-Traders.
func (u *User) RiskProfile() *RiskProfile {
	if u.riskProfile == nil {
		return nil
	}
	r := *u.riskProfile
	return &r
}

// SubscriptionPlanID returns the trader's plan ID, or nil.
func (u *User) SubscriptionPlanID() *int { return copyInt(u.subscriptionPlanID) }

// BillingPeriod returns the trader's billing period, or nil.
func (u *User) BillingPeriod() *BillingPeriod {
	if u.billingPeriod == nil {
		return nil
	}
	b := *u.billingPeriod
	return &b
}

// PlanOverride returns the current administrative override, or nil.
func (u *User) PlanOverride() *PlanOverride { return u.planOverride }

// CustomFees returns the user's custom fee rates, or nil.
func (u *User) CustomFees() *TradingFees {
	if u.customFees == nil {
		return nil
	}
	f := *u.customFees
	return &f
}

// CreatedAt returns when the account was created.
func (u *User) CreatedAt() time.Time { return u.createdAt }

// LastLoginAt returns the last recorded login, or nil.
func (u *User) LastLoginAt() *time.Time { return copyTime(u.lastLoginAt) }

// UpdateProfile updates the display name and/or risk profile. A risk
// profile can only be set on Traders.
func (u *User) UpdateProfile(displayName *string, riskProfile *RiskProfile) error {
	if displayName != nil {
		if err := validateDisplayName(*displayName); err != nil {
			return err
		}
	}
	if riskProfile != nil && u.role != RoleTrader {
		return ruleErr(CodeNotTrader, "only traders can have a risk profile")
	}

	if displayName != nil {
		u.displayName = strings.TrimSpace(*displayName)
	}
	if riskProfile != nil {
		r := *riskProfile
		u.riskProfile = &r
	}
	return nil
}

// SetPhone adds or replaces the phone number. Any previous verification
// is discarded.
func (u *User) SetPhone(phone PhoneNumber) {
	u.phone = &phone
	u.isPhoneVerified = false
	u.phoneVerifiedAt = nil
}

// VerifyPhone marks the current phone number as verified.
func (u *User) VerifyPhone() error {
	if u.phone == nil {
		return ruleErr(CodeNoPhone, "cannot verify phone: no phone number set")
	}
	if u.isPhoneVerified {
		return ruleErr(CodePhoneVerified, "phone is already verified")
	}
	u.isPhoneVerified = true
	now := time.Now().UTC()
	u.phoneVerifiedAt = &now
	return nil
}

// ChangePassword replaces the stored password hash.
func (u *User) ChangePassword(newHash PasswordHash) {
	u.passwordHash = newHash
}

// UpdateSubscription moves the trader to another plan/billing period.
func (u *User) UpdateSubscription(subscriptionPlanID int, billingPeriod BillingPeriod) error {
	if u.role != RoleTrader {
		return ruleErr(CodeNotTrader, "only traders can have subscriptions")
	}
	if subscriptionPlanID <= 0 {
		return validationErr("subscriptionPlanId", "subscription plan cannot be empty")
	}
	u.subscriptionPlanID = &subscriptionPlanID
	u.billingPeriod = &billingPeriod
	return nil
}

// GrantPlanOverride attaches an administrative override, replacing any
// existing one wholesale. Traders only.
func (u *User) GrantPlanOverride(override *PlanOverride) error {
	if u.role != RoleTrader {
		return ruleErr(CodeNotTrader, "only traders can receive plan overrides")
	}
	if override == nil {
		return validationErr("planOverride", "plan override cannot be nil")
	}
	u.planOverride = override
	return nil
}

// RevokePlanOverride removes the current override. Fails when none exists.
func (u *User) RevokePlanOverride() error {
	if u.planOverride == nil {
		return ruleErr(CodeNoOverride, "no plan override to revoke")
	}
	u.planOverride = nil
	return nil
}

// SetCustomFees replaces the user's custom fee rates (nil clears them).
// Unlike the other subscription mutators this carries no Trader-role
// check; see TestUser_SetCustomFees_NoRoleRestriction.
func (u *User) SetCustomFees(customFees *TradingFees) {
	if customFees == nil {
		u.customFees = nil
		return
	}
	f := *customFees
	u.customFees = &f
}

// EffectiveStrategyLimit resolves the strategy limit actually applied to
// the user: the override's limit when an active override sets one,
// otherwise the plan limit unchanged. An override that only replaces
// features does not touch the limit.
func (u *User) EffectiveStrategyLimit(planLimit int) int {
	if u.planOverride != nil && u.planOverride.IsActive() {
		if limit := u.planOverride.StrategyLimitOverride(); limit != nil {
			return *limit
		}
	}
	return planLimit
}

// EffectiveFeatures resolves the feature bundle actually applied to the
// user: the override's full bundle when an active override sets one,
// otherwise the plan bundle unchanged. The replacement is all-or-nothing
// at the bundle level, unlike the per-field fee merge.
func (u *User) EffectiveFeatures(planFeatures PlanFeatures) PlanFeatures {
	if u.planOverride != nil && u.planOverride.IsActive() {
		if features := u.planOverride.FeaturesOverride(); features != nil {
			return *features
		}
	}
	return planFeatures
}

// RecordLogin stamps the last-login time.
func (u *User) RecordLogin() {
	now := time.Now().UTC()
	u.lastLoginAt = &now
}

// Suspend moves an active account to Suspended. Re-suspending and
// suspending a deleted account both fail.
func (u *User) Suspend() error {
	if u.status == StatusSuspended {
		return ruleErr(CodeAlreadySuspended, "user is already suspended")
	}
	if u.status == StatusDeleted {
		return ruleErr(CodeUserDeleted, "cannot suspend a deleted user")
	}
	u.status = StatusSuspended
	return nil
}

// Reactivate moves a suspended account back to Active.
func (u *User) Reactivate() error {
	if u.status == StatusActive {
		return ruleErr(CodeAlreadyActive, "user is already active")
	}
	if u.status == StatusDeleted {
		return ruleErr(CodeUserDeleted, "cannot reactivate a deleted user")
	}
	u.status = StatusActive
	return nil
}

// Delete soft-deletes the account. Deleted is terminal: no further
// transitions are possible.
func (u *User) Delete() error {
	if u.status == StatusDeleted {
		return ruleErr(CodeAlreadyDeleted, "user is already deleted")
	}
	u.status = StatusDeleted
	return nil
}
