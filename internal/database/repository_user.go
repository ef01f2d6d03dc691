package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"mytrader-platform/internal/domain"
)

const userColumns = `
	id, email, password_hash, full_name, display_name,
	phone_country_code, phone_number, is_phone_verified, phone_verified_at,
	role, status, risk_profile, subscription_plan_id, billing_period,
	override_strategy_limit, override_features, override_reason,
	override_granted_by, override_granted_at, override_expires_at,
	custom_broker_commission_rate, custom_b3_emolument_rate,
	custom_settlement_fee_rate, custom_income_tax_rate,
	custom_day_trade_income_tax_rate,
	created_at, last_login_at`

// CreateUser persists a newly registered user
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	args, err := userWriteArgs(user)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)
	`

	if _, err := r.db.Pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UpdateUser rewrites the user's full persisted state
func (r *Repository) UpdateUser(ctx context.Context, user *domain.User) error {
	args, err := userWriteArgs(user)
	if err != nil {
		return err
	}

	query := `
		UPDATE users SET
			email = $2,
			password_hash = $3,
			full_name = $4,
			display_name = $5,
			phone_country_code = $6,
			phone_number = $7,
			is_phone_verified = $8,
			phone_verified_at = $9,
			role = $10,
			status = $11,
			risk_profile = $12,
			subscription_plan_id = $13,
			billing_period = $14,
			override_strategy_limit = $15,
			override_features = $16,
			override_reason = $17,
			override_granted_by = $18,
			override_granted_at = $19,
			override_expires_at = $20,
			custom_broker_commission_rate = $21,
			custom_b3_emolument_rate = $22,
			custom_settlement_fee_rate = $23,
			custom_income_tax_rate = $24,
			custom_day_trade_income_tax_rate = $25,
			created_at = $26,
			last_login_at = $27
		WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s not found", user.ID())
	}
	return nil
}

// GetUserByID retrieves a user by ID. Returns (nil, nil) when not found.
func (r *Repository) GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
}

// GetUserByEmail retrieves a user by normalized email. Returns (nil, nil)
// when not found.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *Repository) getUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	row := UserRow{}
	err := r.db.Pool.QueryRow(ctx, query, arg).Scan(
		&row.ID, &row.Email, &row.PasswordHash, &row.FullName, &row.DisplayName,
		&row.PhoneCountry, &row.PhoneNumber, &row.IsPhoneVerified, &row.PhoneVerifiedAt,
		&row.Role, &row.Status, &row.RiskProfile, &row.SubscriptionPlanID, &row.BillingPeriod,
		&row.OverrideStrategyLimit, &row.OverrideFeatures, &row.OverrideReason,
		&row.OverrideGrantedBy, &row.OverrideGrantedAt, &row.OverrideExpiresAt,
		&row.CustomBrokerCommissionRate, &row.CustomB3EmolumentRate,
		&row.CustomSettlementFeeRate, &row.CustomIncomeTaxRate,
		&row.CustomDayTradeIncomeTaxRate,
		&row.CreatedAt, &row.LastLoginAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return row.ToDomain()
}

// ListUsersByPlan retrieves all users subscribed to a plan, for admin
// tooling and plan deactivation checks.
func (r *Repository) ListUsersByPlan(ctx context.Context, planID int) ([]*domain.User, error) {
	return r.listUsers(ctx,
		`SELECT `+userColumns+` FROM users WHERE subscription_plan_id = $1 ORDER BY created_at`,
		planID)
}

// ListUsersByStatus retrieves all users in the given lifecycle status.
func (r *Repository) ListUsersByStatus(ctx context.Context, status domain.Status) ([]*domain.User, error) {
	return r.listUsers(ctx,
		`SELECT `+userColumns+` FROM users WHERE status = $1 ORDER BY created_at`,
		string(status))
}

func (r *Repository) listUsers(ctx context.Context, query string, args ...any) ([]*domain.User, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		row := UserRow{}
		if err := rows.Scan(
			&row.ID, &row.Email, &row.PasswordHash, &row.FullName, &row.DisplayName,
			&row.PhoneCountry, &row.PhoneNumber, &row.IsPhoneVerified, &row.PhoneVerifiedAt,
			&row.Role, &row.Status, &row.RiskProfile, &row.SubscriptionPlanID, &row.BillingPeriod,
			&row.OverrideStrategyLimit, &row.OverrideFeatures, &row.OverrideReason,
			&row.OverrideGrantedBy, &row.OverrideGrantedAt, &row.OverrideExpiresAt,
			&row.CustomBrokerCommissionRate, &row.CustomB3EmolumentRate,
			&row.CustomSettlementFeeRate, &row.CustomIncomeTaxRate,
			&row.CustomDayTradeIncomeTaxRate,
			&row.CreatedAt, &row.LastLoginAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		user, err := row.ToDomain()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// userWriteArgs flattens the aggregate into the positional args shared by
// CreateUser and UpdateUser.
func userWriteArgs(user *domain.User) ([]any, error) {
	var phoneCountry, phoneNumber *string
	if p := user.Phone(); p != nil {
		cc, num := p.CountryCode(), p.Number()
		phoneCountry, phoneNumber = &cc, &num
	}

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

	var overrideLimit *int
	var overrideFeatures []byte
	var overrideReason *string
	var overrideGrantedBy *uuid.UUID
	var overrideGrantedAt, overrideExpiresAt *time.Time
	if o := user.PlanOverride(); o != nil {
		overrideLimit = o.StrategyLimitOverride()
		data, err := overrideFeaturesJSON(o.FeaturesOverride())
		if err != nil {
			return nil, err
		}
		overrideFeatures = data
		reason := o.Reason()
		overrideReason = &reason
		grantedBy := o.GrantedBy()
		overrideGrantedBy = &grantedBy
		grantedAt := o.GrantedAt()
		overrideGrantedAt = &grantedAt
		overrideExpiresAt = o.ExpiresAt()
	}

	var broker, b3, settlement, incomeTax, dayTrade *decimal.Decimal
	if f := user.CustomFees(); f != nil {
		broker = f.BrokerCommissionRate()
		b3 = f.B3EmolumentRate()
		settlement = f.SettlementFeeRate()
		incomeTax = f.IncomeTaxRate()
		dayTrade = f.DayTradeIncomeTaxRate()
	}

	return []any{
		user.ID(), user.Email().Value(), user.PasswordHash().Value(),
		user.FullName(), user.DisplayName(),
		phoneCountry, phoneNumber, user.IsPhoneVerified(), user.PhoneVerifiedAt(),
		string(user.Role()), string(user.Status()), riskProfile,
		user.SubscriptionPlanID(), billing,
		overrideLimit, overrideFeatures, overrideReason,
		overrideGrantedBy, overrideGrantedAt, overrideExpiresAt,
		broker, b3, settlement, incomeTax, dayTrade,
		user.CreatedAt(), user.LastLoginAt(),
	}, nil
}
