package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"mytrader-platform/internal/domain"
)

const planColumns = `
	id, name, currency, price_monthly, price_annual, annual_discount_percent,
	strategy_limit, realtime_data, advanced_alerts, consulting_tools,
	community_access, is_active, created_at, updated_at`

// CreatePlan persists a new subscription plan and assigns its generated ID.
func (r *Repository) CreatePlan(ctx context.Context, plan *domain.SubscriptionPlan) error {
	features := plan.Features()
	query := `
		INSERT INTO subscription_plans (
			name, currency, price_monthly, price_annual, annual_discount_percent,
			strategy_limit, realtime_data, advanced_alerts, consulting_tools,
			community_access, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	var id int
	err := r.db.Pool.QueryRow(ctx, query,
		plan.Name(), plan.PriceMonthly().Currency(),
		plan.PriceMonthly().Amount(), plan.PriceAnnual().Amount(),
		plan.AnnualDiscountPercent(), plan.StrategyLimit(),
		features.RealtimeData, features.AdvancedAlerts,
		features.ConsultingTools, features.CommunityAccess,
		plan.IsActive(), plan.CreatedAt(), plan.UpdatedAt(),
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to create plan: %w", err)
	}

	plan.SetID(id)
	return nil
}

// UpdatePlan rewrites the plan's persisted state
func (r *Repository) UpdatePlan(ctx context.Context, plan *domain.SubscriptionPlan) error {
	features := plan.Features()
	query := `
		UPDATE subscription_plans SET
			name = $2,
			currency = $3,
			price_monthly = $4,
			price_annual = $5,
			annual_discount_percent = $6,
			strategy_limit = $7,
			realtime_data = $8,
			advanced_alerts = $9,
			consulting_tools = $10,
			community_access = $11,
			is_active = $12,
			updated_at = $13
		WHERE id = $1
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		plan.ID(), plan.Name(), plan.PriceMonthly().Currency(),
		plan.PriceMonthly().Amount(), plan.PriceAnnual().Amount(),
		plan.AnnualDiscountPercent(), plan.StrategyLimit(),
		features.RealtimeData, features.AdvancedAlerts,
		features.ConsultingTools, features.CommunityAccess,
		plan.IsActive(), plan.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("plan %d not found", plan.ID())
	}
	return nil
}

// GetPlanByID retrieves a plan by ID. Returns (nil, nil) when not found.
func (r *Repository) GetPlanByID(ctx context.Context, planID int) (*domain.SubscriptionPlan, error) {
	return r.getPlan(ctx, `SELECT `+planColumns+` FROM subscription_plans WHERE id = $1`, planID)
}

// GetPlanByName retrieves a plan by its unique name. Returns (nil, nil)
// when not found.
func (r *Repository) GetPlanByName(ctx context.Context, name string) (*domain.SubscriptionPlan, error) {
	return r.getPlan(ctx, `SELECT `+planColumns+` FROM subscription_plans WHERE name = $1`, name)
}

func (r *Repository) getPlan(ctx context.Context, query string, arg any) (*domain.SubscriptionPlan, error) {
	row := PlanRow{}
	err := r.db.Pool.QueryRow(ctx, query, arg).Scan(
		&row.ID, &row.Name, &row.Currency,
		&row.PriceMonthly, &row.PriceAnnual, &row.AnnualDiscountPercent,
		&row.StrategyLimit, &row.RealtimeData, &row.AdvancedAlerts,
		&row.ConsultingTools, &row.CommunityAccess,
		&row.IsActive, &row.CreatedAt, &row.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	return row.ToDomain()
}

// ListPlans retrieves the plan catalog, optionally restricted to active
// plans (the public signup view).
func (r *Repository) ListPlans(ctx context.Context, activeOnly bool) ([]*domain.SubscriptionPlan, error) {
	query := `SELECT ` + planColumns + ` FROM subscription_plans ORDER BY price_monthly`
	if activeOnly {
		query = `SELECT ` + planColumns + ` FROM subscription_plans WHERE is_active = TRUE ORDER BY price_monthly`
	}

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var plans []*domain.SubscriptionPlan
	for rows.Next() {
		row := PlanRow{}
		if err := rows.Scan(
			&row.ID, &row.Name, &row.Currency,
			&row.PriceMonthly, &row.PriceAnnual, &row.AnnualDiscountPercent,
			&row.StrategyLimit, &row.RealtimeData, &row.AdvancedAlerts,
			&row.ConsultingTools, &row.CommunityAccess,
			&row.IsActive, &row.CreatedAt, &row.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan plan row: %w", err)
		}
		plan, err := row.ToDomain()
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

// CountPlanSubscribers reports how many users sit on a plan, used before
// deactivation.
func (r *Repository) CountPlanSubscribers(ctx context.Context, planID int) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE subscription_plan_id = $1 AND status != 'deleted'`,
		planID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count plan subscribers: %w", err)
	}
	return count, nil
}
