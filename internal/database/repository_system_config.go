package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"mytrader-platform/internal/domain"
)

// GetSystemConfig retrieves the platform configuration singleton. Returns
// (nil, nil) before the first save.
func (r *Repository) GetSystemConfig(ctx context.Context) (*domain.SystemConfig, error) {
	row := SystemConfigRow{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, broker_commission_rate, b3_emolument_rate, settlement_fee_rate,
			income_tax_rate, day_trade_income_tax_rate,
			max_open_strategies_per_user, max_strategies_in_template,
			updated_at, updated_by
		FROM system_config WHERE id = $1`, domain.SystemConfigID).Scan(
		&row.ID, &row.BrokerCommissionRate, &row.B3EmolumentRate,
		&row.SettlementFeeRate, &row.IncomeTaxRate, &row.DayTradeIncomeTaxRate,
		&row.MaxOpenStrategiesPerUser, &row.MaxStrategiesInTemplate,
		&row.UpdatedAt, &row.UpdatedBy,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get system config: %w", err)
	}

	return row.ToDomain()
}

// SaveSystemConfig upserts the configuration singleton (always row 1).
func (r *Repository) SaveSystemConfig(ctx context.Context, cfg *domain.SystemConfig) error {
	fees := cfg.Fees()
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO system_config (
			id, broker_commission_rate, b3_emolument_rate, settlement_fee_rate,
			income_tax_rate, day_trade_income_tax_rate,
			max_open_strategies_per_user, max_strategies_in_template,
			updated_at, updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			broker_commission_rate = EXCLUDED.broker_commission_rate,
			b3_emolument_rate = EXCLUDED.b3_emolument_rate,
			settlement_fee_rate = EXCLUDED.settlement_fee_rate,
			income_tax_rate = EXCLUDED.income_tax_rate,
			day_trade_income_tax_rate = EXCLUDED.day_trade_income_tax_rate,
			max_open_strategies_per_user = EXCLUDED.max_open_strategies_per_user,
			max_strategies_in_template = EXCLUDED.max_strategies_in_template,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by`,
		cfg.ID(),
		fees.BrokerCommissionRate(), fees.B3EmolumentRate(),
		fees.SettlementFeeRate(), fees.IncomeTaxRate(), fees.DayTradeIncomeTaxRate(),
		cfg.MaxOpenStrategiesPerUser(), cfg.MaxStrategiesInTemplate(),
		cfg.UpdatedAt(), cfg.UpdatedBy(),
	)
	if err != nil {
		return fmt.Errorf("failed to save system config: %w", err)
	}
	return nil
}
