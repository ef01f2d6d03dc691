package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================================
// TEST: Plan creation invariants
// ============================================================================

func TestNewSubscriptionPlan_Validation(t *testing.T) {
	usd, err := NewMoney(decimal.NewFromInt(10), "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testCases := []struct {
		name          string
		planName      string
		monthly       Money
		annual        Money
		discount      string
		strategyLimit int
		wantErr       bool
	}{
		{"valid", "Pleno", mustBRL(t, "99.90"), mustBRL(t, "959.04"), "0.20", 10, false},
		{"free plan", "Básico", ZeroMoney("BRL"), ZeroMoney("BRL"), "0", 3, false},
		{"empty name", "  ", mustBRL(t, "99.90"), mustBRL(t, "959.04"), "0.20", 10, true},
		{"name too long", strings.Repeat("x", MaxPlanNameLength+1), mustBRL(t, "99.90"), mustBRL(t, "959.04"), "0.20", 10, true},
		{"non-BRL monthly", "Pleno", usd, mustBRL(t, "959.04"), "0.20", 10, true},
		{"discount above one", "Pleno", mustBRL(t, "99.90"), mustBRL(t, "959.04"), "1.5", 10, true},
		{"annual equals 12x monthly", "Pleno", mustBRL(t, "100.00"), mustBRL(t, "1200.00"), "0", 10, true},
		{"annual above 12x monthly", "Pleno", mustBRL(t, "100.00"), mustBRL(t, "1300.00"), "0", 10, true},
		{"annual just below 12x monthly", "Pleno", mustBRL(t, "100.00"), mustBRL(t, "1199.99"), "0", 10, false},
		{"zero strategy limit", "Pleno", mustBRL(t, "99.90"), mustBRL(t, "959.04"), "0.20", 0, true},
		{"negative strategy limit", "Pleno", mustBRL(t, "99.90"), mustBRL(t, "959.04"), "0.20", -1, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSubscriptionPlan(tc.planName, tc.monthly, tc.annual,
				decimal.RequireFromString(tc.discount), tc.strategyLimit, PlenoFeatures())
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

// ============================================================================
// TEST: Stock plan factories
// ============================================================================

func TestStockPlans(t *testing.T) {
	basico, err := NewBasicoPlan()
	if err != nil {
		t.Fatalf("Básico: %v", err)
	}
	if basico.StrategyLimit() != 3 || !basico.PriceMonthly().IsZero() {
		t.Errorf("unexpected Básico plan: limit=%d monthly=%s", basico.StrategyLimit(), basico.PriceMonthly())
	}

	pleno, err := NewPlenoPlan()
	if err != nil {
		t.Fatalf("Pleno: %v", err)
	}
	if pleno.StrategyLimit() != 10 {
		t.Errorf("expected Pleno limit 10, got %d", pleno.StrategyLimit())
	}
	if pleno.Features().ConsultingTools {
		t.Error("Pleno must not include consulting tools")
	}

	consultor, err := NewConsultorPlan()
	if err != nil {
		t.Fatalf("Consultor: %v", err)
	}
	if consultor.StrategyLimit() != 50 || !consultor.Features().ConsultingTools {
		t.Errorf("unexpected Consultor plan: limit=%d features=%s", consultor.StrategyLimit(), consultor.Features())
	}
}

// ============================================================================
// TEST: Mutations stamp updatedAt; status toggles are idempotent
// ============================================================================

func TestSubscriptionPlan_UpdatePricing(t *testing.T) {
	plan, err := NewPlenoPlan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.UpdatedAt() != nil {
		t.Fatal("fresh plan should have no updatedAt")
	}

	err = plan.UpdatePricing(mustBRL(t, "109.90"), mustBRL(t, "1055.04"), decimal.RequireFromString("0.20"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.UpdatedAt() == nil {
		t.Error("UpdatePricing must stamp updatedAt")
	}
	if !plan.PriceMonthly().Equal(mustBRL(t, "109.90")) {
		t.Errorf("pricing not applied: %s", plan.PriceMonthly())
	}

	// Invalid update must not partially apply.
	err = plan.UpdatePricing(mustBRL(t, "100.00"), mustBRL(t, "1200.00"), decimal.Zero)
	if err == nil {
		t.Fatal("expected undiscounted annual price to fail")
	}
	if !plan.PriceMonthly().Equal(mustBRL(t, "109.90")) {
		t.Error("failed update must leave pricing untouched")
	}
}

func TestSubscriptionPlan_ActivateDeactivate_Idempotent(t *testing.T) {
	plan, err := NewPlenoPlan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !plan.IsActive() {
		t.Fatal("new plan should start active")
	}

	// Activating an active plan is a silent no-op, no updatedAt stamp.
	plan.Activate()
	if plan.UpdatedAt() != nil {
		t.Error("no-op Activate must not stamp updatedAt")
	}

	plan.Deactivate()
	if plan.IsActive() {
		t.Error("plan should be inactive")
	}
	first := plan.UpdatedAt()
	if first == nil {
		t.Fatal("Deactivate must stamp updatedAt")
	}

	time.Sleep(5 * time.Millisecond)
	plan.Deactivate()
	if got := plan.UpdatedAt(); !got.Equal(*first) {
		t.Error("no-op Deactivate must not stamp updatedAt again")
	}

	plan.Activate()
	if !plan.IsActive() {
		t.Error("plan should be active again")
	}
}

func TestSubscriptionPlan_UpdateStrategyLimit(t *testing.T) {
	plan, err := NewPlenoPlan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := plan.UpdateStrategyLimit(0); err == nil {
		t.Error("expected non-positive limit to fail")
	}
	if err := plan.UpdateStrategyLimit(25); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.StrategyLimit() != 25 {
		t.Errorf("expected 25, got %d", plan.StrategyLimit())
	}
}
