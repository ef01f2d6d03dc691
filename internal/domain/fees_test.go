package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

// optRate turns "" into an unset rate and anything else into a rate pointer.
func optRate(s string) *decimal.Decimal {
	if s == "" {
		return nil
	}
	return Rate(s)
}

func mustFees(t *testing.T, broker, b3, settlement, incomeTax, dayTrade string) TradingFees {
	t.Helper()
	f, err := NewTradingFees(optRate(broker), optRate(b3), optRate(settlement), optRate(incomeTax), optRate(dayTrade))
	if err != nil {
		t.Fatalf("NewTradingFees failed: %v", err)
	}
	return f
}

// ============================================================================
// TEST: Rate bounds
// ============================================================================

func TestNewTradingFees_RateBounds(t *testing.T) {
	testCases := []struct {
		name    string
		rate    string
		wantErr bool
	}{
		{"zero", "0", false},
		{"one", "1", false},
		{"typical", "0.000325", false},
		{"negative", "-0.01", true},
		{"above one", "1.01", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTradingFees(optRate(tc.rate), nil, nil, nil, nil)
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantErr && !IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestTradingFees_HasCustomFees(t *testing.T) {
	if EmptyTradingFees().HasCustomFees() {
		t.Error("empty fees should not report custom fees")
	}
	if !mustFees(t, "", "", "", "0.15", "").HasCustomFees() {
		t.Error("fees with one rate set should report custom fees")
	}
}

// ============================================================================
// TEST: Per-field merge with system defaults
// ============================================================================

func TestTradingFees_MergeWithDefaults_PerField(t *testing.T) {
	defaults := mustFees(t, "0", "0.000325", "0.000275", "0.15", "0.20")

	// Custom overrides only the income tax rates.
	custom := mustFees(t, "", "", "", "0.10", "0.175")

	merged := custom.MergeWithDefaults(defaults)

	if got := merged.BrokerCommissionRate(); got == nil || !got.IsZero() {
		t.Errorf("broker commission should inherit default 0, got %v", got)
	}
	if got := merged.B3EmolumentRate(); got == nil || !got.Equal(*Rate("0.000325")) {
		t.Errorf("b3 emolument should inherit default, got %v", got)
	}
	if got := merged.SettlementFeeRate(); got == nil || !got.Equal(*Rate("0.000275")) {
		t.Errorf("settlement fee should inherit default, got %v", got)
	}
	if got := merged.IncomeTaxRate(); got == nil || !got.Equal(*Rate("0.10")) {
		t.Errorf("income tax should use custom 0.10, got %v", got)
	}
	if got := merged.DayTradeIncomeTaxRate(); got == nil || !got.Equal(*Rate("0.175")) {
		t.Errorf("day-trade tax should use custom 0.175, got %v", got)
	}
}

func TestTradingFees_MergeWithDefaults_EmptyYieldsDefaults(t *testing.T) {
	defaults := mustFees(t, "0", "0.000325", "0.000275", "0.15", "0.20")

	merged := EmptyTradingFees().MergeWithDefaults(defaults)

	if !merged.Equal(defaults) {
		t.Errorf("merging empty custom fees should yield exactly the defaults:\n got %s\nwant %s", merged, defaults)
	}
}

func TestTradingFees_MergeWithDefaults_FullCustomIgnoresDefaults(t *testing.T) {
	defaults := mustFees(t, "0", "0.000325", "0.000275", "0.15", "0.20")
	custom := mustFees(t, "0.001", "0.0004", "0.0003", "0.10", "0.18")

	merged := custom.MergeWithDefaults(defaults)

	if !merged.Equal(custom) {
		t.Errorf("fully-populated custom fees should win every field:\n got %s\nwant %s", merged, custom)
	}
}

func TestTradingFees_Equal(t *testing.T) {
	a := mustFees(t, "", "", "", "0.15", "")
	b := mustFees(t, "", "", "", "0.15", "")
	c := mustFees(t, "", "", "", "0.20", "")

	if !a.Equal(b) {
		t.Error("identical fees should be equal")
	}
	if a.Equal(c) {
		t.Error("different rates should not be equal")
	}
	if a.Equal(EmptyTradingFees()) {
		t.Error("set rate should not equal unset rate")
	}
}
