package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func mustBRL(t *testing.T, amount string) Money {
	t.Helper()
	m, err := BRL(decimal.RequireFromString(amount))
	if err != nil {
		t.Fatalf("BRL(%s) failed: %v", amount, err)
	}
	return m
}

// ============================================================================
// TEST: Money creation invariants
// ============================================================================

func TestNewMoney_Validation(t *testing.T) {
	testCases := []struct {
		name     string
		amount   string
		currency string
		wantErr  bool
	}{
		{"valid BRL", "99.90", "BRL", false},
		{"valid USD", "10.5", "USD", false},
		{"zero amount", "0", "BRL", false},
		{"lowercase currency normalized", "10", "brl", false},
		{"negative amount", "-1", "BRL", true},
		{"empty currency", "10", "", true},
		{"two-letter currency", "10", "BR", true},
		{"four-letter currency", "10", "BRLX", true},
		{"digits in currency", "10", "BR1", true},
		{"BRL sub-cent precision", "100.123", "BRL", true},
		{"BRL trailing zeros ok", "100.120", "BRL", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := NewMoney(decimal.RequireFromString(tc.amount), tc.currency)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", m)
				}
				if !IsValidation(err) {
					t.Errorf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if m.Currency() != "BRL" && m.Currency() != "USD" {
				t.Errorf("currency not normalized: %q", m.Currency())
			}
		})
	}
}

func TestNewMoney_NonBRLAllowsExtraPrecision(t *testing.T) {
	// Only BRL enforces the 2-decimal rule.
	if _, err := NewMoney(decimal.RequireFromString("100.123"), "USD"); err != nil {
		t.Fatalf("USD with 3 decimals should be valid: %v", err)
	}
}

// ============================================================================
// TEST: Money arithmetic and currency matching
// ============================================================================

func TestMoney_Add(t *testing.T) {
	sum, err := mustBRL(t, "100").Add(mustBRL(t, "50"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sum.Equal(mustBRL(t, "150")) {
		t.Errorf("expected R$ 150, got %s", sum)
	}
}

func TestMoney_Add_CurrencyMismatch(t *testing.T) {
	usd, err := NewMoney(decimal.RequireFromString("50"), "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = mustBRL(t, "100").Add(usd)
	if err == nil {
		t.Fatal("expected cross-currency add to fail")
	}
	if !IsRuleViolation(err) {
		t.Errorf("expected rule violation, got %v", err)
	}
	if RuleCode(err) != CodeCurrencyMismatch {
		t.Errorf("expected %s, got %s", CodeCurrencyMismatch, RuleCode(err))
	}
}

func TestMoney_Subtract(t *testing.T) {
	diff, err := mustBRL(t, "100").Subtract(mustBRL(t, "40.50"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !diff.Equal(mustBRL(t, "59.50")) {
		t.Errorf("expected R$ 59.50, got %s", diff)
	}

	if _, err := mustBRL(t, "100").Subtract(ZeroMoney("USD")); err == nil {
		t.Error("expected cross-currency subtract to fail")
	}
}

func TestMoney_MultiplyDivide(t *testing.T) {
	product := mustBRL(t, "99.90").Multiply(decimal.NewFromInt(12))
	if !product.Amount().Equal(decimal.RequireFromString("1198.80")) {
		t.Errorf("expected 1198.80, got %s", product.Amount())
	}

	half, err := mustBRL(t, "100").Divide(decimal.NewFromInt(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !half.Amount().Equal(decimal.NewFromInt(50)) {
		t.Errorf("expected 50, got %s", half.Amount())
	}

	if _, err := mustBRL(t, "100").Divide(decimal.Zero); err == nil {
		t.Error("expected divide by zero to fail")
	}
}

func TestMoney_Compare(t *testing.T) {
	cmp, err := mustBRL(t, "100").Compare(mustBRL(t, "50"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmp != 1 {
		t.Errorf("expected 1, got %d", cmp)
	}

	if _, err := mustBRL(t, "100").Compare(ZeroMoney("USD")); err == nil {
		t.Error("expected cross-currency compare to fail")
	}
}

func TestMoney_String(t *testing.T) {
	if got := mustBRL(t, "99.9").String(); got != "R$ 99.90" {
		t.Errorf("expected R$ 99.90, got %q", got)
	}
}
