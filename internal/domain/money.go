package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an immutable currency + amount pair. All monetary values use
// shopspring/decimal — never float64 for money. Arithmetic between
// different currencies is rejected.
type Money struct {
	amount   decimal.Decimal
	currency string
}

var currencyCodePattern = regexp.MustCompile(`^[A-Za-z]{3}$`)

// NewMoney creates a Money value. The currency must be a 3-letter ISO 4217
// code; the amount must be non-negative. BRL amounts are limited to 2
// decimal places (centavos).
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if strings.TrimSpace(currency) == "" {
		return Money{}, validationErr("currency", "currency cannot be empty")
	}
	if !currencyCodePattern.MatchString(currency) {
		return Money{}, validationErr("currency", "currency must be 3 letters (ISO 4217)")
	}
	if amount.IsNegative() {
		return Money{}, validationErr("amount", "amount cannot be negative")
	}

	normalized := strings.ToUpper(currency)
	if normalized == "BRL" && !amount.Round(2).Equal(amount) {
		return Money{}, validationErr("amount", "BRL amount can have at most 2 decimal places")
	}

	return Money{amount: amount, currency: normalized}, nil
}

// BRL creates a Money value in Brazilian Reais.
func BRL(amount decimal.Decimal) (Money, error) {
	return NewMoney(amount, "BRL")
}

// ZeroMoney returns a zero amount in the given currency.
func ZeroMoney(currency string) Money {
	return Money{amount: decimal.Zero, currency: strings.ToUpper(currency)}
}

// Amount returns the decimal amount.
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the 3-letter currency code.
func (m Money) Currency() string { return m.currency }

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.amount.IsZero() }

// Add returns m + other. Fails when currencies differ.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, ruleErr(CodeCurrencyMismatch,
			fmt.Sprintf("cannot add %s to %s", other.currency, m.currency))
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Subtract returns m - other. Fails when currencies differ.
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, ruleErr(CodeCurrencyMismatch,
			fmt.Sprintf("cannot subtract %s from %s", other.currency, m.currency))
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Multiply returns m scaled by the multiplier.
func (m Money) Multiply(multiplier decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(multiplier), currency: m.currency}
}

// Divide returns m divided by the divisor. Fails on a zero divisor.
func (m Money) Divide(divisor decimal.Decimal) (Money, error) {
	if divisor.IsZero() {
		return Money{}, ruleErr(CodeDivideByZero, "cannot divide money by zero")
	}
	return Money{amount: m.amount.Div(divisor), currency: m.currency}, nil
}

// Compare returns -1, 0 or 1 comparing amounts. Comparison is only valid
// within the same currency.
func (m Money) Compare(other Money) (int, error) {
	if m.currency != other.currency {
		return 0, ruleErr(CodeCurrencyMismatch,
			fmt.Sprintf("cannot compare %s with %s", m.currency, other.currency))
	}
	return m.amount.Cmp(other.amount), nil
}

// Equal reports structural equality (same currency, same amount).
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

func (m Money) String() string {
	switch m.currency {
	case "BRL":
		return "R$ " + m.amount.StringFixed(2)
	case "USD":
		return "$ " + m.amount.StringFixed(2)
	default:
		return m.amount.StringFixed(2) + " " + m.currency
	}
}
