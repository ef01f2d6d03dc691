package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TradingFees holds per-user fee rates. Every field is optional: a nil
// rate means "inherit the system default" for that field. Rates are
// fractions in [0, 1].
type TradingFees struct {
	brokerCommissionRate  *decimal.Decimal
	b3EmolumentRate       *decimal.Decimal
	settlementFeeRate     *decimal.Decimal
	incomeTaxRate         *decimal.Decimal
	dayTradeIncomeTaxRate *decimal.Decimal
}

// NewTradingFees creates a TradingFees value. Each supplied rate must lie
// in [0, 1]; nil rates are left unset.
func NewTradingFees(brokerCommission, b3Emolument, settlementFee, incomeTax, dayTradeIncomeTax *decimal.Decimal) (TradingFees, error) {
	fields := []struct {
		name string
		rate *decimal.Decimal
	}{
		{"brokerCommissionRate", brokerCommission},
		{"b3EmolumentRate", b3Emolument},
		{"settlementFeeRate", settlementFee},
		{"incomeTaxRate", incomeTax},
		{"dayTradeIncomeTaxRate", dayTradeIncomeTax},
	}
	for _, f := range fields {
		if f.rate == nil {
			continue
		}
		if f.rate.IsNegative() || f.rate.GreaterThan(decimal.NewFromInt(1)) {
			return TradingFees{}, validationErr(f.name, "rate must be between 0 and 1 (0% to 100%)")
		}
	}

	return TradingFees{
		brokerCommissionRate:  copyRate(brokerCommission),
		b3EmolumentRate:       copyRate(b3Emolument),
		settlementFeeRate:     copyRate(settlementFee),
		incomeTaxRate:         copyRate(incomeTax),
		dayTradeIncomeTaxRate: copyRate(dayTradeIncomeTax),
	}, nil
}

// EmptyTradingFees returns a TradingFees with every rate unset (full
// inheritance from defaults).
func EmptyTradingFees() TradingFees {
	return TradingFees{}
}

func copyRate(rate *decimal.Decimal) *decimal.Decimal {
	if rate == nil {
		return nil
	}
	r := *rate
	return &r
}

// BrokerCommissionRate returns the broker commission rate, or nil when unset.
func (f TradingFees) BrokerCommissionRate() *decimal.Decimal { return copyRate(f.brokerCommissionRate) }

// B3EmolumentRate returns the B3 emolument rate, or nil when unset.
func (f TradingFees) B3EmolumentRate() *decimal.Decimal { return copyRate(f.b3EmolumentRate) }

// SettlementFeeRate returns the settlement fee rate, or nil when unset.
func (f TradingFees) SettlementFeeRate() *decimal.Decimal { return copyRate(f.settlementFeeRate) }

// IncomeTaxRate returns the swing-trade income tax rate, or nil when unset.
func (f TradingFees) IncomeTaxRate() *decimal.Decimal { return copyRate(f.incomeTaxRate) }

// DayTradeIncomeTaxRate returns the day-trade income tax rate, or nil when unset.
func (f TradingFees) DayTradeIncomeTaxRate() *decimal.Decimal { return copyRate(f.dayTradeIncomeTaxRate) }

// HasCustomFees reports whether any rate is set.
func (f TradingFees) HasCustomFees() bool {
	return f.brokerCommissionRate != nil ||
		f.b3EmolumentRate != nil ||
		f.settlementFeeRate != nil ||
		f.incomeTaxRate != nil ||
		f.dayTradeIncomeTaxRate != nil
}

// MergeWithDefaults resolves effective rates field by field: each rate
// uses this value when set, otherwise the default's value. This is the
// per-field merge — plan overrides (bundle-level) deliberately do not
// work this way.
func (f TradingFees) MergeWithDefaults(defaults TradingFees) TradingFees {
	pick := func(custom, def *decimal.Decimal) *decimal.Decimal {
		if custom != nil {
			return copyRate(custom)
		}
		return copyRate(def)
	}
	return TradingFees{
		brokerCommissionRate:  pick(f.brokerCommissionRate, defaults.brokerCommissionRate),
		b3EmolumentRate:       pick(f.b3EmolumentRate, defaults.b3EmolumentRate),
		settlementFeeRate:     pick(f.settlementFeeRate, defaults.settlementFeeRate),
		incomeTaxRate:         pick(f.incomeTaxRate, defaults.incomeTaxRate),
		dayTradeIncomeTaxRate: pick(f.dayTradeIncomeTaxRate, defaults.dayTradeIncomeTaxRate),
	}
}

// Equal reports structural equality across all five rates.
func (f TradingFees) Equal(other TradingFees) bool {
	eq := func(a, b *decimal.Decimal) bool {
		if a == nil || b == nil {
			return a == nil && b == nil
		}
		return a.Equal(*b)
	}
	return eq(f.brokerCommissionRate, other.brokerCommissionRate) &&
		eq(f.b3EmolumentRate, other.b3EmolumentRate) &&
		eq(f.settlementFeeRate, other.settlementFeeRate) &&
		eq(f.incomeTaxRate, other.incomeTaxRate) &&
		eq(f.dayTradeIncomeTaxRate, other.dayTradeIncomeTaxRate)
}

func (f TradingFees) String() string {
	format := func(rate *decimal.Decimal) string {
		if rate == nil {
			return "default"
		}
		return rate.Mul(decimal.NewFromInt(100)).StringFixed(4) + "%"
	}
	parts := []string{
		"BrokerCommission: " + format(f.brokerCommissionRate),
		"B3Emolument: " + format(f.b3EmolumentRate),
		"Settlement: " + format(f.settlementFeeRate),
		"IncomeTax: " + format(f.incomeTaxRate),
		"DayTradeTax: " + format(f.dayTradeIncomeTaxRate),
	}
	return strings.Join(parts, ", ")
}

// Rate is a convenience constructor for optional fee rates.
func Rate(value string) *decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(fmt.Sprintf("invalid rate literal %q: %v", value, err))
	}
	return &d
}
