package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 currency code.
type Currency string

// Exponent returns the number of minor-unit digits for the currency.
func (c Currency) Exponent() int32 {
	switch c {
	case "JPY", "KRW":
		return 0
	default:
		return 2
	}
}

// ParseCurrency normalizes and validates a currency code.
func ParseCurrency(s string) (Currency, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if err := ValidateCurrency(code); err != nil {
		return "", err
	}

	return Currency(code), nil
}

// Money is an immutable amount in minor units of a single currency.
type Money struct {
	amount   int64
	currency Currency
}

// NewMoney creates Money from minor units.
func NewMoney(minor int64, currency Currency) Money {
	return Money{amount: minor, currency: currency}
}

// Zero returns a zero amount in the given currency.
func Zero(currency Currency) Money {
	return Money{currency: currency}
}

// MoneyFromDecimal converts a major-unit decimal into Money. It fails instead
// of rounding when d carries more fractional digits than the currency has.
func MoneyFromDecimal(d decimal.Decimal, currency Currency) (Money, error) {
	shifted := d.Shift(currency.Exponent())
	if !shifted.Equal(shifted.Truncate(0)) {
		return Money{}, fmt.Errorf("%w: %s has more than %d fractional digits", ErrPrecisionLoss, d, currency.Exponent())
	}

	if shifted.GreaterThan(decimal.NewFromInt(math.MaxInt64)) || shifted.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return Money{}, ErrAmountOverflow
	}

	return Money{amount: shifted.IntPart(), currency: currency}, nil
}

// Amount returns the value in minor units.
func (m Money) Amount() int64 {
	return m.amount
}

// Currency returns the currency code.
func (m Money) Currency() Currency {
	return m.currency
}

// Add returns m + other.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, ErrCurrencyMismatch
	}

	sum := m.amount + other.amount
	if (other.amount > 0 && sum < m.amount) || (other.amount < 0 && sum > m.amount) {
		return Money{}, ErrAmountOverflow
	}

	return Money{amount: sum, currency: m.currency}, nil
}

// Sub returns m - other.
func (m Money) Sub(other Money) (Money, error) {
	if other.amount == math.MinInt64 {
		return Money{}, ErrAmountOverflow
	}

	return m.Add(other.Neg())
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{amount: -m.amount, currency: m.currency}
}

// Cmp compares m and other: -1 if m < other, 0 if equal, +1 if m > other.
func (m Money) Cmp(other Money) (int, error) {
	if m.currency != other.currency {
		return 0, ErrCurrencyMismatch
	}

	switch {
	case m.amount < other.amount:
		return -1, nil
	case m.amount > other.amount:
		return 1, nil
	default:
		return 0, nil
	}
}

// Equal reports whether both amount and currency match.
func (m Money) Equal(other Money) bool {
	return m == other
}

func (m Money) IsZero() bool {
	return m.amount == 0
}

func (m Money) IsPositive() bool {
	return m.amount > 0
}

func (m Money) IsNegative() bool {
	return m.amount < 0
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.amount, -m.currency.Exponent())
}

// String formats the amount as "12.34 USD".
func (m Money) String() string {
	return m.Decimal().StringFixed(m.currency.Exponent()) + " " + string(m.currency)
}
