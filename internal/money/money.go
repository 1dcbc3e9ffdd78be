// Package money provides the exact decimal amount used for every balance,
// share and settlement in the ledger.
//
// Amounts carry arbitrary precision internally but are rounded HALF_UP to
// two fractional digits whenever they are divided, compared for equality or
// persisted. Binary floating point is never involved.
package money

import (
	"database/sql/driver"
	"fmt"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits kept for storage and comparison.
const Places = 2

// Zero is the zero amount.
var Zero = Money{}

// Money is an exact decimal amount in the ledger's single currency.
// The zero value is a valid zero amount.
type Money struct {
	value decimal.Decimal
}

// New wraps a decimal value.
func New(d decimal.Decimal) Money {
	return Money{value: d}
}

// FromCents builds an amount from an integer number of cents.
func FromCents(cents int64) Money {
	return Money{value: decimal.New(cents, -Places)}
}

// Parse reads a decimal string such as "12.50".
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Money{value: d}, nil
}

// MustParse is like Parse but panics on malformed input. Meant for tests and constants.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal { return m.value }

func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value)} }
func (m Money) Neg() Money        { return Money{value: m.value.Neg()} }

// Mul multiplies by a scalar.
func (m Money) Mul(factor decimal.Decimal) Money { return Money{value: m.value.Mul(factor)} }

// DivN divides by an integer count and rounds HALF_UP to two places in a
// single step. Every caller dividing the same amount by the same count gets
// the same result; the rounding residue is not redistributed.
func (m Money) DivN(n int) Money {
	if n == 0 {
		panic("money: division by zero")
	}
	return Money{value: m.value.DivRound(decimal.NewFromInt(int64(n)), Places)}
}

// Round rounds HALF_UP to two places.
func (m Money) Round() Money { return Money{value: m.value.Round(Places)} }

// HasSubCents reports whether m carries digits beyond two decimal places.
func (m Money) HasSubCents() bool { return !m.value.Equal(m.value.Round(Places)) }

// Min returns the smaller of m and n.
func (m Money) Min(n Money) Money {
	if n.value.LessThan(m.value) {
		return n
	}
	return m
}

func (m Money) Sign() int                       { return m.value.Sign() }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) Cmp(n Money) int                 { return m.value.Cmp(n.value) }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }

// Equal reports value equality at two-digit precision.
func (m Money) Equal(n Money) bool {
	return m.value.Round(Places).Equal(n.value.Round(Places))
}

// Cents returns the amount in cents after rounding.
func (m Money) Cents() int64 {
	return m.value.Round(Places).Shift(Places).IntPart()
}

// String renders the amount with exactly two fractional digits, e.g. "30.00".
func (m Money) String() string {
	return m.value.StringFixed(Places)
}

// Format renders the amount for display in the given ISO currency, e.g. "$30.00".
func (m Money) Format(currency string) string {
	return gomoney.New(m.Cents(), currency).Display()
}

// KnownCurrency reports whether code is an ISO currency known to the formatter.
func KnownCurrency(code string) bool {
	return gomoney.GetCurrency(code) != nil
}

// MarshalJSON encodes the amount as a quoted decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts both quoted and bare decimal numbers.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	m.value = d
	return nil
}

// Scan implements sql.Scanner.
func (m *Money) Scan(src any) error {
	var d decimal.Decimal
	if err := d.Scan(src); err != nil {
		return fmt.Errorf("failed to scan amount: %w", err)
	}
	m.value = d
	return nil
}

// Value implements driver.Valuer. Amounts are stored rounded to two places.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}
