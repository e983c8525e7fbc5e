package domain

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Money is a fixed-point MAD amount. All arithmetic stays in decimal;
// rounding to two places happens only when the value leaves the process
// (JSON, SQL), never mid-computation.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

func ZeroMoney() Money {
	return Money{Decimal: decimal.Zero}
}

func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Money{Decimal: d}, nil
}

// MustMoney is for seed data and tests.
func MustMoney(s string) Money {
	m, err := MoneyFromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Add(o Money) Money {
	return Money{Decimal: m.Decimal.Add(o.Decimal)}
}

func (m Money) Sub(o Money) Money {
	return Money{Decimal: m.Decimal.Sub(o.Decimal)}
}

// MulQty multiplies a unit price by a line quantity.
func (m Money) MulQty(qty int) Money {
	return Money{Decimal: m.Decimal.Mul(decimal.NewFromInt(int64(qty)))}
}

func (m Money) Equal(o Money) bool {
	return m.Decimal.Equal(o.Decimal)
}

// String renders with exactly two decimal places ("149.99").
func (m Money) String() string {
	return m.Decimal.StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	if s == "null" || s == "" {
		m.Decimal = decimal.Zero
		return nil
	}
	parsed, err := MoneyFromString(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
