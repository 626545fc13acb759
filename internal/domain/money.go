package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in BRL cents.
type Money int64

// ParseMoney converts a decimal string such as "12.5" or "12,50" into cents,
// rounding half away from zero.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("parse money: empty value")
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse money %q: %w", s, err)
	}
	return Money(d.Shift(2).Round(0).IntPart()), nil
}

// Mul multiplies the amount by a quantity.
func (m Money) Mul(qty int) Money {
	return m * Money(qty)
}

// MulChecked multiplies like Mul and reports false when the product overflows.
func (m Money) MulChecked(qty int) (Money, bool) {
	if m == 0 || qty == 0 {
		return 0, true
	}
	if (m == math.MinInt64 && qty == -1) || (qty == math.MinInt64 && m == -1) {
		return 0, false
	}
	p := m * Money(qty)
	if p/Money(qty) != m {
		return 0, false
	}
	return p, true
}

// AddChecked adds two amounts and reports false on overflow.
func (m Money) AddChecked(o Money) (Money, bool) {
	sum := m + o
	if (o > 0 && sum < m) || (o < 0 && sum > m) {
		return 0, false
	}
	return sum, true
}

// String renders the amount with two decimals, e.g. "32.00".
func (m Money) String() string {
	return decimal.New(int64(m), -2).StringFixed(2)
}

// MarshalJSON encodes the amount as a decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts a decimal string or a JSON number in reais.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*m = 0
		return nil
	}
	v, err := ParseMoney(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
