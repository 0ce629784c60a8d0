// Package money represents prices as integer minor units (paise).
package money

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a count of minor currency units.
type Amount int64

// Zero is the free price.
const Zero Amount = 0

var hundred = decimal.NewFromInt(100)

// FromDecimal converts a major-unit decimal into minor units, rounding half away from zero.
func FromDecimal(d decimal.Decimal) Amount {
	return Amount(d.Mul(hundred).Round(0).IntPart())
}

// FromMajor converts a major-unit float such as 149.5 into minor units.
func FromMajor(v float64) Amount {
	return FromDecimal(decimal.NewFromFloat(v))
}

// Parse reads a major-unit decimal string such as "199.00".
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return FromDecimal(d), nil
}

// Paise returns the raw minor-unit count.
func (a Amount) Paise() int64 {
	return int64(a)
}

// Decimal returns the amount in major units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -2)
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a == 0
}

// Positive reports whether the amount is greater than zero.
func (a Amount) Positive() bool {
	return a > 0
}

func (a Amount) String() string {
	return a.Decimal().StringFixed(2)
}

// MarshalJSON writes the major-unit value as a JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal().String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*a = 0
			return nil
		}
		v, err := Parse(s)
		if err != nil {
			return err
		}
		*a = v
		return nil
	}

	v, err := Parse(string(data))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Sum adds amounts.
func Sum(amounts ...Amount) Amount {
	var total Amount
	for _, v := range amounts {
		total += v
	}
	return total
}
