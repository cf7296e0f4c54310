// Package money implements a fixed-point currency type.
//
// Monetary values are never represented as float64 anywhere in this codebase:
// a single 0.1 rounding slip compounded across millions of spins is an
// unacceptable RTP drift. Amount stores the value as an integer number of
// cents; every arithmetic operation stays in integer space.
package money

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amount is a fixed-point currency value with 2 fractional digits, stored as
// an integer count of cents.
type Amount int64

// Zero is the additive identity.
const Zero Amount = 0

// FromCents builds an Amount directly from an integer cent count.
func FromCents(cents int64) Amount {
	return Amount(cents)
}

// FromFloat converts a float64 major-unit value (e.g. 12.50) into an Amount.
// Only used at system boundaries (parsing request bodies, seed fixtures) —
// never for arithmetic.
func FromFloat(v float64) Amount {
	return Amount(math.Round(v * 100))
}

// ParseString parses a decimal string such as "12.50" or "-3.00" into an
// Amount without going through floating point.
func ParseString(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("money: empty amount string")
	}
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	parts := strings.SplitN(s, ".", 2)
	whole, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("money: invalid amount %q: %w", s, err)
	}
	cents := int64(0)
	if len(parts) == 2 {
		frac := parts[1]
		if len(frac) > 2 {
			frac = frac[:2]
		}
		for len(frac) < 2 {
			frac += "0"
		}
		c, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("money: invalid amount %q: %w", s, err)
		}
		cents = c
	}
	total := whole*100 + cents
	if neg {
		total = -total
	}
	return Amount(total), nil
}

// Cents returns the underlying integer cent count.
func (a Amount) Cents() int64 { return int64(a) }

// Float64 returns the major-unit float approximation, for display/logging
// only — never feed this back into arithmetic.
func (a Amount) Float64() float64 { return float64(a) / 100 }

// Add returns a+b.
func (a Amount) Add(b Amount) Amount { return a + b }

// Sub returns a-b.
func (a Amount) Sub(b Amount) Amount { return a - b }

// MulInt scales the amount by an integer factor (e.g. cascade multiplier).
func (a Amount) MulInt(n int) Amount { return a * Amount(n) }

// MulRat scales by a rational num/den, rounding half away from zero. Used for
// bet/20 paytable scaling where the denominator is fixed and exact.
func (a Amount) MulRat(num, den int64) Amount {
	if den == 0 {
		return 0
	}
	n := int64(a) * num
	q := n / den
	r := n % den
	if r*2 >= den {
		q++
	} else if r*2 <= -den {
		q--
	}
	return Amount(q)
}

// IsNegative reports whether the amount is below zero.
func (a Amount) IsNegative() bool { return a < 0 }

// IsPositive reports whether the amount is above zero.
func (a Amount) IsPositive() bool { return a > 0 }

// LessThan reports a < b.
func (a Amount) LessThan(b Amount) bool { return a < b }

// GreaterThan reports a > b.
func (a Amount) GreaterThan(b Amount) bool { return a > b }

// String renders the amount as a fixed 2-decimal string, e.g. "12.50".
func (a Amount) String() string {
	neg := a < 0
	v := int64(a)
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%d.%02d", v/100, v%100)
	if neg {
		return "-" + s
	}
	return s
}

// MarshalJSON renders the amount as a JSON string so API clients never
// round-trip currency through a JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON parses a JSON string amount.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	v, err := ParseString(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Value implements driver.Valuer so Amount can be stored directly as a GORM
// column, written as its 2-decimal string (the models declare these columns
// varchar(32)).
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan implements sql.Scanner.
func (a *Amount) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = 0
		return nil
	case int64:
		*a = Amount(v)
		return nil
	case float64:
		*a = FromFloat(v)
		return nil
	case []byte:
		parsed, err := ParseString(string(v))
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	case string:
		parsed, err := ParseString(v)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	default:
		return fmt.Errorf("money: unsupported Scan source type %T", src)
	}
}
