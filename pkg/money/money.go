// Package money keeps currency as integer minor units. Decimal text only
// appears at the edges: parsing form input and rendering pages.
package money

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrOverflow      = errors.New("amount out of range")
)

var maxMinor = decimal.NewFromInt(math.MaxInt64)

// Cents is an amount in minor units (1/100).
type Cents int64

func (c Cents) Mul(qty int) Cents {
	return c * Cents(qty)
}

// CheckedMul is Mul that reports ErrOverflow instead of wrapping.
func (c Cents) CheckedMul(qty int) (Cents, error) {
	return fromDecimal(decimal.NewFromInt(int64(c)).Mul(decimal.NewFromInt(int64(qty))))
}

// CheckedAdd is c + d that reports ErrOverflow instead of wrapping.
func (c Cents) CheckedAdd(d Cents) (Cents, error) {
	return fromDecimal(decimal.NewFromInt(int64(c)).Add(decimal.NewFromInt(int64(d))))
}

func fromDecimal(minor decimal.Decimal) (Cents, error) {
	if minor.Abs().GreaterThan(maxMinor) {
		return 0, ErrOverflow
	}
	return Cents(minor.IntPart()), nil
}

func (c Cents) String() string {
	return decimal.New(int64(c), -2).StringFixed(2)
}

// Parse accepts non-negative amounts with at most two decimal places,
// e.g. "12.5", "12.50", "7".
func Parse(s string) (Cents, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}
	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return 0, fmt.Errorf("%w: %q has more than two decimals", ErrInvalidAmount, s)
	}
	minor := d.Shift(2)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if minor.GreaterThan(maxMinor) {
		return 0, fmt.Errorf("%w: %q is too large", ErrInvalidAmount, s)
	}
	return Cents(minor.IntPart()), nil
}

// Value lets sqlx bind Cents as BIGINT.
func (c Cents) Value() (driver.Value, error) {
	return int64(c), nil
}

func (c *Cents) Scan(src interface{}) error {
	switch v := src.(type) {
	case int64:
		*c = Cents(v)
	case int32:
		*c = Cents(v)
	case int:
		*c = Cents(v)
	case nil:
		*c = 0
	default:
		return fmt.Errorf("money: cannot scan %T", src)
	}
	return nil
}
