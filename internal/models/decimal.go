package models

import (
	"database/sql/driver"

	"github.com/shopspring/decimal"
)

// Decimal is a decimal.Decimal that keeps its scale on every boundary.
// decimal.Decimal trims trailing zeros when it prints, so "10.50" would be
// stored and served as "10.5"; Decimal prints "10.50".
//
// Arithmetic goes through the embedded value and returns plain decimals.
type Decimal struct {
	decimal.Decimal
}

// NewDecimal wraps d.
func NewDecimal(d decimal.Decimal) Decimal { return Decimal{d} }

// RequireDecimal parses s and panics when it is malformed.
func RequireDecimal(s string) Decimal { return Decimal{decimal.RequireFromString(s)} }

// ParseDecimal parses s keeping its scale.
func ParseDecimal(s string) (Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{d}, nil
}

// String prints the value with all of its fractional digits.
func (d Decimal) String() string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.Decimal.String()
}

// MarshalJSON emits a quoted decimal string.
func (d Decimal) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// MarshalText emits the decimal string.
func (d Decimal) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Value stores the decimal string in a TEXT column.
func (d Decimal) Value() (driver.Value, error) {
	return d.String(), nil
}

// NullDecimal is the nullable Decimal.
type NullDecimal struct {
	decimal.NullDecimal
}

// NewNullDecimal returns a valid NullDecimal holding d.
func NewNullDecimal(d decimal.Decimal) NullDecimal {
	return NullDecimal{decimal.NewNullDecimal(d)}
}

// Exact returns the held value as a Decimal; ok is false when null.
func (n NullDecimal) Exact() (Decimal, bool) {
	return Decimal{n.Decimal}, n.Valid
}

// String prints the held value, or "" when null.
func (n NullDecimal) String() string {
	if !n.Valid {
		return ""
	}
	return Decimal{n.Decimal}.String()
}

// MarshalJSON emits null or a quoted decimal string.
func (n NullDecimal) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return Decimal{n.Decimal}.MarshalJSON()
}

// Value stores NULL or the decimal string.
func (n NullDecimal) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return Decimal{n.Decimal}.Value()
}
