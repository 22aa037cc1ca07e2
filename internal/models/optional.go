package models

import (
	"encoding/json"
	"math"
)

// Optional is a float64 that may be absent. It is used for numbers the
// provider may omit (changePercent) and for derived values that are
// undefined, such as a return on a zero cost basis. Conversion to a
// display value happens only in the report formatter.
type Optional struct {
	value float64
	valid bool
}

// Some wraps v. NaN and infinities are treated as absent.
func Some(v float64) Optional {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Optional{}
	}
	return Optional{value: v, valid: true}
}

// None returns an absent value.
func None() Optional {
	return Optional{}
}

// Valid reports whether a value is present.
func (o Optional) Valid() bool { return o.valid }

// Value returns the wrapped value, or 0 when absent.
func (o Optional) Value() float64 { return o.value }

// Or returns the wrapped value, or def when absent.
func (o Optional) Or(def float64) float64 {
	if !o.valid {
		return def
	}
	return o.value
}

// Map applies fn to a present value.
func (o Optional) Map(fn func(float64) float64) Optional {
	if !o.valid {
		return o
	}
	return Some(fn(o.value))
}

// MarshalJSON encodes an absent value as null.
func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON accepts a number or null.
func (o *Optional) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = None()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
