// Package money provides a fixed-point currency amount.
package money

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Money is an amount in cents.
type Money int64

// maxUnits is the largest whole-unit amount whose cent value fits in an int64
// without float rounding trouble.
const maxUnits = 1e15

// FromFloat converts a decimal amount (e.g. 2.99) to Money, rounding to the nearest cent.
func FromFloat(v float64) Money {
	return Money(math.Round(v * 100))
}

// Parse parses a decimal string such as "2.99", "$2.99" or "-1.5".
func Parse(s string) (Money, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return 0, errors.New("empty amount")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid amount %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > maxUnits {
		return 0, errors.Newf("amount %q out of range", s)
	}
	m := FromFloat(v)
	if neg {
		m = -m
	}
	return m, nil
}

// Float returns the amount in whole currency units.
func (m Money) Float() float64 {
	return float64(m) / 100
}

// String formats the amount as "$1.99" (or "-$1.99").
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s$%d.%02d", sign, v/100, v%100)
}

// UnmarshalYAML accepts decimal scalars.
func (m *Money) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return errors.Newf("line %d: amount must be a scalar", value.Line)
	}
	parsed, err := Parse(value.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d", value.Line)
	}
	*m = parsed
	return nil
}

// MarshalYAML writes the amount as a decimal number.
func (m Money) MarshalYAML() (any, error) {
	return m.Float(), nil
}
