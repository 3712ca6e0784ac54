package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Money is an amount in minor currency units (cents, paise).
type Money int64

// amountPattern accepts plain decimals with at most 13 integer digits, which
// keeps every amount far inside int64 once scaled to minor units.
var amountPattern = regexp.MustCompile(`^(-?)(\d{1,13})(?:\.(\d+))?$`)

// ParseMoney reads a decimal amount such as "30.99" exactly. More than two
// significant fractional digits, exponents and out-of-range values are errors.
func ParseMoney(s string) (Money, error) {
	parts := amountPattern.FindStringSubmatch(s)
	if parts == nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	frac := strings.TrimRight(parts[3], "0")
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	frac += strings.Repeat("0", 2-len(frac))

	whole, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	cents, _ := strconv.ParseInt(frac, 10, 64)
	m := Money(whole*100 + cents)
	if parts[1] == "-" {
		m = -m
	}
	return m, nil
}

// String renders the amount with two fractional digits, e.g. "30.99".
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	v, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
