// Package money holds the write-boundary rules for monetary values: two fractional
// digits, never negative. Aggregation code relies on these checks having run.
package money

import (
	"strings"

	"repairdesk/internal/apperror"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits every stored amount carries.
const Scale = 2

// Validate rejects negative amounts and amounts that need more than Scale fractional digits.
func Validate(field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return apperror.Validation(field, "negative_money", "must not be negative")
	}
	if !v.Equal(v.Truncate(Scale)) {
		return apperror.Validation(field, "invalid_money_scale", "must have at most 2 fractional digits")
	}
	return nil
}

// Parse converts a decimal string into a validated amount.
func Parse(field, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, apperror.Validation(field, "required", "is required")
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperror.Validation(field, "invalid_money", "must be a decimal number")
	}
	if err := Validate(field, v); err != nil {
		return decimal.Zero, err
	}
	return v, nil
}

// ParseOptional returns def when raw is blank, otherwise behaves like Parse.
func ParseOptional(field, raw string, def decimal.Decimal) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	return Parse(field, raw)
}

// Format renders an amount with exactly Scale fractional digits.
func Format(v decimal.Decimal) string {
	return v.StringFixed(Scale)
}

// FormatPtr renders a nullable amount.
func FormatPtr(v *decimal.Decimal) *string {
	if v == nil {
		return nil
	}
	s := Format(*v)
	return &s
}
