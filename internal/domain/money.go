package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Challenge constants. Week N of the 52-week challenge has a target of
// N * 10,000 UGX; the full challenge sums to 13,780,000 UGX.
const (
	ChallengeWeeks = 52

	// WeekComplete is the next-week sentinel once all 52 weeks are funded.
	WeekComplete = 53
)

var (
	WeeklyUnit      = decimal.NewFromInt(10_000)
	ChallengeTarget = decimal.NewFromInt(13_780_000)

	// AnnualUninvestedRate is the fixed 15% rate paid once per year on
	// funds not locked in a fixed-term investment.
	AnnualUninvestedRate = decimal.NewFromFloat(0.15)

	hundred     = decimal.NewFromInt(100)
	daysPerYear = decimal.NewFromInt(365)
	twelve      = decimal.NewFromInt(12)
)

// QuantizeMoney rounds to 2 decimal places, half-up.
func QuantizeMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ValidateAmount rejects non-positive amounts and amounts carrying more
// than two fractional digits. Callers validate before any write so a bad
// amount never reaches storage.
func ValidateAmount(d decimal.Decimal) error {
	if d.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if !d.Equal(d.Round(2)) {
		return fmt.Errorf("%s: %w", d.String(), ErrExcessPrecision)
	}
	return nil
}

// WeekTarget returns the deposit target for a challenge week (week * 10,000).
func WeekTarget(week int) decimal.Decimal {
	return WeeklyUnit.Mul(decimal.NewFromInt(int64(week)))
}

// MaxZero floors a decimal at zero.
func MaxZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
