package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvestmentStatus string

const (
	InvestmentStatusFixed   InvestmentStatus = "fixed"
	InvestmentStatusMatured InvestmentStatus = "matured"
)

// Investment is a fixed-term commitment of member funds earning simple
// interest. Status only ever moves fixed -> matured, and the maturity
// interest is posted to the ledger at most once.
type Investment struct {
	ID             uuid.UUID
	AccountID      uuid.UUID
	Principal      decimal.Decimal
	RatePct        decimal.Decimal // annual simple-interest rate, 0-100
	TermMonths     int
	StartDate      time.Time
	Status         InvestmentStatus
	InterestPosted bool
	CreatedAt      time.Time
}

func (i *Investment) Validate() error {
	if err := ValidateAmount(i.Principal); err != nil {
		return err
	}
	if i.RatePct.IsNegative() || i.RatePct.GreaterThan(hundred) {
		return ErrInvalidRate
	}
	if i.TermMonths < 1 {
		return ErrInvalidTerm
	}
	return nil
}

func (i *Investment) MaturityDate() time.Time {
	return AddMonths(DateOnly(i.StartDate), i.TermMonths)
}

// TotalInterestExpected is the simple interest over the full term:
// P * (rate/100) * (months/12), rounded half-up to 2 decimals. It is fixed
// once the term is known and does not depend on the current date.
func (i *Investment) TotalInterestExpected() decimal.Decimal {
	rate := i.RatePct.Div(hundred)
	return QuantizeMoney(i.Principal.Mul(rate).Mul(decimal.NewFromInt(int64(i.TermMonths))).Div(twelve))
}

// DailyRate is the per-day fraction of the annual rate.
func (i *Investment) DailyRate() decimal.Decimal {
	return i.RatePct.Div(hundred).Div(daysPerYear)
}

// InterestAccrued is the display-only linear estimate of interest earned by
// asOf, capped at the term. It is never written to the ledger; realized
// interest is posted exactly once at maturity.
func (i *Investment) InterestAccrued(asOf time.Time) decimal.Decimal {
	start := DateOnly(i.StartDate)
	if DateOnly(asOf).Before(start) {
		return decimal.Zero
	}

	days := DaysBetween(start, asOf)
	if termDays := DaysBetween(start, i.MaturityDate()); days > termDays {
		days = termDays
	}
	if days <= 0 {
		return decimal.Zero
	}
	return QuantizeMoney(i.Principal.Mul(i.DailyRate()).Mul(decimal.NewFromInt(int64(days))))
}

// InterestForPeriod estimates interest earned in [from, to], clipped to the
// investment's own window. Used for periodic reports.
func (i *Investment) InterestForPeriod(from, to time.Time) decimal.Decimal {
	if to.Before(from) {
		return decimal.Zero
	}

	start := DateOnly(i.StartDate)
	maturity := i.MaturityDate()

	periodStart := DateOnly(from)
	if periodStart.Before(start) {
		periodStart = start
	}
	periodEnd := DateOnly(to)
	if periodEnd.After(maturity) {
		periodEnd = maturity
	}
	if periodStart.After(periodEnd) {
		return decimal.Zero
	}

	days := DaysBetween(periodStart, periodEnd) + 1
	return QuantizeMoney(i.Principal.Mul(i.DailyRate()).Mul(decimal.NewFromInt(int64(days))))
}

func (i *Investment) IsMatured(asOf time.Time) bool {
	return !DateOnly(asOf).Before(i.MaturityDate())
}

// DaysUntilMaturity is negative once the term has ended.
func (i *Investment) DaysUntilMaturity(asOf time.Time) int {
	return DaysBetween(asOf, i.MaturityDate())
}

// ProgressPercent is accrued estimate over total expected, 0-100.
func (i *Investment) ProgressPercent(asOf time.Time) decimal.Decimal {
	expected := i.TotalInterestExpected()
	if expected.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	pct := i.InterestAccrued(asOf).Div(expected).Mul(hundred)
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	return pct.Round(2)
}
