package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedInvestment(principal string, ratePct string, termMonths int, start time.Time) *Investment {
	return &Investment{
		ID:         uuid.New(),
		AccountID:  uuid.New(),
		Principal:  decimal.RequireFromString(principal),
		RatePct:    decimal.RequireFromString(ratePct),
		TermMonths: termMonths,
		StartDate:  start,
		Status:     InvestmentStatusFixed,
	}
}

func TestInvestmentValidate(t *testing.T) {
	start := date(2025, time.January, 1)

	tests := []struct {
		name    string
		inv     *Investment
		wantErr error
	}{
		{name: "valid", inv: fixedInvestment("1000000", "30", 8, start), wantErr: nil},
		{name: "zero principal", inv: fixedInvestment("0", "30", 8, start), wantErr: ErrInvalidAmount},
		{name: "negative rate", inv: fixedInvestment("1000000", "-1", 8, start), wantErr: ErrInvalidRate},
		{name: "rate above 100", inv: fixedInvestment("1000000", "101", 8, start), wantErr: ErrInvalidRate},
		{name: "zero term", inv: fixedInvestment("1000000", "30", 0, start), wantErr: ErrInvalidTerm},
		{name: "excess precision principal", inv: fixedInvestment("1000.123", "30", 8, start), wantErr: ErrExcessPrecision},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.inv.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTotalInterestExpected(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		ratePct   string
		months    int
		want      string
	}{
		// 1,000,000 at 30% for 8 months: 1,000,000 * 0.30 * 8/12.
		{name: "eight month term", principal: "1000000", ratePct: "30", months: 8, want: "200000.00"},
		{name: "full year", principal: "500000", ratePct: "12", months: 12, want: "60000.00"},
		{name: "one month", principal: "1200000", ratePct: "10", months: 1, want: "10000.00"},
		{name: "rounds half up", principal: "100000", ratePct: "7", months: 5, want: "2916.67"},
		{name: "zero rate", principal: "1000000", ratePct: "0", months: 6, want: "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := fixedInvestment(tt.principal, tt.ratePct, tt.months, date(2025, time.January, 1))
			got := inv.TotalInterestExpected()
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestMaturityDate(t *testing.T) {
	inv := fixedInvestment("1000000", "30", 8, date(2025, time.January, 31))
	// Jan 31 + 8 months lands on Sep 30 via the day clamp.
	assert.Equal(t, date(2025, time.September, 30), inv.MaturityDate())
}

func TestInterestAccrued(t *testing.T) {
	start := date(2025, time.January, 1)
	inv := fixedInvestment("1000000", "30", 12, start)

	t.Run("before start", func(t *testing.T) {
		assert.True(t, inv.InterestAccrued(date(2024, time.December, 31)).IsZero())
	})

	t.Run("on start date", func(t *testing.T) {
		assert.True(t, inv.InterestAccrued(start).IsZero())
	})

	t.Run("after 100 days", func(t *testing.T) {
		// 1,000,000 * 0.30/365 * 100.
		got := inv.InterestAccrued(start.AddDate(0, 0, 100))
		assert.Equal(t, "82191.78", got.StringFixed(2))
	})

	t.Run("capped at the term", func(t *testing.T) {
		atMaturity := inv.InterestAccrued(inv.MaturityDate())
		longAfter := inv.InterestAccrued(inv.MaturityDate().AddDate(1, 0, 0))
		assert.True(t, atMaturity.Equal(longAfter), "accrual past maturity: %s vs %s", atMaturity, longAfter)
	})
}

func TestInterestForPeriod(t *testing.T) {
	start := date(2025, time.March, 1)
	inv := fixedInvestment("1000000", "30", 6, start)
	daily := inv.Principal.Mul(inv.DailyRate())

	t.Run("fully inside term", func(t *testing.T) {
		got := inv.InterestForPeriod(date(2025, time.April, 1), date(2025, time.April, 10))
		want := QuantizeMoney(daily.Mul(decimal.NewFromInt(10)))
		assert.True(t, got.Equal(want), "got %s want %s", got, want)
	})

	t.Run("clipped to start", func(t *testing.T) {
		before := inv.InterestForPeriod(date(2025, time.February, 1), date(2025, time.February, 28))
		assert.True(t, before.IsZero())
	})

	t.Run("inverted range", func(t *testing.T) {
		assert.True(t, inv.InterestForPeriod(date(2025, time.May, 10), date(2025, time.May, 1)).IsZero())
	})
}

func TestIsMatured(t *testing.T) {
	inv := fixedInvestment("1000000", "30", 8, date(2025, time.January, 1))
	maturity := inv.MaturityDate()
	require.Equal(t, date(2025, time.September, 1), maturity)

	assert.False(t, inv.IsMatured(maturity.AddDate(0, 0, -1)))
	assert.True(t, inv.IsMatured(maturity))
	assert.True(t, inv.IsMatured(maturity.AddDate(0, 0, 1)))
}

func TestProgressPercent(t *testing.T) {
	inv := fixedInvestment("1000000", "30", 12, date(2025, time.January, 1))

	assert.True(t, inv.ProgressPercent(date(2025, time.January, 1)).IsZero())

	mid := inv.ProgressPercent(date(2025, time.July, 1))
	assert.True(t, mid.GreaterThan(decimal.NewFromInt(40)) && mid.LessThan(decimal.NewFromInt(60)),
		"mid-term progress: %s", mid)

	afterTerm := inv.ProgressPercent(date(2027, time.January, 1))
	assert.True(t, afterTerm.LessThanOrEqual(decimal.NewFromInt(100)))
}
