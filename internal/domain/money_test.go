package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr error
	}{
		{name: "positive whole amount", amount: "10000", wantErr: nil},
		{name: "two decimal places", amount: "100.55", wantErr: nil},
		{name: "zero", amount: "0", wantErr: ErrInvalidAmount},
		{name: "negative", amount: "-50", wantErr: ErrInvalidAmount},
		{name: "three decimal places", amount: "100.555", wantErr: ErrExcessPrecision},
		{name: "trailing zeros beyond two places are exact", amount: "100.550", wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tt.amount)
			require.NoError(t, err)

			err = ValidateAmount(amount)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuantizeMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"100.555", "100.56"},
		{"100.554", "100.55"},
		{"100.545", "100.55"}, // half-up, not banker's
		{"100", "100"},
		{"-0.005", "-0.01"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			in, err := decimal.NewFromString(tt.in)
			require.NoError(t, err)
			assert.True(t, QuantizeMoney(in).Equal(decimal.RequireFromString(tt.want)),
				"QuantizeMoney(%s) = %s, want %s", tt.in, QuantizeMoney(in), tt.want)
		})
	}
}

func TestWeekTarget(t *testing.T) {
	assert.True(t, WeekTarget(1).Equal(decimal.NewFromInt(10_000)))
	assert.True(t, WeekTarget(26).Equal(decimal.NewFromInt(260_000)))
	assert.True(t, WeekTarget(52).Equal(decimal.NewFromInt(520_000)))
}

func TestChallengeTargetIsSumOfWeeks(t *testing.T) {
	sum := decimal.Zero
	for week := 1; week <= ChallengeWeeks; week++ {
		sum = sum.Add(WeekTarget(week))
	}
	assert.True(t, sum.Equal(ChallengeTarget), "sum of weekly targets = %s", sum)
}

func TestMaxZero(t *testing.T) {
	assert.True(t, MaxZero(decimal.NewFromInt(-5)).IsZero())
	assert.True(t, MaxZero(decimal.Zero).IsZero())
	assert.True(t, MaxZero(decimal.NewFromInt(5)).Equal(decimal.NewFromInt(5)))
}
