package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChallengeProgress summarizes an account's position in the current
// challenge year, taken from its most recent deposit snapshot.
type ChallengeProgress struct {
	WeeksCompleted int             `json:"weeks_completed"`
	TotalWeeks     int             `json:"total_weeks"`
	NextWeek       int             `json:"next_week"`
	CarryForward   decimal.Decimal `json:"carry_forward"`

	// UnallocatedSurplus is carry-forward accumulated after all 52 weeks
	// are funded. There is no week-53 target, so it only ever grows.
	UnallocatedSurplus decimal.Decimal `json:"unallocated_surplus"`

	TotalSaved      decimal.Decimal `json:"total_saved"`
	TargetAmount    decimal.Decimal `json:"target_amount"`
	ProgressPercent decimal.Decimal `json:"progress_percent"`
}

// AccountStatement is the derived view over an account's ledger entries,
// investments and pending requests. It is recomputed on demand and never
// persisted.
type AccountStatement struct {
	AccountID uuid.UUID `json:"account_id"`
	AsOf      time.Time `json:"as_of"`

	GrossDeposits      decimal.Decimal `json:"gross_deposits"`
	GrossWithdrawals   decimal.Decimal `json:"gross_withdrawals"`
	GrossContributions decimal.Decimal `json:"gross_contributions"`
	NetLedgerBalance   decimal.Decimal `json:"net_ledger_balance"`

	TotalInvested     decimal.Decimal `json:"total_invested"`
	UninvestedBalance decimal.Decimal `json:"uninvested_balance"`

	// AccruedInvestmentInterest is the unposted linear estimate across
	// still-fixed investments; ExpectedInvestmentInterest the full-term
	// figure. Neither is part of the ledger.
	AccruedInvestmentInterest  decimal.Decimal `json:"accrued_investment_interest"`
	ExpectedInvestmentInterest decimal.Decimal `json:"expected_investment_interest"`

	// ProjectedAnnualInterest is 15% of the uninvested balance, shown only
	// once the year's cutover date has passed and the annual posting has
	// not yet landed.
	ProjectedAnnualInterest decimal.Decimal `json:"projected_annual_interest"`

	TotalSavings decimal.Decimal `json:"total_savings"`

	// PreviousYearMaturedTotal is the only amount ever eligible for
	// withdrawal: deposits from completed challenge years net of all
	// withdrawals and contributions. Current-year deposits stay locked
	// until their year-end collapse.
	PreviousYearMaturedTotal decimal.Decimal `json:"previous_year_matured_total"`

	PendingHolds     decimal.Decimal `json:"pending_holds"`
	AvailableBalance decimal.Decimal `json:"available_balance"`

	Progress ChallengeProgress `json:"progress"`
}
