package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmukasa/savings-challenge-engine/internal/domain"
	"github.com/jmukasa/savings-challenge-engine/internal/logging"
	"github.com/shopspring/decimal"
)

// AnnualAccrual posts the once-per-year 15% interest on uninvested balances
// for every account. Postings are keyed (account, year), so re-running a
// processed year skips already-credited accounts and an interrupted run can
// simply be restarted.
type AnnualAccrual struct {
	entries     entryStore
	investments investmentStore
	recorder    *Recorder
}

func NewAnnualAccrual(entries entryStore, investments investmentStore, recorder *Recorder) *AnnualAccrual {
	return &AnnualAccrual{entries: entries, investments: investments, recorder: recorder}
}

type AnnualPosting struct {
	AccountID uuid.UUID
	Amount    decimal.Decimal
}

type AnnualFailure struct {
	AccountID uuid.UUID
	Err       error
}

type AnnualRunReport struct {
	Year        int
	DryRun      bool
	Posted      []AnnualPosting
	Skipped     int
	ZeroBalance int
	Failures    []AnnualFailure
}

// Run processes every account independently: one account's failure is
// collected and reported, never allowed to halt accrual for the rest of the
// cohort. With dryRun the report is computed without persisting anything.
func (a *AnnualAccrual) Run(ctx context.Context, year int, dryRun bool) (*AnnualRunReport, error) {
	log := logging.FromContext(ctx)

	accounts, err := a.entries.AccountIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("Run: list accounts: %w", err)
	}

	report := &AnnualRunReport{Year: year, DryRun: dryRun}
	cutover := domain.CutoverDate(year)
	reference := domain.AnnualInterestReference(year)

	for _, accountID := range accounts {
		interest, skip, err := a.accountInterest(ctx, accountID, cutover, reference)
		if err != nil {
			log.Error("annual accrual failed for account",
				"account_id", accountID, "year", year, "error", err)
			report.Failures = append(report.Failures, AnnualFailure{AccountID: accountID, Err: err})
			continue
		}
		if skip {
			report.Skipped++
			continue
		}
		if !interest.IsPositive() {
			report.ZeroBalance++
			continue
		}

		if !dryRun {
			entry, err := a.recorder.RecordInterestDeposit(ctx, accountID, interest, cutover, reference)
			if err != nil {
				log.Error("annual interest posting failed",
					"account_id", accountID, "year", year, "amount", interest, "error", err)
				report.Failures = append(report.Failures, AnnualFailure{AccountID: accountID, Err: err})
				continue
			}
			if entry == nil {
				// Lost the race against a concurrent run.
				report.Skipped++
				continue
			}
		}
		report.Posted = append(report.Posted, AnnualPosting{AccountID: accountID, Amount: interest})
	}

	log.Info("annual interest accrual completed",
		"year", year,
		"dry_run", dryRun,
		"posted", len(report.Posted),
		"skipped", report.Skipped,
		"zero_balance", report.ZeroBalance,
		"failures", len(report.Failures),
	)
	return report, nil
}

func (a *AnnualAccrual) accountInterest(ctx context.Context, accountID uuid.UUID, cutover time.Time, reference string) (decimal.Decimal, bool, error) {
	existing, err := a.entries.EntryByReference(ctx, accountID, reference)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("check %s: %w", reference, err)
	}
	if existing != nil {
		return decimal.Zero, true, nil
	}

	entries, err := a.entries.EntriesByAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("entries: %w", err)
	}
	investments, err := a.investments.InvestmentsByAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("investments: %w", err)
	}

	// Balance as of end of the cutover day. A term opened in the new year
	// is funded from the new year's balance and must not shrink this one.
	var active []domain.Investment
	for _, inv := range investments {
		if !inv.StartDate.After(cutover) {
			active = append(active, inv)
		}
	}
	uninvested := unfixedBalanceOn(entries, active, cutover.AddDate(0, 0, 1))
	return domain.QuantizeMoney(uninvested.Mul(domain.AnnualUninvestedRate)), false, nil
}
