package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmukasa/savings-challenge-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// BalanceService is the read side: every reportable aggregate is derived on
// demand from ledger entries, investment state and pending requests.
// Nothing here writes, so callers wanting lazy maturity transitions should
// trigger CheckMaturity (or rely on the scheduled sweep) before reading.
type BalanceService struct {
	entries     entryStore
	investments investmentStore
	requests    requestStore
}

func NewBalanceService(entries entryStore, investments investmentStore, requests requestStore) *BalanceService {
	return &BalanceService{entries: entries, investments: investments, requests: requests}
}

// Entries returns the account's full chronological history.
func (s *BalanceService) Entries(ctx context.Context, accountID uuid.UUID) ([]domain.LedgerEntry, error) {
	entries, err := s.entries.EntriesByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("Entries: account %s: %w", accountID, err)
	}
	return entries, nil
}

func (s *BalanceService) Statement(ctx context.Context, accountID uuid.UUID, asOf time.Time) (*domain.AccountStatement, error) {
	asOf = domain.DateOnly(asOf)

	entries, err := s.entries.EntriesByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("Statement: entries for %s: %w", accountID, err)
	}
	investments, err := s.investments.InvestmentsByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("Statement: investments for %s: %w", accountID, err)
	}
	holds, err := s.requests.PendingHoldTotal(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("Statement: holds for %s: %w", accountID, err)
	}

	st := &domain.AccountStatement{AccountID: accountID, AsOf: asOf, PendingHolds: holds}

	year := domain.ChallengeYear(asOf)
	maturedDeposits := decimal.Zero

	for _, e := range entries {
		switch e.Kind {
		case domain.EntryKindDeposit:
			st.GrossDeposits = st.GrossDeposits.Add(e.Amount)
			if domain.ChallengeYear(e.EntryDate) < year {
				maturedDeposits = maturedDeposits.Add(e.Amount)
			}
		case domain.EntryKindWithdrawal:
			st.GrossWithdrawals = st.GrossWithdrawals.Add(e.Amount)
		case domain.EntryKindContribution:
			st.GrossContributions = st.GrossContributions.Add(e.Amount)
		}
	}
	st.NetLedgerBalance = st.GrossDeposits.Sub(st.GrossWithdrawals).Sub(st.GrossContributions)

	for _, inv := range investments {
		if inv.Status != domain.InvestmentStatusFixed {
			continue
		}
		st.TotalInvested = st.TotalInvested.Add(inv.Principal)
		st.AccruedInvestmentInterest = st.AccruedInvestmentInterest.Add(inv.InterestAccrued(asOf))
		st.ExpectedInvestmentInterest = st.ExpectedInvestmentInterest.Add(inv.TotalInterestExpected())
	}
	st.UninvestedBalance = domain.MaxZero(st.NetLedgerBalance.Sub(st.TotalInvested))

	// Past the cutover and before the annual batch lands, show the 15%
	// the member is due. Once the posting exists it is part of the net
	// balance and projecting it again would double-count.
	if !asOf.Before(domain.CutoverDate(year)) {
		posted, err := s.entries.EntryByReference(ctx, accountID, domain.AnnualInterestReference(year))
		if err != nil {
			return nil, fmt.Errorf("Statement: annual posting for %s: %w", accountID, err)
		}
		if posted == nil {
			st.ProjectedAnnualInterest = domain.QuantizeMoney(st.UninvestedBalance.Mul(domain.AnnualUninvestedRate))
		}
	}

	st.TotalSavings = st.NetLedgerBalance.Add(st.AccruedInvestmentInterest).Add(st.ProjectedAnnualInterest)

	// Deposits stay locked for their challenge year and collapse into the
	// withdrawable pot once that year ends, where they remain until spent.
	// Withdrawals and contributions of any year draw the pot down.
	st.PreviousYearMaturedTotal = domain.MaxZero(
		maturedDeposits.Sub(st.GrossWithdrawals).Sub(st.GrossContributions))
	st.AvailableBalance = domain.MaxZero(st.PreviousYearMaturedTotal.Sub(holds))

	st.Progress = s.progress(ctx, accountID, year, st.GrossDeposits, entries)

	return st, nil
}

func (s *BalanceService) progress(ctx context.Context, accountID uuid.UUID, year int, grossDeposits decimal.Decimal, entries []domain.LedgerEntry) domain.ChallengeProgress {
	p := domain.ChallengeProgress{
		TotalWeeks:         domain.ChallengeWeeks,
		NextWeek:           1,
		CarryForward:       decimal.Zero,
		UnallocatedSurplus: decimal.Zero,
		TotalSaved:         grossDeposits,
		TargetAmount:       domain.ChallengeTarget,
	}

	// The latest deposit snapshot within the year carries the whole
	// allocation state; next-week is monotonic so no older entry can
	// disagree.
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Kind != domain.EntryKindDeposit || domain.ChallengeYear(e.EntryDate) != year {
			continue
		}
		p.NextWeek = e.NextWeek
		p.CarryForward = e.CarryForward
		p.WeeksCompleted = e.NextWeek - 1
		if e.NextWeek == domain.WeekComplete {
			p.WeeksCompleted = domain.ChallengeWeeks
			p.UnallocatedSurplus = e.CarryForward
		}
		break
	}

	if domain.ChallengeTarget.IsPositive() {
		pct := grossDeposits.Div(domain.ChallengeTarget).Mul(decimal.NewFromInt(100)).Round(2)
		if pct.GreaterThan(decimal.NewFromInt(100)) {
			pct = decimal.NewFromInt(100)
		}
		p.ProgressPercent = pct
	}
	return p
}

// UnfixedInterestForPeriod is the daily 15%/365 accrual over the uninvested
// balance for each day in [from, to]. Display only; the realized amount is
// what the annual batch posts.
func (s *BalanceService) UnfixedInterestForPeriod(ctx context.Context, accountID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	from, to = domain.DateOnly(from), domain.DateOnly(to)
	if to.Before(from) {
		return decimal.Zero, nil
	}

	entries, err := s.entries.EntriesByAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("UnfixedInterestForPeriod: entries for %s: %w", accountID, err)
	}
	investments, err := s.investments.InvestmentsByAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("UnfixedInterestForPeriod: investments for %s: %w", accountID, err)
	}

	dailyRate := domain.AnnualUninvestedRate.Div(decimal.NewFromInt(365))
	total := decimal.Zero
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		unfixed := unfixedBalanceOn(entries, investments, day)
		total = total.Add(domain.QuantizeMoney(unfixed.Mul(dailyRate)))
	}
	return domain.QuantizeMoney(total), nil
}

func (s *BalanceService) UnfixedInterestForYear(ctx context.Context, accountID uuid.UUID, year int) (decimal.Decimal, error) {
	return s.UnfixedInterestForPeriod(ctx, accountID,
		time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		domain.CutoverDate(year))
}

// unfixedBalanceOn computes net deposits strictly before the day, less
// principal still locked in a term on that day.
func unfixedBalanceOn(entries []domain.LedgerEntry, investments []domain.Investment, day time.Time) decimal.Decimal {
	net := decimal.Zero
	for _, e := range entries {
		if !e.EntryDate.Before(day) {
			continue
		}
		switch e.Kind {
		case domain.EntryKindDeposit:
			net = net.Add(e.Amount)
		case domain.EntryKindWithdrawal, domain.EntryKindContribution:
			net = net.Sub(e.Amount)
		}
	}

	invested := decimal.Zero
	for _, inv := range investments {
		if inv.StartDate.After(day) {
			continue
		}
		if inv.MaturityDate().After(day) {
			invested = invested.Add(inv.Principal)
		}
	}
	return domain.MaxZero(net.Sub(invested))
}
