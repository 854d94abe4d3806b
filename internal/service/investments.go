package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmukasa/savings-challenge-engine/internal/domain"
	"github.com/jmukasa/savings-challenge-engine/internal/events"
	"github.com/jmukasa/savings-challenge-engine/internal/logging"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// InvestmentService manages fixed-term investments and the lazy
// fixed -> matured transition. Maturity checks race harmlessly: the interest
// posting is keyed by the investment's identity, so however many triggers
// fire (dashboard check, scheduled sweep) the ledger receives exactly one
// interest entry per investment.
type InvestmentService struct {
	investments investmentStore
	recorder    *Recorder
	publisher   events.Publisher

	// Sweep fan-out width.
	concurrency int
}

func NewInvestmentService(investments investmentStore, recorder *Recorder, publisher events.Publisher, concurrency int) *InvestmentService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &InvestmentService{
		investments: investments,
		recorder:    recorder,
		publisher:   publisher,
		concurrency: concurrency,
	}
}

// Open commits member funds to a fixed term. It does not touch the ledger:
// invested funds remain counted in the net balance and are excluded from
// the uninvested split instead.
func (s *InvestmentService) Open(ctx context.Context, accountID uuid.UUID, principal, ratePct decimal.Decimal, termMonths int, startDate time.Time) (*domain.Investment, error) {
	inv := &domain.Investment{
		ID:         uuid.New(),
		AccountID:  accountID,
		Principal:  domain.QuantizeMoney(principal),
		RatePct:    ratePct,
		TermMonths: termMonths,
		StartDate:  domain.DateOnly(startDate),
		Status:     domain.InvestmentStatusFixed,
		CreatedAt:  time.Now().UTC(),
	}
	if err := inv.Validate(); err != nil {
		return nil, fmt.Errorf("Open: account %s: %w", accountID, err)
	}

	if err := s.investments.CreateInvestment(ctx, inv); err != nil {
		return nil, fmt.Errorf("Open: %w", err)
	}

	logging.FromContext(ctx).Info("investment opened",
		"investment_id", inv.ID,
		"account_id", accountID,
		"principal", inv.Principal,
		"rate_pct", inv.RatePct,
		"term_months", inv.TermMonths,
	)
	return inv, nil
}

func (s *InvestmentService) Get(ctx context.Context, id uuid.UUID) (*domain.Investment, error) {
	inv, err := s.investments.InvestmentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Get: investment %s: %w", id, err)
	}
	return inv, nil
}

func (s *InvestmentService) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Investment, error) {
	invs, err := s.investments.InvestmentsByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("ListByAccount: account %s: %w", accountID, err)
	}
	return invs, nil
}

// CheckMaturity transitions the investment to matured once asOf reaches the
// maturity date and posts the full expected interest as a deposit. Calling
// it on an already-matured investment, or re-delivering after a crash
// between posting and marking, is a no-op returning (nil, nil), never an
// error.
func (s *InvestmentService) CheckMaturity(ctx context.Context, id uuid.UUID, asOf time.Time) (*domain.LedgerEntry, error) {
	inv, err := s.investments.InvestmentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("CheckMaturity: investment %s: %w", id, err)
	}

	if inv.Status == domain.InvestmentStatusMatured && inv.InterestPosted {
		return nil, nil
	}
	if !inv.IsMatured(asOf) {
		return nil, nil
	}

	interest := inv.TotalInterestExpected()
	var entry *domain.LedgerEntry
	if interest.IsPositive() {
		// The reference makes the posting idempotent across every
		// trigger path; a duplicate comes back as (nil, nil).
		entry, err = s.recorder.RecordInterestDeposit(ctx, inv.AccountID, interest, inv.MaturityDate(), domain.InvestmentInterestReference(inv.ID))
		if err != nil {
			return nil, fmt.Errorf("CheckMaturity: post interest for %s: %w", id, err)
		}
	}

	if err := s.investments.MarkMatured(ctx, id, true); err != nil {
		return nil, fmt.Errorf("CheckMaturity: mark matured %s: %w", id, err)
	}

	log := logging.FromContext(ctx)
	log.Info("investment matured",
		"investment_id", inv.ID,
		"account_id", inv.AccountID,
		"interest", interest,
		"interest_posted", entry != nil,
	)

	if err := s.publisher.Publish(ctx, events.TopicInvestmentMatured, events.InvestmentMatured{
		InvestmentID: inv.ID,
		AccountID:    inv.AccountID,
		Principal:    inv.Principal.StringFixed(2),
		Interest:     interest.StringFixed(2),
		MaturityDate: inv.MaturityDate(),
	}); err != nil {
		log.Warn("failed to publish maturity event", "investment_id", inv.ID, "error", err)
	}

	return entry, nil
}

type SweepFailure struct {
	InvestmentID uuid.UUID
	Err          error
}

type SweepReport struct {
	AsOf     time.Time
	Checked  int
	Matured  int
	Failures []SweepFailure
}

// SweepMaturity runs CheckMaturity across every fixed investment. Failures
// are collected per investment and never abort the sweep; because the
// posting is idempotent the sweep can be interrupted and restarted safely.
func (s *InvestmentService) SweepMaturity(ctx context.Context, asOf time.Time) (*SweepReport, error) {
	fixed, err := s.investments.FixedInvestments(ctx)
	if err != nil {
		return nil, fmt.Errorf("SweepMaturity: %w", err)
	}

	report := &SweepReport{AsOf: domain.DateOnly(asOf), Checked: len(fixed)}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, inv := range fixed {
		g.Go(func() error {
			entry, err := s.CheckMaturity(gctx, inv.ID, asOf)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failures = append(report.Failures, SweepFailure{InvestmentID: inv.ID, Err: err})
				return nil
			}
			if entry != nil || inv.IsMatured(asOf) {
				report.Matured++
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, fmt.Errorf("SweepMaturity: %w", err)
	}

	logging.FromContext(ctx).Info("maturity sweep completed",
		"as_of", report.AsOf,
		"checked", report.Checked,
		"matured", report.Matured,
		"failures", len(report.Failures),
	)
	return report, nil
}
