package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmukasa/savings-challenge-engine/internal/allocation"
	"github.com/jmukasa/savings-challenge-engine/internal/domain"
	"github.com/jmukasa/savings-challenge-engine/internal/events"
	"github.com/jmukasa/savings-challenge-engine/internal/logging"
	"github.com/shopspring/decimal"
)

// Recorder appends ledger entries. Operations on the same account are
// serialized through a per-account mutex so two concurrent deposits can
// never read the same prior snapshot and compute conflicting allocations;
// different accounts proceed independently.
type Recorder struct {
	entries   entryStore
	publisher events.Publisher

	mu        sync.Mutex
	accountMu map[uuid.UUID]*sync.Mutex
}

func NewRecorder(entries entryStore, publisher events.Publisher) *Recorder {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Recorder{
		entries:   entries,
		publisher: publisher,
		accountMu: make(map[uuid.UUID]*sync.Mutex),
	}
}

func (r *Recorder) lockAccount(id uuid.UUID) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accountMu[id]; !ok {
		r.accountMu[id] = &sync.Mutex{}
	}
	return r.accountMu[id]
}

// RecordDeposit appends a member deposit, computing its week-allocation
// snapshot from the account's prior state within the same challenge year.
func (r *Recorder) RecordDeposit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, date time.Time) (*domain.LedgerEntry, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, fmt.Errorf("RecordDeposit: account %s: %w", accountID, err)
	}

	seq, err := r.entries.NextReceiptNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("RecordDeposit: receipt number: %w", err)
	}

	entry, err := r.recordDeposit(ctx, accountID, amount, date, domain.ReceiptNumber(seq))
	if err != nil {
		return nil, fmt.Errorf("RecordDeposit: %w", err)
	}
	return entry, nil
}

// RecordInterestDeposit appends a system interest posting keyed by
// reference. A replay with the same reference returns (nil, nil): no new
// entry, no error.
func (r *Recorder) RecordInterestDeposit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, date time.Time, reference string) (*domain.LedgerEntry, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, fmt.Errorf("RecordInterestDeposit: account %s: %w", accountID, err)
	}

	entry, err := r.recordDeposit(ctx, accountID, amount, date, reference)
	if err != nil {
		return nil, fmt.Errorf("RecordInterestDeposit: %w", err)
	}
	return entry, nil
}

func (r *Recorder) recordDeposit(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, date time.Time, reference string) (*domain.LedgerEntry, error) {
	lock := r.lockAccount(accountID)
	lock.Lock()
	defer lock.Unlock()

	if reference != "" {
		existing, err := r.entries.EntryByReference(ctx, accountID, reference)
		if err != nil {
			return nil, fmt.Errorf("recordDeposit: check reference: %w", err)
		}
		if existing != nil {
			return nil, nil
		}
	}

	date = domain.DateOnly(date)

	priorCarry := decimal.Zero
	priorNextWeek := 1
	prior, err := r.entries.LatestDepositInYear(ctx, accountID, domain.ChallengeYear(date))
	if err != nil {
		return nil, fmt.Errorf("recordDeposit: prior entry: %w", err)
	}
	if prior != nil {
		priorCarry = prior.CarryForward
		priorNextWeek = prior.NextWeek
	}

	// Any allocation failure aborts the write; an entry is never persisted
	// with a partially computed snapshot.
	res, err := allocation.Allocate(priorCarry, priorNextWeek, amount)
	if err != nil {
		return nil, fmt.Errorf("recordDeposit: account %s amount %s: %w", accountID, amount, err)
	}

	entry := &domain.LedgerEntry{
		ID:              uuid.New(),
		AccountID:       accountID,
		Kind:            domain.EntryKindDeposit,
		Amount:          domain.QuantizeMoney(amount),
		EntryDate:       date,
		Reference:       reference,
		CoveredWeeks:    res.CoveredWeeks,
		CarryForward:    res.CarryForward,
		CumulativeTotal: res.CumulativeTotal,
		NextWeek:        res.NextWeek,
		CreatedAt:       time.Now().UTC(),
	}

	if err := r.append(ctx, entry); err != nil {
		if errors.Is(err, domain.ErrDuplicateReference) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

// RecordWithdrawal appends an approved withdrawal. externalRef is the
// approval request's identity; replays with the same reference are ignored.
func (r *Recorder) RecordWithdrawal(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, date time.Time, externalRef string) (*domain.LedgerEntry, error) {
	entry, err := r.recordOutflow(ctx, accountID, domain.EntryKindWithdrawal, amount, date, externalRef)
	if err != nil {
		return nil, fmt.Errorf("RecordWithdrawal: %w", err)
	}
	return entry, nil
}

// RecordContribution appends an approved group contribution.
func (r *Recorder) RecordContribution(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal, date time.Time, externalRef string) (*domain.LedgerEntry, error) {
	entry, err := r.recordOutflow(ctx, accountID, domain.EntryKindContribution, amount, date, externalRef)
	if err != nil {
		return nil, fmt.Errorf("RecordContribution: %w", err)
	}
	return entry, nil
}

func (r *Recorder) recordOutflow(ctx context.Context, accountID uuid.UUID, kind domain.EntryKind, amount decimal.Decimal, date time.Time, externalRef string) (*domain.LedgerEntry, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, fmt.Errorf("account %s: %w", accountID, err)
	}

	lock := r.lockAccount(accountID)
	lock.Lock()
	defer lock.Unlock()

	if externalRef != "" {
		existing, err := r.entries.EntryByReference(ctx, accountID, externalRef)
		if err != nil {
			return nil, fmt.Errorf("check reference: %w", err)
		}
		if existing != nil {
			return nil, nil
		}
	}

	// Outflows carry a zero allocation snapshot; they reduce the net
	// balance but do not participate in challenge-progress accounting.
	entry := &domain.LedgerEntry{
		ID:              uuid.New(),
		AccountID:       accountID,
		Kind:            kind,
		Amount:          domain.QuantizeMoney(amount),
		EntryDate:       domain.DateOnly(date),
		Reference:       externalRef,
		CarryForward:    decimal.Zero,
		CumulativeTotal: decimal.Zero,
		CreatedAt:       time.Now().UTC(),
	}

	if err := r.append(ctx, entry); err != nil {
		if errors.Is(err, domain.ErrDuplicateReference) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

func (r *Recorder) append(ctx context.Context, entry *domain.LedgerEntry) error {
	if err := r.entries.AppendEntry(ctx, entry); err != nil {
		return fmt.Errorf("append entry: %w", err)
	}

	log := logging.FromContext(ctx)
	log.Info("ledger entry recorded",
		"entry_id", entry.ID,
		"account_id", entry.AccountID,
		"kind", entry.Kind,
		"amount", entry.Amount,
		"reference", entry.Reference,
	)

	if err := r.publisher.Publish(ctx, events.TopicEntryRecorded, events.EntryRecorded{
		EntryID:   entry.ID,
		AccountID: entry.AccountID,
		Kind:      string(entry.Kind),
		Amount:    entry.Amount.StringFixed(2),
		Reference: entry.Reference,
		EntryDate: entry.EntryDate,
	}); err != nil {
		log.Warn("failed to publish entry event", "entry_id", entry.ID, "error", err)
	}
	return nil
}
