// Package memory is an in-memory implementation of the engine's storage
// interfaces. It backs unit tests and local development; production uses
// the Postgres repositories.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmukasa/savings-challenge-engine/internal/domain"
	"github.com/shopspring/decimal"
)

type Store struct {
	mu          sync.RWMutex
	entries     []domain.LedgerEntry
	investments map[uuid.UUID]domain.Investment
	requests    map[uuid.UUID]domain.ApprovalRequest
	receiptSeq  int64
}

func NewStore() *Store {
	return &Store{
		investments: make(map[uuid.UUID]domain.Investment),
		requests:    make(map[uuid.UUID]domain.ApprovalRequest),
	}
}

func (s *Store) AppendEntry(_ context.Context, entry *domain.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.Reference != "" {
		for _, e := range s.entries {
			if e.AccountID == entry.AccountID && e.Reference == entry.Reference {
				return domain.ErrDuplicateReference
			}
		}
	}
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *Store) LatestDepositInYear(_ context.Context, accountID uuid.UUID, year int) (*domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Insertion order is creation order; scan from the tail.
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if e.AccountID != accountID || e.Kind != domain.EntryKindDeposit {
			continue
		}
		if domain.ChallengeYear(e.EntryDate) != year {
			continue
		}
		cp := e
		return &cp, nil
	}
	return nil, nil
}

func (s *Store) EntryByReference(_ context.Context, accountID uuid.UUID, reference string) (*domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.entries {
		e := s.entries[i]
		if e.AccountID == accountID && e.Reference == reference && reference != "" {
			cp := e
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) EntriesByAccount(_ context.Context, accountID uuid.UUID) ([]domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.LedgerEntry
	for _, e := range s.entries {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) AccountIDs(_ context.Context) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, e := range s.entries {
		if !seen[e.AccountID] {
			seen[e.AccountID] = true
			ids = append(ids, e.AccountID)
		}
	}
	return ids, nil
}

func (s *Store) NextReceiptNumber(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receiptSeq++
	return s.receiptSeq, nil
}

func (s *Store) CreateInvestment(_ context.Context, inv *domain.Investment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.investments[inv.ID] = *inv
	return nil
}

func (s *Store) InvestmentByID(_ context.Context, id uuid.UUID) (*domain.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.investments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := inv
	return &cp, nil
}

func (s *Store) InvestmentsByAccount(_ context.Context, accountID uuid.UUID) ([]domain.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Investment
	for _, inv := range s.investments {
		if inv.AccountID == accountID {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) FixedInvestments(_ context.Context) ([]domain.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Investment
	for _, inv := range s.investments {
		if inv.Status == domain.InvestmentStatusFixed {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) MarkMatured(_ context.Context, id uuid.UUID, interestPosted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.investments[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.Status = domain.InvestmentStatusMatured
	inv.InterestPosted = interestPosted
	s.investments[id] = inv
	return nil
}

func (s *Store) CreateRequest(_ context.Context, req *domain.ApprovalRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.ID] = *req
	return nil
}

func (s *Store) RequestByID(_ context.Context, id uuid.UUID) (*domain.ApprovalRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := req
	return &cp, nil
}

func (s *Store) PendingHoldTotal(_ context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, req := range s.requests {
		if req.AccountID == accountID && req.Status == domain.RequestStatusPending {
			total = total.Add(req.Amount)
		}
	}
	return total, nil
}

func (s *Store) UpdateRequestStatus(_ context.Context, id uuid.UUID, status domain.RequestStatus, notes string, processedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return domain.ErrNotFound
	}
	req.Status = status
	if notes != "" {
		req.AdminNotes = notes
	}
	req.ProcessedAt = &processedAt
	s.requests[id] = req
	return nil
}
