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

// ApprovalService owns the request lifecycle. Submitting places a hold.
// Approving posts the ledger entry (or opens the investment) explicitly,
// never as a hidden side effect of a save, with the request ID as the
// idempotent reference so an approval retry cannot double-post.
type ApprovalService struct {
	requests    requestStore
	recorder    *Recorder
	balances    *BalanceService
	investments *InvestmentService
}

func NewApprovalService(requests requestStore, recorder *Recorder, balances *BalanceService, investments *InvestmentService) *ApprovalService {
	return &ApprovalService{
		requests:    requests,
		recorder:    recorder,
		balances:    balances,
		investments: investments,
	}
}

type SubmitRequestInput struct {
	AccountID  uuid.UUID
	Kind       domain.RequestKind
	Amount     decimal.Decimal
	Reason     string
	RatePct    decimal.Decimal
	TermMonths int
}

// Submit records a pending request. From this point its amount is held out
// of the account's available balance.
func (s *ApprovalService) Submit(ctx context.Context, in SubmitRequestInput) (*domain.ApprovalRequest, error) {
	req := &domain.ApprovalRequest{
		ID:         uuid.New(),
		AccountID:  in.AccountID,
		Kind:       in.Kind,
		Amount:     domain.QuantizeMoney(in.Amount),
		Reason:     in.Reason,
		Status:     domain.RequestStatusPending,
		RatePct:    in.RatePct,
		TermMonths: in.TermMonths,
		CreatedAt:  time.Now().UTC(),
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("Submit: account %s: %w", in.AccountID, err)
	}

	if err := s.requests.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("Submit: %w", err)
	}

	logging.FromContext(ctx).Info("approval request submitted",
		"request_id", req.ID,
		"account_id", req.AccountID,
		"kind", req.Kind,
		"amount", req.Amount,
	)
	return req, nil
}

// Approve resolves a pending request on the given date. Withdrawals and
// contributions must fit in the available balance (counting the request's
// own hold as released); investment requests open the term with the held
// funds.
func (s *ApprovalService) Approve(ctx context.Context, requestID uuid.UUID, date time.Time) (*domain.LedgerEntry, error) {
	req, err := s.requests.RequestByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("Approve: request %s: %w", requestID, err)
	}
	if req.Status != domain.RequestStatusPending {
		return nil, fmt.Errorf("Approve: request %s is %s: %w", requestID, req.Status, domain.ErrRequestNotPending)
	}

	var entry *domain.LedgerEntry
	switch req.Kind {
	case domain.RequestKindWithdrawal, domain.RequestKindContribution:
		if err := s.checkAvailable(ctx, req, date); err != nil {
			return nil, fmt.Errorf("Approve: request %s: %w", requestID, err)
		}

		if req.Kind == domain.RequestKindWithdrawal {
			entry, err = s.recorder.RecordWithdrawal(ctx, req.AccountID, req.Amount, date, req.ID.String())
		} else {
			entry, err = s.recorder.RecordContribution(ctx, req.AccountID, req.Amount, date, req.ID.String())
		}
		if err != nil {
			return nil, fmt.Errorf("Approve: request %s: %w", requestID, err)
		}

	case domain.RequestKindInvestment:
		if _, err := s.investments.Open(ctx, req.AccountID, req.Amount, req.RatePct, req.TermMonths, date); err != nil {
			return nil, fmt.Errorf("Approve: request %s: %w", requestID, err)
		}

	default:
		return nil, fmt.Errorf("Approve: request %s kind %q: %w", requestID, req.Kind, domain.ErrInvalidRequest)
	}

	if err := s.requests.UpdateRequestStatus(ctx, req.ID, domain.RequestStatusApproved, "", time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("Approve: update status %s: %w", requestID, err)
	}

	logging.FromContext(ctx).Info("approval request approved",
		"request_id", req.ID,
		"account_id", req.AccountID,
		"kind", req.Kind,
		"amount", req.Amount,
	)
	return entry, nil
}

func (s *ApprovalService) Reject(ctx context.Context, requestID uuid.UUID, notes string) error {
	req, err := s.requests.RequestByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("Reject: request %s: %w", requestID, err)
	}
	if req.Status != domain.RequestStatusPending {
		return fmt.Errorf("Reject: request %s is %s: %w", requestID, req.Status, domain.ErrRequestNotPending)
	}

	if err := s.requests.UpdateRequestStatus(ctx, req.ID, domain.RequestStatusRejected, notes, time.Now().UTC()); err != nil {
		return fmt.Errorf("Reject: %w", err)
	}

	logging.FromContext(ctx).Info("approval request rejected",
		"request_id", req.ID,
		"account_id", req.AccountID,
	)
	return nil
}

// checkAvailable verifies the request fits in the withdrawable pot. The
// pending request is itself part of the statement's holds, so its amount is
// added back before comparing.
func (s *ApprovalService) checkAvailable(ctx context.Context, req *domain.ApprovalRequest, date time.Time) error {
	st, err := s.balances.Statement(ctx, req.AccountID, date)
	if err != nil {
		return fmt.Errorf("checkAvailable: %w", err)
	}

	otherHolds := domain.MaxZero(st.PendingHolds.Sub(req.Amount))
	available := domain.MaxZero(st.PreviousYearMaturedTotal.Sub(otherHolds))
	if req.Amount.GreaterThan(available) {
		return fmt.Errorf("checkAvailable: amount %s, available %s: %w",
			req.Amount, available, domain.ErrInsufficientAvailable)
	}
	return nil
}
