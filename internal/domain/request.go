package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RequestKind string

const (
	RequestKindWithdrawal   RequestKind = "withdrawal"
	RequestKindContribution RequestKind = "contribution"
	RequestKindInvestment   RequestKind = "investment"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// ApprovalRequest is a member's pending claim on their funds. While pending
// its amount is held out of the available balance so two requests can never
// both spend the same money. On approval the request's ID becomes the
// ledger entry's idempotent reference.
type ApprovalRequest struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Kind      RequestKind
	Amount    decimal.Decimal
	Reason    string
	Status    RequestStatus

	// Investment terms, only set for RequestKindInvestment.
	RatePct    decimal.Decimal
	TermMonths int

	AdminNotes  string
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

func (r *ApprovalRequest) Validate() error {
	if err := ValidateAmount(r.Amount); err != nil {
		return err
	}
	switch r.Kind {
	case RequestKindWithdrawal, RequestKindContribution:
	case RequestKindInvestment:
		if r.RatePct.IsNegative() || r.RatePct.GreaterThan(hundred) {
			return ErrInvalidRate
		}
		if r.TermMonths < 1 {
			return ErrInvalidTerm
		}
	default:
		return ErrInvalidRequest
	}
	return nil
}
