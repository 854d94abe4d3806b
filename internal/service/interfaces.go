package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmukasa/savings-challenge-engine/internal/domain"
	"github.com/shopspring/decimal"
)

type entryStore interface {
	// AppendEntry persists a new entry. When the entry carries a
	// reference that already exists for the account it returns
	// domain.ErrDuplicateReference and writes nothing.
	AppendEntry(ctx context.Context, entry *domain.LedgerEntry) error

	// LatestDepositInYear returns the account's most recent deposit whose
	// entry date falls in the given challenge year, or (nil, nil).
	LatestDepositInYear(ctx context.Context, accountID uuid.UUID, year int) (*domain.LedgerEntry, error)

	// EntryByReference returns (nil, nil) when no entry carries the
	// reference for the account.
	EntryByReference(ctx context.Context, accountID uuid.UUID, reference string) (*domain.LedgerEntry, error)

	// EntriesByAccount returns all entries in chronological order.
	EntriesByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.LedgerEntry, error)

	// AccountIDs lists every account that has at least one entry.
	AccountIDs(ctx context.Context) ([]uuid.UUID, error)

	NextReceiptNumber(ctx context.Context) (int64, error)
}

type investmentStore interface {
	CreateInvestment(ctx context.Context, inv *domain.Investment) error
	InvestmentByID(ctx context.Context, id uuid.UUID) (*domain.Investment, error)
	InvestmentsByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Investment, error)
	FixedInvestments(ctx context.Context) ([]domain.Investment, error)

	// MarkMatured flips status to matured and records whether the
	// interest posting happened. Safe to call on an already-matured row.
	MarkMatured(ctx context.Context, id uuid.UUID, interestPosted bool) error
}

type requestStore interface {
	CreateRequest(ctx context.Context, req *domain.ApprovalRequest) error
	RequestByID(ctx context.Context, id uuid.UUID) (*domain.ApprovalRequest, error)
	PendingHoldTotal(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error)
	UpdateRequestStatus(ctx context.Context, id uuid.UUID, status domain.RequestStatus, notes string, processedAt time.Time) error
}
