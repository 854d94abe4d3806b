package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EntryKind string

const (
	EntryKindDeposit      EntryKind = "deposit"
	EntryKindWithdrawal   EntryKind = "withdrawal"
	EntryKindContribution EntryKind = "contribution"
)

// WeekCoverage records one challenge week fully funded by a deposit.
// Allocated always equals Target; partial weeks never occur.
type WeekCoverage struct {
	Week           int             `json:"week"`
	Target         decimal.Decimal `json:"target"`
	Allocated      decimal.Decimal `json:"allocated"`
	FullyCovered   bool            `json:"fully_covered"`
	BroughtForward decimal.Decimal `json:"brought_forward"`
	RunningTotal   decimal.Decimal `json:"running_total"`
}

// LedgerEntry is an immutable record of a single money movement against one
// account. Deposits additionally carry the week-allocation snapshot computed
// once at creation time; withdrawals and contributions carry a zero snapshot
// since they do not participate in challenge-progress accounting.
type LedgerEntry struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Kind      EntryKind
	Amount    decimal.Decimal
	EntryDate time.Time

	// Reference idempotently keys the entry within its account. Approval
	// workflows supply their request identity here; system postings use
	// the INV-INT-/UNFIXED-INT- schemes; plain deposits get a receipt
	// number. Empty means no idempotency guarantee.
	Reference string

	CoveredWeeks    []WeekCoverage
	CarryForward    decimal.Decimal
	CumulativeTotal decimal.Decimal
	NextWeek        int

	CreatedAt time.Time
}

// InvestmentInterestReference keys the single maturity-interest posting an
// investment may ever produce.
func InvestmentInterestReference(investmentID uuid.UUID) string {
	return fmt.Sprintf("INV-INT-%s", investmentID)
}

// AnnualInterestReference keys the once-per-year posting of 15% interest on
// an account's uninvested balance.
func AnnualInterestReference(year int) string {
	return fmt.Sprintf("UNFIXED-INT-%d", year)
}

// ReceiptNumber formats the receipt reference for a plain member deposit.
func ReceiptNumber(seq int64) string {
	return fmt.Sprintf("RCT-%06d", seq)
}
