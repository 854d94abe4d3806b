// Package events defines the post-commit event surface of the ledger.
// Publishing is best-effort: a failed publish is logged by the caller and
// never rolls back a posted entry.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	TopicEntryRecorded     = "ledger.entry-recorded"
	TopicInvestmentMatured = "ledger.investment-matured"
)

type EntryRecorded struct {
	EntryID   uuid.UUID `json:"entry_id"`
	AccountID uuid.UUID `json:"account_id"`
	Kind      string    `json:"kind"`
	Amount    string    `json:"amount"`
	Reference string    `json:"reference,omitempty"`
	EntryDate time.Time `json:"entry_date"`
}

type InvestmentMatured struct {
	InvestmentID uuid.UUID `json:"investment_id"`
	AccountID    uuid.UUID `json:"account_id"`
	Principal    string    `json:"principal"`
	Interest     string    `json:"interest"`
	MaturityDate time.Time `json:"maturity_date"`
}

type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
}

// Nop is the default publisher when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
