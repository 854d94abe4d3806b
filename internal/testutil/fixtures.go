package testutil

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmukasa/savings-challenge-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// SeedEntry inserts a fully-formed ledger entry, bypassing the allocator.
// Tests that exercise the allocator should go through the service instead.
func SeedEntry(t *testing.T, db *sql.DB, e *domain.LedgerEntry) {
	t.Helper()

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	covered, err := json.Marshal(e.CoveredWeeks)
	if err != nil {
		t.Fatalf("marshal covered weeks: %v", err)
	}

	var reference any
	if e.Reference != "" {
		reference = e.Reference
	}

	_, err = db.Exec(
		`INSERT INTO ledger_entries
		   (id, account_id, kind, amount, entry_date, reference, covered_weeks,
		    carry_forward, cumulative_total, next_week, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		e.ID, e.AccountID, e.Kind, e.Amount, e.EntryDate, reference, covered,
		e.CarryForward, e.CumulativeTotal, e.NextWeek, e.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed ledger entry: %v", err)
	}
}

func SeedInvestment(t *testing.T, db *sql.DB, inv *domain.Investment) {
	t.Helper()

	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	if inv.Status == "" {
		inv.Status = domain.InvestmentStatusFixed
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO investments
		   (id, account_id, principal, rate_pct, term_months, start_date, status, interest_posted, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		inv.ID, inv.AccountID, inv.Principal, inv.RatePct, inv.TermMonths,
		inv.StartDate, inv.Status, inv.InterestPosted, inv.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed investment: %v", err)
	}
}

func SeedRequest(t *testing.T, db *sql.DB, req *domain.ApprovalRequest) {
	t.Helper()

	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	if req.Status == "" {
		req.Status = domain.RequestStatusPending
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO approval_requests
		   (id, account_id, kind, amount, reason, status, rate_pct, term_months, admin_notes, created_at, processed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		req.ID, req.AccountID, req.Kind, req.Amount, req.Reason, req.Status,
		req.RatePct, req.TermMonths, req.AdminNotes, req.CreatedAt, req.ProcessedAt,
	)
	if err != nil {
		t.Fatalf("seed approval request: %v", err)
	}
}

func CountEntries(t *testing.T, db *sql.DB, accountID uuid.UUID) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM ledger_entries WHERE account_id = $1`, accountID).Scan(&count)
	if err != nil {
		t.Fatalf("count ledger entries for account %s: %v", accountID, err)
	}
	return count
}

func SumEntries(t *testing.T, db *sql.DB, accountID uuid.UUID, kind domain.EntryKind) decimal.Decimal {
	t.Helper()

	var sum decimal.Decimal
	err := db.QueryRow(
		`SELECT COALESCE(SUM(amount), 0) FROM ledger_entries WHERE account_id = $1 AND kind = $2`,
		accountID, kind,
	).Scan(&sum)
	if err != nil {
		t.Fatalf("sum ledger entries for account %s: %v", accountID, err)
	}
	return sum
}
