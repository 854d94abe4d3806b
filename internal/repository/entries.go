package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmukasa/savings-challenge-engine/internal/domain"
)

type scanner interface {
	Scan(dest ...any) error
}

const entryColumns = `id, account_id, kind, amount, entry_date, reference,
	covered_weeks, carry_forward, cumulative_total, next_week, created_at`

type EntryRepository struct {
	db *sql.DB
}

func NewEntryRepository(db *sql.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

func (r *EntryRepository) AppendEntry(ctx context.Context, entry *domain.LedgerEntry) error {
	weeks, err := json.Marshal(entry.CoveredWeeks)
	if err != nil {
		return fmt.Errorf("AppendEntry: marshal covered weeks: %w", err)
	}

	var reference sql.NullString
	if entry.Reference != "" {
		reference = sql.NullString{String: entry.Reference, Valid: true}
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO ledger_entries (
			id, account_id, kind, amount, entry_date, reference,
			covered_weeks, carry_forward, cumulative_total, next_week, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (account_id, reference) WHERE reference IS NOT NULL DO NOTHING`,
		entry.ID, entry.AccountID, entry.Kind, entry.Amount, entry.EntryDate, reference,
		weeks, entry.CarryForward, entry.CumulativeTotal, entry.NextWeek, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("AppendEntry: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("AppendEntry: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("AppendEntry: account %s reference %s: %w",
			entry.AccountID, entry.Reference, domain.ErrDuplicateReference)
	}
	return nil
}

func (r *EntryRepository) LatestDepositInYear(ctx context.Context, accountID uuid.UUID, year int) (*domain.LedgerEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM ledger_entries
		WHERE account_id = $1 AND kind = 'deposit'
		  AND entry_date >= make_date($2, 1, 1) AND entry_date < make_date($2 + 1, 1, 1)
		ORDER BY created_at DESC, id DESC LIMIT 1`,
		accountID, year,
	)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("LatestDepositInYear: %w", err)
	}
	return entry, nil
}

func (r *EntryRepository) EntryByReference(ctx context.Context, accountID uuid.UUID, reference string) (*domain.LedgerEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM ledger_entries
		WHERE account_id = $1 AND reference = $2`,
		accountID, reference,
	)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("EntryByReference: %w", err)
	}
	return entry, nil
}

func (r *EntryRepository) EntriesByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM ledger_entries
		WHERE account_id = $1 ORDER BY created_at, id`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("EntriesByAccount: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("EntriesByAccount: scan: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("EntriesByAccount: rows: %w", err)
	}
	return entries, nil
}

func (r *EntryRepository) AccountIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT account_id FROM ledger_entries ORDER BY account_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("AccountIDs: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("AccountIDs: scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("AccountIDs: rows: %w", err)
	}
	return ids, nil
}

// NextReceiptNumber draws from a database sequence rather than a throwaway
// counter row, so concurrent writers never collide.
func (r *EntryRepository) NextReceiptNumber(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT nextval('receipt_seq')`).Scan(&n); err != nil {
		return 0, fmt.Errorf("NextReceiptNumber: %w", err)
	}
	return n, nil
}

func scanEntry(s scanner) (*domain.LedgerEntry, error) {
	var (
		e         domain.LedgerEntry
		reference sql.NullString
		weeks     []byte
	)
	err := s.Scan(
		&e.ID, &e.AccountID, &e.Kind, &e.Amount, &e.EntryDate, &reference,
		&weeks, &e.CarryForward, &e.CumulativeTotal, &e.NextWeek, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if reference.Valid {
		e.Reference = reference.String
	}
	if len(weeks) > 0 {
		if err := json.Unmarshal(weeks, &e.CoveredWeeks); err != nil {
			return nil, fmt.Errorf("unmarshal covered weeks: %w", err)
		}
	}
	return &e, nil
}
