package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmukasa/savings-challenge-engine/internal/domain"
	"github.com/shopspring/decimal"
)

const requestColumns = `id, account_id, kind, amount, reason, status,
	rate_pct, term_months, admin_notes, created_at, processed_at`

type RequestRepository struct {
	db *sql.DB
}

func NewRequestRepository(db *sql.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) CreateRequest(ctx context.Context, req *domain.ApprovalRequest) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO approval_requests (
			id, account_id, kind, amount, reason, status,
			rate_pct, term_months, admin_notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		req.ID, req.AccountID, req.Kind, req.Amount, req.Reason, req.Status,
		req.RatePct, req.TermMonths, req.AdminNotes, req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("CreateRequest: %w", err)
	}
	return nil
}

func (r *RequestRepository) RequestByID(ctx context.Context, id uuid.UUID) (*domain.ApprovalRequest, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM approval_requests WHERE id = $1`, id,
	)

	var (
		req         domain.ApprovalRequest
		processedAt sql.NullTime
	)
	err := row.Scan(
		&req.ID, &req.AccountID, &req.Kind, &req.Amount, &req.Reason, &req.Status,
		&req.RatePct, &req.TermMonths, &req.AdminNotes, &req.CreatedAt, &processedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("RequestByID: %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("RequestByID: %w", err)
	}
	if processedAt.Valid {
		req.ProcessedAt = &processedAt.Time
	}
	return &req, nil
}

func (r *RequestRepository) PendingHoldTotal(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM approval_requests
		WHERE account_id = $1 AND status = 'pending'`,
		accountID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("PendingHoldTotal: %w", err)
	}
	return total, nil
}

func (r *RequestRepository) UpdateRequestStatus(ctx context.Context, id uuid.UUID, status domain.RequestStatus, notes string, processedAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE approval_requests
		SET status = $2, admin_notes = CASE WHEN $3 <> '' THEN $3 ELSE admin_notes END, processed_at = $4
		WHERE id = $1`,
		id, status, notes, processedAt,
	)
	if err != nil {
		return fmt.Errorf("UpdateRequestStatus: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateRequestStatus: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("UpdateRequestStatus: %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
