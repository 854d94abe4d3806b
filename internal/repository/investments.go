package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmukasa/savings-challenge-engine/internal/domain"
)

const investmentColumns = `id, account_id, principal, rate_pct, term_months,
	start_date, status, interest_posted, created_at`

type InvestmentRepository struct {
	db *sql.DB
}

func NewInvestmentRepository(db *sql.DB) *InvestmentRepository {
	return &InvestmentRepository{db: db}
}

func (r *InvestmentRepository) CreateInvestment(ctx context.Context, inv *domain.Investment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO investments (
			id, account_id, principal, rate_pct, term_months,
			start_date, status, interest_posted, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		inv.ID, inv.AccountID, inv.Principal, inv.RatePct, inv.TermMonths,
		inv.StartDate, inv.Status, inv.InterestPosted, inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("CreateInvestment: %w", err)
	}
	return nil
}

func (r *InvestmentRepository) InvestmentByID(ctx context.Context, id uuid.UUID) (*domain.Investment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+investmentColumns+` FROM investments WHERE id = $1`, id,
	)

	inv, err := scanInvestment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("InvestmentByID: %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("InvestmentByID: %w", err)
	}
	return inv, nil
}

func (r *InvestmentRepository) InvestmentsByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.Investment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+investmentColumns+` FROM investments
		WHERE account_id = $1 ORDER BY created_at, id`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("InvestmentsByAccount: %w", err)
	}
	defer rows.Close()

	return collectInvestments(rows)
}

func (r *InvestmentRepository) FixedInvestments(ctx context.Context) ([]domain.Investment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+investmentColumns+` FROM investments
		WHERE status = 'fixed' ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("FixedInvestments: %w", err)
	}
	defer rows.Close()

	return collectInvestments(rows)
}

func (r *InvestmentRepository) MarkMatured(ctx context.Context, id uuid.UUID, interestPosted bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE investments SET status = 'matured', interest_posted = $2 WHERE id = $1`,
		id, interestPosted,
	)
	if err != nil {
		return fmt.Errorf("MarkMatured: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("MarkMatured: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("MarkMatured: %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func collectInvestments(rows *sql.Rows) ([]domain.Investment, error) {
	var investments []domain.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan investment: %w", err)
		}
		investments = append(investments, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("investment rows: %w", err)
	}
	return investments, nil
}

func scanInvestment(s scanner) (*domain.Investment, error) {
	var inv domain.Investment
	err := s.Scan(
		&inv.ID, &inv.AccountID, &inv.Principal, &inv.RatePct, &inv.TermMonths,
		&inv.StartDate, &inv.Status, &inv.InterestPosted, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
