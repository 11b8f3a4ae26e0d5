package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vaish4596/banking-app/internal/domain"
)

const billColumns = `id, user_id, payee_id, amount, due_date, status, created_at, paid_at`

type BillRepository struct {
	db *sql.DB
}

func NewBillRepository(db *sql.DB) *BillRepository {
	return &BillRepository{db: db}
}

func (r *BillRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bill, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = $1`, id,
	)
	b, err := scanBill(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return b, nil
}

func (r *BillRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Bill, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE user_id = $1 ORDER BY due_date`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("GetByUserID: %w", err)
	}
	defer rows.Close()

	var bills []domain.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("GetByUserID: scan: %w", err)
		}
		bills = append(bills, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetByUserID: rows: %w", err)
	}
	return bills, nil
}

func (r *BillRepository) Create(ctx context.Context, bill *domain.Bill) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO bills (id, user_id, payee_id, amount, due_date, status, created_at, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		bill.ID, bill.UserID, bill.PayeeID, bill.Amount, bill.DueDate,
		bill.Status, bill.CreatedAt, bill.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// MarkPaid flips a pending bill to paid inside the caller's transaction.
// A zero row count means the bill was not pending anymore (already paid or
// flagged overdue), which the settlement flow treats as ErrBillNotPayable.
func (r *BillRepository) MarkPaid(ctx context.Context, tx *sql.Tx, id uuid.UUID, paidAt time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE bills SET status = $1, paid_at = $2 WHERE id = $3 AND status = $4`,
		domain.BillStatusPaid, paidAt, id, domain.BillStatusPending,
	)
	if err != nil {
		return fmt.Errorf("MarkPaid: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("MarkPaid: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("MarkPaid: %w", domain.ErrBillNotPayable)
	}
	return nil
}

func scanBill(s scanner) (*domain.Bill, error) {
	var b domain.Bill
	err := s.Scan(
		&b.ID, &b.UserID, &b.PayeeID, &b.Amount, &b.DueDate,
		&b.Status, &b.CreatedAt, &b.PaidAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
