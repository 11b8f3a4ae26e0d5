package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vaish4596/banking-app/internal/domain"
)

const payeeColumns = `id, user_id, name, account_number, bank_name, created_at`

type PayeeRepository struct {
	db *sql.DB
}

func NewPayeeRepository(db *sql.DB) *PayeeRepository {
	return &PayeeRepository{db: db}
}

func (r *PayeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payee, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+payeeColumns+` FROM payees WHERE id = $1`, id,
	)
	p, err := scanPayee(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return p, nil
}

func (r *PayeeRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Payee, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+payeeColumns+` FROM payees WHERE user_id = $1 ORDER BY name`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("GetByUserID: %w", err)
	}
	defer rows.Close()

	var payees []domain.Payee
	for rows.Next() {
		p, err := scanPayee(rows)
		if err != nil {
			return nil, fmt.Errorf("GetByUserID: scan: %w", err)
		}
		payees = append(payees, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetByUserID: rows: %w", err)
	}
	return payees, nil
}

func (r *PayeeRepository) Create(ctx context.Context, payee *domain.Payee) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO payees (id, user_id, name, account_number, bank_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		payee.ID, payee.UserID, payee.Name, payee.AccountNumber,
		payee.BankName, payee.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func scanPayee(s scanner) (*domain.Payee, error) {
	var p domain.Payee
	err := s.Scan(&p.ID, &p.UserID, &p.Name, &p.AccountNumber, &p.BankName, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
