package movement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vaish4596/banking-app/internal/domain"
	"github.com/vaish4596/banking-app/internal/logging"
)

type DepositRequest struct {
	AccountID   uuid.UUID
	Amount      decimal.Decimal
	Actor       *uuid.UUID
	Description string
}

func (s *Service) Deposit(ctx context.Context, req DepositRequest) (*Result, error) {
	if err := domain.ValidateAmount(req.Amount); err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Deposit: begin tx: %w", err)
	}
	defer tx.Rollback()

	locked, err := lockAccountsInOrder(ctx, tx, s.accounts, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}
	acct := locked[req.AccountID]

	if err := verifyAccountActive(acct); err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}

	if err := s.accounts.ApplyDelta(ctx, tx, acct.ID, req.Amount); err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}

	entry := newEntry(domain.EntryKindDeposit, req.Amount, acct.Currency, req.Actor, req.Description, time.Now().UTC())
	entry.ToAccountID = &acct.ID

	if err := s.ledger.Create(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("Deposit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Deposit: commit: %w", err)
	}

	newBalance := acct.Balance.Add(req.Amount)

	logging.FromContext(ctx).Info("deposit completed",
		"reference_id", entry.ReferenceID,
		"account_id", acct.ID,
		"amount", req.Amount,
	)

	s.publishCompleted(ctx, entry)

	return &Result{Entry: entry, DestBalance: &newBalance}, nil
}
