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

type WithdrawRequest struct {
	AccountID   uuid.UUID
	Amount      decimal.Decimal
	Actor       *uuid.UUID
	Description string
}

func (s *Service) Withdraw(ctx context.Context, req WithdrawRequest) (*Result, error) {
	if err := domain.ValidateAmount(req.Amount); err != nil {
		return nil, fmt.Errorf("Withdraw: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Withdraw: begin tx: %w", err)
	}
	defer tx.Rollback()

	locked, err := lockAccountsInOrder(ctx, tx, s.accounts, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("Withdraw: %w", err)
	}
	acct := locked[req.AccountID]

	if err := verifyAccountActive(acct); err != nil {
		return nil, fmt.Errorf("Withdraw: %w", err)
	}

	if acct.Balance.LessThan(req.Amount) {
		return nil, fmt.Errorf("Withdraw: %w", domain.ErrInsufficientFunds)
	}

	if err := s.accounts.ApplyDelta(ctx, tx, acct.ID, req.Amount.Neg()); err != nil {
		return nil, fmt.Errorf("Withdraw: %w", err)
	}

	entry := newEntry(domain.EntryKindWithdraw, req.Amount, acct.Currency, req.Actor, req.Description, time.Now().UTC())
	entry.FromAccountID = &acct.ID

	if err := s.ledger.Create(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("Withdraw: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Withdraw: commit: %w", err)
	}

	newBalance := acct.Balance.Sub(req.Amount)

	logging.FromContext(ctx).Info("withdrawal completed",
		"reference_id", entry.ReferenceID,
		"account_id", acct.ID,
		"amount", req.Amount,
	)

	s.publishCompleted(ctx, entry)

	return &Result{Entry: entry, SourceBalance: &newBalance}, nil
}
