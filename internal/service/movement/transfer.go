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

type TransferRequest struct {
	SourceAccountID uuid.UUID
	DestAccountID   uuid.UUID
	Amount          decimal.Decimal
	Actor           *uuid.UUID
	Description     string
}

// Transfer moves Amount from source to destination as one atomic unit. The
// sum of the two balances is identical before and after, whichever of the
// concurrent outcomes wins.
func (s *Service) Transfer(ctx context.Context, req TransferRequest) (*Result, error) {
	if err := domain.ValidateAmount(req.Amount); err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}
	if req.SourceAccountID == req.DestAccountID {
		return nil, fmt.Errorf("Transfer: %w", domain.ErrSameAccount)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Transfer: begin tx: %w", err)
	}
	defer tx.Rollback()

	locked, err := lockAccountsInOrder(ctx, tx, s.accounts, req.SourceAccountID, req.DestAccountID)
	if err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}
	source, dest := locked[req.SourceAccountID], locked[req.DestAccountID]

	if err := verifyAccountActive(source); err != nil {
		return nil, fmt.Errorf("Transfer: source: %w", err)
	}
	if err := verifyAccountActive(dest); err != nil {
		return nil, fmt.Errorf("Transfer: destination: %w", err)
	}

	if source.Balance.LessThan(req.Amount) {
		return nil, fmt.Errorf("Transfer: %w", domain.ErrInsufficientFunds)
	}

	if err := s.accounts.ApplyDelta(ctx, tx, source.ID, req.Amount.Neg()); err != nil {
		return nil, fmt.Errorf("Transfer: debit source: %w", err)
	}
	if err := s.accounts.ApplyDelta(ctx, tx, dest.ID, req.Amount); err != nil {
		return nil, fmt.Errorf("Transfer: credit destination: %w", err)
	}

	entry := newEntry(domain.EntryKindTransfer, req.Amount, source.Currency, req.Actor, req.Description, time.Now().UTC())
	entry.FromAccountID = &source.ID
	entry.ToAccountID = &dest.ID

	if err := s.ledger.Create(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Transfer: commit: %w", err)
	}

	sourceBalance := source.Balance.Sub(req.Amount)
	destBalance := dest.Balance.Add(req.Amount)

	logging.FromContext(ctx).Info("transfer completed",
		"reference_id", entry.ReferenceID,
		"source_account", source.ID,
		"dest_account", dest.ID,
		"amount", req.Amount,
	)

	s.publishCompleted(ctx, entry)

	return &Result{Entry: entry, SourceBalance: &sourceBalance, DestBalance: &destBalance}, nil
}
