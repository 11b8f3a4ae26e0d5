// Package billpay settles bills on top of the movement engine's discipline:
// a successful settlement debits the account, appends the completed
// bill-payment entry, and flips the bill to paid in one transaction. A
// declined attempt records a failed entry and leaves the bill payable.
package billpay

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vaish4596/banking-app/internal/domain"
	"github.com/vaish4596/banking-app/internal/gateway"
	"github.com/vaish4596/banking-app/internal/logging"
)

type billRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Bill, error)
	MarkPaid(ctx context.Context, tx *sql.Tx, id uuid.UUID, paidAt time.Time) error
}

type accountRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Account, error)
	ApplyDelta(ctx context.Context, tx *sql.Tx, id uuid.UUID, delta decimal.Decimal) error
}

type ledgerRepo interface {
	Create(ctx context.Context, tx *sql.Tx, entry *domain.LedgerEntry) error
}

type Service struct {
	bills    billRepo
	accounts accountRepo
	ledger   ledgerRepo
	gateway  gateway.Gateway
	db       *sql.DB
}

func NewService(bills billRepo, accounts accountRepo, ledger ledgerRepo, gw gateway.Gateway, db *sql.DB) *Service {
	return &Service{
		bills:    bills,
		accounts: accounts,
		ledger:   ledger,
		gateway:  gw,
		db:       db,
	}
}

type PayRequest struct {
	BillID    uuid.UUID
	AccountID uuid.UUID
	Actor     uuid.UUID
}

// Outcome reports a settlement attempt. A gateway decline is a modeled
// outcome, not an error: Paid is false and Entry holds the failed record.
type Outcome struct {
	Paid       bool
	Entry      *domain.LedgerEntry
	NewBalance *decimal.Decimal
}

func (s *Service) Pay(ctx context.Context, req PayRequest) (*Outcome, error) {
	log := logging.FromContext(ctx)

	bill, acct, err := s.resolve(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Pay: %w", err)
	}

	// The gateway is never consulted for an account that visibly cannot
	// cover the bill.
	if acct.Balance.LessThan(bill.Amount) {
		return nil, fmt.Errorf("Pay: %w", domain.ErrInsufficientFunds)
	}

	res, err := s.gateway.Attempt(ctx, bill.Amount, bill.ID.String())
	if err != nil {
		return nil, fmt.Errorf("Pay: gateway: %w", err)
	}

	if !res.Succeeded {
		entry, err := s.recordFailure(ctx, bill, acct, req.Actor, res.ProviderRef)
		if err != nil {
			return nil, fmt.Errorf("Pay: %w", err)
		}
		log.Info("bill payment declined",
			"bill_id", bill.ID,
			"account_id", acct.ID,
			"provider_ref", res.ProviderRef,
		)
		return &Outcome{Paid: false, Entry: entry}, nil
	}

	outcome, err := s.settle(ctx, bill, acct.ID, req.Actor, res.ProviderRef)
	if err != nil {
		return nil, fmt.Errorf("Pay: %w", err)
	}

	log.Info("bill paid",
		"bill_id", bill.ID,
		"account_id", acct.ID,
		"reference_id", outcome.Entry.ReferenceID,
		"provider_ref", res.ProviderRef,
	)
	return outcome, nil
}

func (s *Service) resolve(ctx context.Context, req PayRequest) (*domain.Bill, *domain.Account, error) {
	bill, err := s.bills.GetByID(ctx, req.BillID)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve: %w", err)
	}
	if bill.UserID != req.Actor {
		return nil, nil, fmt.Errorf("resolve: bill owner mismatch: %w", domain.ErrNotFound)
	}
	if bill.Status != domain.BillStatusPending {
		return nil, nil, fmt.Errorf("resolve: %w", domain.ErrBillNotPayable)
	}

	acct, err := s.accounts.GetByID(ctx, req.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, fmt.Errorf("resolve: %w", domain.ErrAccountNotFound)
		}
		return nil, nil, fmt.Errorf("resolve: %w", err)
	}
	if acct.UserID != req.Actor {
		return nil, nil, fmt.Errorf("resolve: account owner mismatch: %w", domain.ErrAccountNotFound)
	}
	if !acct.IsActive {
		return nil, nil, fmt.Errorf("resolve: %w", domain.ErrInactiveAccount)
	}

	return bill, acct, nil
}

// settle commits the debit, the completed entry, and the bill flip together.
// A crash before commit leaves everything untouched; the bill can never read
// paid while the balance was not deducted, nor the reverse.
func (s *Service) settle(ctx context.Context, bill *domain.Bill, accountID, actor uuid.UUID, providerRef string) (*Outcome, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("settle: begin tx: %w", err)
	}
	defer tx.Rollback()

	acct, err := s.accounts.GetForUpdate(ctx, tx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("settle: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("settle: %w", err)
	}
	if !acct.IsActive {
		return nil, fmt.Errorf("settle: %w", domain.ErrInactiveAccount)
	}
	if acct.Balance.LessThan(bill.Amount) {
		return nil, fmt.Errorf("settle: %w", domain.ErrInsufficientFunds)
	}

	if err := s.accounts.ApplyDelta(ctx, tx, acct.ID, bill.Amount.Neg()); err != nil {
		return nil, fmt.Errorf("settle: %w", err)
	}

	now := time.Now().UTC()
	entry := &domain.LedgerEntry{
		ID:            uuid.New(),
		ReferenceID:   domain.NewReferenceID(),
		FromAccountID: &acct.ID,
		Amount:        bill.Amount,
		Fee:           decimal.Zero,
		Currency:      acct.Currency,
		Kind:          domain.EntryKindBillPayment,
		Status:        domain.EntryStatusCompleted,
		Description:   fmt.Sprintf("bill payment %s (gateway ref %s)", bill.ID, providerRef),
		CreatedBy:     &actor,
		CreatedAt:     now,
	}
	if err := s.ledger.Create(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("settle: %w", err)
	}

	if err := s.bills.MarkPaid(ctx, tx, bill.ID, now); err != nil {
		return nil, fmt.Errorf("settle: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("settle: commit: %w", err)
	}

	newBalance := acct.Balance.Sub(bill.Amount)
	return &Outcome{Paid: true, Entry: entry, NewBalance: &newBalance}, nil
}

// recordFailure appends a failed entry with no balance change; the bill
// stays pending and can be retried by the user.
func (s *Service) recordFailure(ctx context.Context, bill *domain.Bill, acct *domain.Account, actor uuid.UUID, providerRef string) (*domain.LedgerEntry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("recordFailure: begin tx: %w", err)
	}
	defer tx.Rollback()

	entry := &domain.LedgerEntry{
		ID:            uuid.New(),
		ReferenceID:   domain.NewReferenceID(),
		FromAccountID: &acct.ID,
		Amount:        bill.Amount,
		Fee:           decimal.Zero,
		Currency:      acct.Currency,
		Kind:          domain.EntryKindBillPayment,
		Status:        domain.EntryStatusFailed,
		Description:   fmt.Sprintf("bill payment %s declined (gateway ref %s)", bill.ID, providerRef),
		CreatedBy:     &actor,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.ledger.Create(ctx, tx, entry); err != nil {
		return nil, fmt.Errorf("recordFailure: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("recordFailure: commit: %w", err)
	}
	return entry, nil
}
