// Package movement implements the money-movement engine: deposit, withdraw
// and transfer as atomic units of work over row-locked accounts. All three
// share one discipline: validate the amount, take the row locks in ascending
// account-id order, re-read balances under lock, apply deltas, append exactly
// one ledger entry, and commit.
package movement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vaish4596/banking-app/internal/domain"
	"github.com/vaish4596/banking-app/internal/events"
	"github.com/vaish4596/banking-app/internal/logging"
)

type accountRepo interface {
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Account, error)
	ApplyDelta(ctx context.Context, tx *sql.Tx, id uuid.UUID, delta decimal.Decimal) error
}

type ledgerRepo interface {
	Create(ctx context.Context, tx *sql.Tx, entry *domain.LedgerEntry) error
}

type Service struct {
	accounts  accountRepo
	ledger    ledgerRepo
	publisher events.Publisher
	db        *sql.DB
}

func NewService(accounts accountRepo, ledger ledgerRepo, publisher events.Publisher, db *sql.DB) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{
		accounts:  accounts,
		ledger:    ledger,
		publisher: publisher,
		db:        db,
	}
}

// Result reports a completed movement: the ledger entry plus the balances
// observed under lock after the deltas were applied. Source/Dest mirror the
// entry's from/to sides.
type Result struct {
	Entry         *domain.LedgerEntry
	SourceBalance *decimal.Decimal
	DestBalance   *decimal.Decimal
}

// lockAccountsInOrder acquires row locks in ascending account-id order no
// matter what order the caller supplied. Two concurrent operations over the
// same pair therefore always queue on the same first lock, so no circular
// wait can form. This rule is the engine's only deadlock defence.
func lockAccountsInOrder(ctx context.Context, tx *sql.Tx, accounts accountRepo, ids ...uuid.UUID) (map[uuid.UUID]*domain.Account, error) {
	sorted := make([]uuid.UUID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].String() < sorted[j].String()
	})

	result := make(map[uuid.UUID]*domain.Account, len(ids))
	for _, id := range sorted {
		acct, err := accounts.GetForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("lockAccountsInOrder: %w", domain.ErrAccountNotFound)
			}
			return nil, fmt.Errorf("lockAccountsInOrder: %w", err)
		}
		result[id] = acct
	}
	return result, nil
}

func verifyAccountActive(acct *domain.Account) error {
	if !acct.IsActive {
		return fmt.Errorf("account %s: %w", acct.AccountNumber, domain.ErrInactiveAccount)
	}
	return nil
}

func newEntry(kind domain.EntryKind, amount decimal.Decimal, currency domain.Currency, actor *uuid.UUID, description string, now time.Time) *domain.LedgerEntry {
	return &domain.LedgerEntry{
		ID:          uuid.New(),
		ReferenceID: domain.NewReferenceID(),
		Amount:      amount,
		Fee:         decimal.Zero,
		Currency:    currency,
		Kind:        kind,
		Status:      domain.EntryStatusCompleted,
		Description: description,
		CreatedBy:   actor,
		CreatedAt:   now,
	}
}

// publishCompleted runs after commit; a lost event never unwinds money.
func (s *Service) publishCompleted(ctx context.Context, entry *domain.LedgerEntry) {
	err := s.publisher.Publish(ctx, events.MovementCompleted{
		ReferenceID:   entry.ReferenceID,
		Kind:          string(entry.Kind),
		Amount:        entry.Amount,
		Currency:      string(entry.Currency),
		FromAccountID: entry.FromAccountID,
		ToAccountID:   entry.ToAccountID,
		CompletedAt:   entry.CreatedAt,
	})
	if err != nil {
		logging.FromContext(ctx).Error("failed to publish movement event",
			"error", err,
			"reference_id", entry.ReferenceID,
		)
	}
}
