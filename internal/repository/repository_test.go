package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaish4596/banking-app/internal/domain"
	"github.com/vaish4596/banking-app/internal/repository"
	"github.com/vaish4596/banking-app/internal/testutil"
)

func TestApplyDelta_RefusesNegativeBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewAccountRepository(db)
	ctx := context.Background()

	user := testutil.SeedUser(t, db, "alice@test.com", "Alice")
	acct := testutil.SeedAccount(t, db, user.ID, "50.00")

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	_, err = repo.GetForUpdate(ctx, tx, acct.ID)
	require.NoError(t, err)

	err = repo.ApplyDelta(ctx, tx, acct.ID, decimal.RequireFromString("-50.01"))
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	err = repo.ApplyDelta(ctx, tx, acct.ID, decimal.RequireFromString("-50.00"))
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	got := testutil.GetBalance(t, db, acct.ID)
	assert.True(t, got.IsZero(), "balance: %s", got)
}

func TestGetForUpdate_UnknownAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewAccountRepository(db)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	_, err = repo.GetForUpdate(ctx, tx, uuid.New())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLedgerCreate_DuplicateReference(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ledger := repository.NewLedgerRepository(db)
	ctx := context.Background()

	user := testutil.SeedUser(t, db, "alice@test.com", "Alice")
	acct := testutil.SeedAccount(t, db, user.ID, "100.00")

	ref := domain.NewReferenceID()
	entry := func() *domain.LedgerEntry {
		return &domain.LedgerEntry{
			ID:          uuid.New(),
			ReferenceID: ref,
			ToAccountID: &acct.ID,
			Amount:      decimal.RequireFromString("10.00"),
			Fee:         decimal.Zero,
			Currency:    domain.DefaultCurrency,
			Kind:        domain.EntryKindDeposit,
			Status:      domain.EntryStatusCompleted,
			CreatedAt:   time.Now().UTC(),
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, ledger.Create(ctx, tx, entry()))
	require.NoError(t, tx.Commit())

	tx, err = db.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()
	err = ledger.Create(ctx, tx, entry())
	require.ErrorIs(t, err, domain.ErrDuplicateReference)
}

func TestLedgerGetByAccountID_Pagination(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ledger := repository.NewLedgerRepository(db)
	ctx := context.Background()

	user := testutil.SeedUser(t, db, "alice@test.com", "Alice")
	acct := testutil.SeedAccount(t, db, user.ID, "100.00")

	for i := range 5 {
		tx, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)
		err = ledger.Create(ctx, tx, &domain.LedgerEntry{
			ID:          uuid.New(),
			ReferenceID: domain.NewReferenceID(),
			ToAccountID: &acct.ID,
			Amount:      decimal.RequireFromString("1.00"),
			Fee:         decimal.Zero,
			Currency:    domain.DefaultCurrency,
			Kind:        domain.EntryKindDeposit,
			Status:      domain.EntryStatusCompleted,
			CreatedAt:   time.Now().UTC().Add(time.Duration(i) * time.Millisecond),
		})
		require.NoError(t, err)
		require.NoError(t, tx.Commit())
	}

	entries, total, err := ledger.GetByAccountID(ctx, acct.ID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, entries, 2)

	entries, total, err = ledger.GetByAccountID(ctx, acct.ID, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, entries, 1)
}
