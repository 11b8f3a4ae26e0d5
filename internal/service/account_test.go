package service_test

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
	"github.com/vaish4596/banking-app/internal/service"
	"github.com/vaish4596/banking-app/internal/testutil"
)

func TestSignup_CreatesUserAndDefaultAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewAccountService(
		repository.NewUserRepository(db),
		repository.NewAccountRepository(db),
		repository.NewLedgerRepository(db),
	)
	ctx := context.Background()

	user, account, err := svc.Signup(ctx, "Alice@Test.com", "Alice", "password123")
	require.NoError(t, err)

	assert.Equal(t, "alice@test.com", user.Email)
	assert.Equal(t, user.ID, account.UserID)
	assert.Equal(t, domain.AccountKindSavings, account.Kind)
	assert.Equal(t, domain.DefaultCurrency, account.Currency)
	assert.True(t, account.Balance.IsZero())
	assert.True(t, account.IsActive)
	assert.Regexp(t, `^AC[0-9A-F]{12}$`, account.AccountNumber)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewAccountService(
		repository.NewUserRepository(db),
		repository.NewAccountRepository(db),
		repository.NewLedgerRepository(db),
	)
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, "alice@test.com", "Alice", "password123")
	require.NoError(t, err)

	_, _, err = svc.Signup(ctx, "alice@test.com", "Alice Again", "password456")
	require.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestGetAccountForUser_HidesForeignAccounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewAccountService(
		repository.NewUserRepository(db),
		repository.NewAccountRepository(db),
		repository.NewLedgerRepository(db),
	)
	ctx := context.Background()

	alice := testutil.SeedUser(t, db, "alice@test.com", "Alice")
	bob := testutil.SeedUser(t, db, "bob@test.com", "Bob")
	acct := testutil.SeedAccount(t, db, alice.ID, "100.00")

	got, err := svc.GetAccountForUser(ctx, acct.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, acct.ID, got.ID)

	_, err = svc.GetAccountForUser(ctx, acct.ID, bob.ID)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestResolveAccountNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewAccountService(
		repository.NewUserRepository(db),
		repository.NewAccountRepository(db),
		repository.NewLedgerRepository(db),
	)
	ctx := context.Background()

	user := testutil.SeedUser(t, db, "alice@test.com", "Alice")
	acct := testutil.SeedAccount(t, db, user.ID, "100.00")

	got, err := svc.ResolveAccountNumber(ctx, acct.AccountNumber)
	require.NoError(t, err)
	assert.Equal(t, acct.ID, got.ID)

	_, err = svc.ResolveAccountNumber(ctx, "AC000000000000")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestGetEntryByReference_VisibleToHolderOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewAccountService(
		repository.NewUserRepository(db),
		repository.NewAccountRepository(db),
		repository.NewLedgerRepository(db),
	)
	ledger := repository.NewLedgerRepository(db)
	ctx := context.Background()

	alice := testutil.SeedUser(t, db, "alice@test.com", "Alice")
	bob := testutil.SeedUser(t, db, "bob@test.com", "Bob")
	acct := testutil.SeedAccount(t, db, alice.ID, "100.00")

	ref := domain.NewReferenceID()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	err = ledger.Create(ctx, tx, &domain.LedgerEntry{
		ID:          uuid.New(),
		ReferenceID: ref,
		ToAccountID: &acct.ID,
		Amount:      decimal.RequireFromString("10.00"),
		Fee:         decimal.Zero,
		Currency:    domain.DefaultCurrency,
		Kind:        domain.EntryKindDeposit,
		Status:      domain.EntryStatusCompleted,
		CreatedAt:   time.Now().UTC(),
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	entry, err := svc.GetEntryByReference(ctx, ref, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, ref, entry.ReferenceID)

	_, err = svc.GetEntryByReference(ctx, ref, bob.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetEntryByReference(ctx, domain.NewReferenceID(), alice.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
