package billpay_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaish4596/banking-app/internal/domain"
	"github.com/vaish4596/banking-app/internal/gateway"
	"github.com/vaish4596/banking-app/internal/repository"
	"github.com/vaish4596/banking-app/internal/service/billpay"
	"github.com/vaish4596/banking-app/internal/testutil"
)

// stubGateway returns a scripted outcome and records every attempt.
type stubGateway struct {
	succeed  bool
	err      error
	attempts int
}

func (g *stubGateway) Attempt(_ context.Context, _ decimal.Decimal, _ string) (gateway.Result, error) {
	g.attempts++
	if g.err != nil {
		return gateway.Result{}, g.err
	}
	return gateway.Result{Succeeded: g.succeed, ProviderRef: "stub_ref_001"}, nil
}

func setupService(t *testing.T, db *sql.DB, gw gateway.Gateway) *billpay.Service {
	t.Helper()
	return billpay.NewService(
		repository.NewBillRepository(db),
		repository.NewAccountRepository(db),
		repository.NewLedgerRepository(db),
		gw,
		db,
	)
}

func TestPay_Success(t *testing.T) {
	db := testutil.SetupTestDB(t)
	gw := &stubGateway{succeed: true}
	svc := setupService(t, db, gw)
	ctx := context.Background()

	user := testutil.SeedUser(t, db, "alice@test.com", "Alice")
	acct := testutil.SeedAccount(t, db, user.ID, "1000.00")
	payee := testutil.SeedPayee(t, db, user.ID, "Electric Co")
	bill := testutil.SeedBill(t, db, user.ID, payee.ID, "300.00")

	outcome, err := svc.Pay(ctx, billpay.PayRequest{
		BillID:    bill.ID,
		AccountID: acct.ID,
		Actor:     user.ID,
	})

	require.NoError(t, err)
	assert.True(t, outcome.Paid)
	assert.Equal(t, domain.EntryKindBillPayment, outcome.Entry.Kind)
	assert.Equal(t, domain.EntryStatusCompleted, outcome.Entry.Status)
	require.NotNil(t, outcome.NewBalance)
	assert.True(t, outcome.NewBalance.Equal(decimal.RequireFromString("700.00")))

	// debit, ledger entry and bill flip all landed together
	got := testutil.GetBalance(t, db, acct.ID)
	assert.True(t, got.Equal(decimal.RequireFromString("700.00")), "balance: %s", got)
	assert.Equal(t, "paid", testutil.GetBillStatus(t, db, bill.ID))
	assert.Equal(t, 1, testutil.CountEntries(t, db, acct.ID))
	assert.Equal(t, 1, gw.attempts)
}

func TestPay_Declined(t *testing.T) {
	db := testutil.SetupTestDB(t)
	gw := &stubGateway{succeed: false}
	svc := setupService(t, db, gw)
	ctx := context.Background()

	user := testutil.SeedUser(t, db, "alice@test.com", "Alice")
	acct := testutil.SeedAccount(t, db, user.ID, "1000.00")
	payee := testutil.SeedPayee(t, db, user.ID, "Electric Co")
	bill := testutil.SeedBill(t, db, user.ID, payee.ID, "300.00")

	outcome, err := svc.Pay(ctx, billpay.PayRequest{
		BillID:    bill.ID,
		AccountID: acct.ID,
		Actor:     user.ID,
	})

	require.NoError(t, err)
	assert.False(t, outcome.Paid)
	assert.Equal(t, domain.EntryStatusFailed, outcome.Entry.Status)
	assert.Nil(t, outcome.NewBalance)

	// no money moved, bill stays payable, failed entry is on record
	got := testutil.GetBalance(t, db, acct.ID)
	assert.True(t, got.Equal(decimal.RequireFromString("1000.00")), "balance: %s", got)
	assert.Equal(t, "pending", testutil.GetBillStatus(t, db, bill.ID))
	assert.Equal(t, 1, testutil.CountEntries(t, db, acct.ID))
}

func TestPay_DeclinedThenRetried(t *testing.T) {
	db := testutil.SetupTestDB(t)
	gw := &stubGateway{succeed: false}
	svc := setupService(t, db, gw)
	ctx := context.Background()

	user := testutil.SeedUser(t, db, "alice@test.com", "Alice")
	acct := testutil.SeedAccount(t, db, user.ID, "1000.00")
	payee := testutil.SeedPayee(t, db, user.ID, "Electric Co")
	bill := testutil.SeedBill(t, db, user.ID, payee.ID, "300.00")

	req := billpay.PayRequest{BillID: bill.ID, AccountID: acct.ID, Actor: user.ID}

	first, err := svc.Pay(ctx, req)
	require.NoError(t, err)
	assert.False(t, first.Paid)

	gw.succeed = true
	second, err := svc.Pay(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.Paid)

	assert.Equal(t, "paid", testutil.GetBillStatus(t, db, bill.ID))
	got := testutil.GetBalance(t, db, acct.ID)
	assert.True(t, got.Equal(decimal.RequireFromString("700.00")))
	assert.Equal(t, 2, testutil.CountEntries(t, db, acct.ID))
	assert.Equal(t, 2, gw.attempts)
}

func TestPay_InsufficientFundsSkipsGateway(t *testing.T) {
	db := testutil.SetupTestDB(t)
	gw := &stubGateway{succeed: true}
	svc := setupService(t, db, gw)
	ctx := context.Background()

	user := testutil.SeedUser(t, db, "alice@test.com", "Alice")
	acct := testutil.SeedAccount(t, db, user.ID, "0.00")
	payee := testutil.SeedPayee(t, db, user.ID, "Electric Co")
	bill := testutil.SeedBill(t, db, user.ID, payee.ID, "300.00")

	_, err := svc.Pay(ctx, billpay.PayRequest{
		BillID:    bill.ID,
		AccountID: acct.ID,
		Actor:     user.ID,
	})

	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, 0, gw.attempts, "gateway must not be consulted")
	assert.Equal(t, "pending", testutil.GetBillStatus(t, db, bill.ID))
	assert.Equal(t, 0, testutil.CountEntries(t, db, acct.ID))
}

func TestPay_AlreadyPaidBill(t *testing.T) {
	db := testutil.SetupTestDB(t)
	gw := &stubGateway{succeed: true}
	svc := setupService(t, db, gw)
	ctx := context.Background()

	user := testutil.SeedUser(t, db, "alice@test.com", "Alice")
	acct := testutil.SeedAccount(t, db, user.ID, "1000.00")
	payee := testutil.SeedPayee(t, db, user.ID, "Electric Co")
	bill := testutil.SeedBill(t, db, user.ID, payee.ID, "300.00")

	req := billpay.PayRequest{BillID: bill.ID, AccountID: acct.ID, Actor: user.ID}

	first, err := svc.Pay(ctx, req)
	require.NoError(t, err)
	require.True(t, first.Paid)

	_, err = svc.Pay(ctx, req)
	require.ErrorIs(t, err, domain.ErrBillNotPayable)

	// the first settlement is the only one that touched the balance
	got := testutil.GetBalance(t, db, acct.ID)
	assert.True(t, got.Equal(decimal.RequireFromString("700.00")))
	assert.Equal(t, 1, gw.attempts)
}

func TestPay_OtherUsersBill(t *testing.T) {
	db := testutil.SetupTestDB(t)
	gw := &stubGateway{succeed: true}
	svc := setupService(t, db, gw)
	ctx := context.Background()

	alice := testutil.SeedUser(t, db, "alice@test.com", "Alice")
	bob := testutil.SeedUser(t, db, "bob@test.com", "Bob")
	acct := testutil.SeedAccount(t, db, bob.ID, "1000.00")
	payee := testutil.SeedPayee(t, db, alice.ID, "Electric Co")
	bill := testutil.SeedBill(t, db, alice.ID, payee.ID, "300.00")

	_, err := svc.Pay(ctx, billpay.PayRequest{
		BillID:    bill.ID,
		AccountID: acct.ID,
		Actor:     bob.ID,
	})

	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, gw.attempts)
}

func TestPay_OtherUsersAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	gw := &stubGateway{succeed: true}
	svc := setupService(t, db, gw)
	ctx := context.Background()

	alice := testutil.SeedUser(t, db, "alice@test.com", "Alice")
	bob := testutil.SeedUser(t, db, "bob@test.com", "Bob")
	acct := testutil.SeedAccount(t, db, bob.ID, "1000.00")
	payee := testutil.SeedPayee(t, db, alice.ID, "Electric Co")
	bill := testutil.SeedBill(t, db, alice.ID, payee.ID, "300.00")

	_, err := svc.Pay(ctx, billpay.PayRequest{
		BillID:    bill.ID,
		AccountID: acct.ID,
		Actor:     alice.ID,
	})

	require.ErrorIs(t, err, domain.ErrAccountNotFound)
	assert.Equal(t, 0, gw.attempts)
}

func TestPay_InactiveAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	gw := &stubGateway{succeed: true}
	svc := setupService(t, db, gw)
	ctx := context.Background()

	user := testutil.SeedUser(t, db, "alice@test.com", "Alice")
	acct := testutil.SeedInactiveAccount(t, db, user.ID, "1000.00")
	payee := testutil.SeedPayee(t, db, user.ID, "Electric Co")
	bill := testutil.SeedBill(t, db, user.ID, payee.ID, "300.00")

	_, err := svc.Pay(ctx, billpay.PayRequest{
		BillID:    bill.ID,
		AccountID: acct.ID,
		Actor:     user.ID,
	})

	require.ErrorIs(t, err, domain.ErrInactiveAccount)
	assert.Equal(t, 0, gw.attempts)
}

func TestPay_UnknownBill(t *testing.T) {
	db := testutil.SetupTestDB(t)
	gw := &stubGateway{succeed: true}
	svc := setupService(t, db, gw)

	user := testutil.SeedUser(t, db, "alice@test.com", "Alice")
	acct := testutil.SeedAccount(t, db, user.ID, "1000.00")

	_, err := svc.Pay(context.Background(), billpay.PayRequest{
		BillID:    uuid.New(),
		AccountID: acct.ID,
		Actor:     user.ID,
	})

	require.ErrorIs(t, err, domain.ErrNotFound)
}
