package testutil

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/vaish4596/banking-app/internal/domain"
)

func SeedUser(t *testing.T, db *sql.DB, email, name string) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	_, err = db.Exec(
		`INSERT INTO users (id, email, name, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u
}

func SeedAccount(t *testing.T, db *sql.DB, userID uuid.UUID, balance string) *domain.Account {
	t.Helper()
	return seedAccount(t, db, userID, balance, true)
}

func SeedInactiveAccount(t *testing.T, db *sql.DB, userID uuid.UUID, balance string) *domain.Account {
	t.Helper()
	return seedAccount(t, db, userID, balance, false)
}

func seedAccount(t *testing.T, db *sql.DB, userID uuid.UUID, balance string, active bool) *domain.Account {
	t.Helper()

	bal, err := decimal.NewFromString(balance)
	if err != nil {
		t.Fatalf("parse balance %q: %v", balance, err)
	}

	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		t.Fatalf("account number: %v", err)
	}

	now := time.Now().UTC()
	a := &domain.Account{
		ID:            uuid.New(),
		UserID:        userID,
		AccountNumber: "AC" + strings.ToUpper(hex.EncodeToString(buf)),
		Kind:          domain.AccountKindSavings,
		Balance:       bal,
		Currency:      domain.DefaultCurrency,
		IsActive:      active,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err = db.Exec(
		`INSERT INTO accounts (id, user_id, account_number, kind, balance, currency, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.UserID, a.AccountNumber, a.Kind, a.Balance, a.Currency, a.IsActive, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("seed account for %s: %v", userID, err)
	}
	return a
}

func SeedPayee(t *testing.T, db *sql.DB, userID uuid.UUID, name string) *domain.Payee {
	t.Helper()

	p := &domain.Payee{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          name,
		AccountNumber: "AC000000000000",
		BankName:      "Test Bank",
		CreatedAt:     time.Now().UTC(),
	}

	_, err := db.Exec(
		`INSERT INTO payees (id, user_id, name, account_number, bank_name, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.UserID, p.Name, p.AccountNumber, p.BankName, p.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed payee %s: %v", name, err)
	}
	return p
}

func SeedBill(t *testing.T, db *sql.DB, userID, payeeID uuid.UUID, amount string) *domain.Bill {
	t.Helper()

	amt, err := decimal.NewFromString(amount)
	if err != nil {
		t.Fatalf("parse amount %q: %v", amount, err)
	}

	b := &domain.Bill{
		ID:        uuid.New(),
		UserID:    userID,
		PayeeID:   payeeID,
		Amount:    amt,
		DueDate:   time.Now().UTC().AddDate(0, 0, 7),
		Status:    domain.BillStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	_, err = db.Exec(
		`INSERT INTO bills (id, user_id, payee_id, amount, due_date, status, created_at, paid_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		b.ID, b.UserID, b.PayeeID, b.Amount, b.DueDate, b.Status, b.CreatedAt, b.PaidAt,
	)
	if err != nil {
		t.Fatalf("seed bill: %v", err)
	}
	return b
}

func GetBalance(t *testing.T, db *sql.DB, accountID uuid.UUID) decimal.Decimal {
	t.Helper()

	var balance decimal.Decimal
	err := db.QueryRow(`SELECT balance FROM accounts WHERE id = $1`, accountID).Scan(&balance)
	if err != nil {
		t.Fatalf("get balance %s: %v", accountID, err)
	}
	return balance
}

func GetBillStatus(t *testing.T, db *sql.DB, billID uuid.UUID) string {
	t.Helper()

	var status string
	err := db.QueryRow(`SELECT status FROM bills WHERE id = $1`, billID).Scan(&status)
	if err != nil {
		t.Fatalf("get bill status %s: %v", billID, err)
	}
	return status
}

func CountEntries(t *testing.T, db *sql.DB, accountID uuid.UUID) int {
	t.Helper()

	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM ledger_entries WHERE from_account = $1 OR to_account = $1`,
		accountID,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count entries for %s: %v", accountID, err)
	}
	return count
}
