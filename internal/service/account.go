package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/vaish4596/banking-app/internal/domain"
	"github.com/vaish4596/banking-app/internal/logging"
)

type userRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}

type accountRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Account, error)
	Create(ctx context.Context, account *domain.Account) error
}

type ledgerReader interface {
	GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.LedgerEntry, int, error)
	GetByReferenceID(ctx context.Context, referenceID string) (*domain.LedgerEntry, error)
}

type AccountService struct {
	users    userRepo
	accounts accountRepo
	ledger   ledgerReader
}

func NewAccountService(users userRepo, accounts accountRepo, ledger ledgerReader) *AccountService {
	return &AccountService{users: users, accounts: accounts, ledger: ledger}
}

// Signup registers a user and opens their default savings account with a
// zero balance.
func (s *AccountService) Signup(ctx context.Context, email, name, password string) (*domain.User, *domain.Account, error) {
	log := logging.FromContext(ctx)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("Signup: hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("Signup: %w", err)
	}

	account, err := s.OpenAccount(ctx, user.ID, domain.AccountKindSavings, domain.DefaultCurrency)
	if err != nil {
		return nil, nil, fmt.Errorf("Signup: %w", err)
	}

	log.Info("user registered",
		"user_id", user.ID,
		"account_id", account.ID,
	)
	return user, account, nil
}

func (s *AccountService) OpenAccount(ctx context.Context, userID uuid.UUID, kind domain.AccountKind, currency domain.Currency) (*domain.Account, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("OpenAccount: %w", err)
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("OpenAccount: %w", domain.ErrInvalidRequest)
	}
	if !currency.IsValid() {
		return nil, fmt.Errorf("OpenAccount: %w", domain.ErrInvalidCurrency)
	}

	number, err := generateAccountNumber()
	if err != nil {
		return nil, fmt.Errorf("OpenAccount: %w", err)
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:            uuid.New(),
		UserID:        userID,
		AccountNumber: number,
		Kind:          kind,
		Balance:       decimal.Zero,
		Currency:      currency,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("OpenAccount: %w", err)
	}
	return account, nil
}

func (s *AccountService) GetUserAccounts(ctx context.Context, userID uuid.UUID) ([]domain.Account, error) {
	accounts, err := s.accounts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("GetUserAccounts: %w", err)
	}
	return accounts, nil
}

// GetAccountForUser resolves an account and enforces ownership; accounts
// belonging to other users read as not found.
func (s *AccountService) GetAccountForUser(ctx context.Context, accountID, userID uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("GetAccountForUser: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("GetAccountForUser: %w", err)
	}
	if account.UserID != userID {
		return nil, fmt.Errorf("GetAccountForUser: %w", domain.ErrAccountNotFound)
	}
	return account, nil
}

// ResolveAccountNumber finds the account behind a transfer destination
// number. Any account in the bank is a valid destination, so no ownership
// check applies.
func (s *AccountService) ResolveAccountNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	account, err := s.accounts.GetByNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("ResolveAccountNumber: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("ResolveAccountNumber: %w", err)
	}
	return account, nil
}

// GetEntryByReference looks up a ledger entry by its reference id. The entry
// is only visible to the caller if one of its sides is their account.
func (s *AccountService) GetEntryByReference(ctx context.Context, referenceID string, userID uuid.UUID) (*domain.LedgerEntry, error) {
	entry, err := s.ledger.GetByReferenceID(ctx, referenceID)
	if err != nil {
		return nil, fmt.Errorf("GetEntryByReference: %w", err)
	}

	for _, side := range []*uuid.UUID{entry.FromAccountID, entry.ToAccountID} {
		if side == nil {
			continue
		}
		account, err := s.accounts.GetByID(ctx, *side)
		if err != nil {
			return nil, fmt.Errorf("GetEntryByReference: %w", err)
		}
		if account.UserID == userID {
			return entry, nil
		}
	}
	return nil, fmt.Errorf("GetEntryByReference: %w", domain.ErrNotFound)
}

func (s *AccountService) GetLedger(ctx context.Context, accountID, userID uuid.UUID, limit, offset int) ([]domain.LedgerEntry, int, error) {
	if _, err := s.GetAccountForUser(ctx, accountID, userID); err != nil {
		return nil, 0, fmt.Errorf("GetLedger: %w", err)
	}

	entries, total, err := s.ledger.GetByAccountID(ctx, accountID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("GetLedger: %w", err)
	}
	return entries, total, nil
}

// Account numbers look like AC3F7A1B9C24: "AC" plus 12 hex characters.
func generateAccountNumber() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generateAccountNumber: %w", err)
	}
	return "AC" + strings.ToUpper(hex.EncodeToString(buf)), nil
}
