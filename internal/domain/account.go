package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Currency string

const (
	CurrencyINR Currency = "INR"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// DefaultCurrency is applied to accounts opened without an explicit currency.
const DefaultCurrency = CurrencyINR

func (c Currency) IsValid() bool {
	switch c {
	case CurrencyINR, CurrencyUSD, CurrencyEUR:
		return true
	}
	return false
}

type AccountKind string

const (
	AccountKindSavings AccountKind = "savings"
	AccountKindCurrent AccountKind = "current"
)

func (k AccountKind) IsValid() bool {
	return k == AccountKindSavings || k == AccountKindCurrent
}

// Account balances are DECIMAL(18,2) and never go negative. Only the
// movement engine writes Balance, always under the account's row lock.
type Account struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	AccountNumber string
	Kind          AccountKind
	Balance       decimal.Decimal
	Currency      Currency
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
