package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EntryKind string

const (
	EntryKindDeposit     EntryKind = "deposit"
	EntryKindWithdraw    EntryKind = "withdraw"
	EntryKindTransfer    EntryKind = "transfer"
	EntryKindBillPayment EntryKind = "bill_payment"
)

type EntryStatus string

const (
	EntryStatusPending   EntryStatus = "pending"
	EntryStatusCompleted EntryStatus = "completed"
	EntryStatusFailed    EntryStatus = "failed"
)

// LedgerEntry is the immutable record of one money movement. At least one of
// FromAccountID/ToAccountID is set: deposits carry only a destination,
// withdrawals and bill payments only a source, transfers both.
type LedgerEntry struct {
	ID            uuid.UUID
	ReferenceID   string
	FromAccountID *uuid.UUID
	ToAccountID   *uuid.UUID
	Amount        decimal.Decimal
	Fee           decimal.Decimal
	Currency      Currency
	Kind          EntryKind
	Status        EntryStatus
	Description   string
	CreatedBy     *uuid.UUID
	CreatedAt     time.Time
}
