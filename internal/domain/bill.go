package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BillStatus string

const (
	BillStatusPending BillStatus = "pending"
	BillStatusPaid    BillStatus = "paid"
	// BillStatusOverdue is never set automatically; operators flag bills
	// overdue out of band.
	BillStatusOverdue BillStatus = "overdue"
)

type Bill struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	PayeeID   uuid.UUID
	Amount    decimal.Decimal
	DueDate   time.Time
	Status    BillStatus
	CreatedAt time.Time
	PaidAt    *time.Time
}

type Payee struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Name          string
	AccountNumber string
	BankName      string
	CreatedAt     time.Time
}
