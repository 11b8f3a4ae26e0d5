package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementCompleted is emitted after a movement's transaction commits.
// Publishing is best-effort and never affects the committed movement.
type MovementCompleted struct {
	ReferenceID   string          `json:"reference_id"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	FromAccountID *uuid.UUID      `json:"from_account_id,omitempty"`
	ToAccountID   *uuid.UUID      `json:"to_account_id,omitempty"`
	CompletedAt   time.Time       `json:"completed_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event MovementCompleted) error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, MovementCompleted) error { return nil }
