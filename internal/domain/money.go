package domain

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValidateAmount accepts strictly positive amounts with at most two decimal
// places. Values parsed through decimal.NewFromString can never be NaN or
// infinite, so positivity and scale are the only checks left.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("ValidateAmount: %w", ErrInvalidAmount)
	}
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("ValidateAmount: %w", ErrInvalidAmount)
	}
	return nil
}

// NewReferenceID returns the externally visible id of a ledger entry:
// 32 lowercase hex characters, globally unique, never reused.
func NewReferenceID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}
