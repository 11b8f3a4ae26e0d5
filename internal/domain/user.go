package domain

import (
	"time"

	"github.com/google/uuid"
)

// User owns accounts, payees and bills. PasswordHash is a bcrypt hash and
// must never appear in API responses or logs.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}
