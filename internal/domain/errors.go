package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInactiveAccount    = errors.New("account is inactive")
	ErrInvalidAmount      = errors.New("amount must be a positive value with at most two decimal places")
	ErrSameAccount        = errors.New("cannot transfer to the same account")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrDuplicateReference = errors.New("ledger reference already exists")
	ErrBillNotPayable     = errors.New("bill is not payable")
	ErrInvalidCurrency    = errors.New("invalid currency")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidRequest     = errors.New("invalid request")
)
