package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/vaish4596/banking-app/internal/auth"
	"github.com/vaish4596/banking-app/internal/domain"
	"github.com/vaish4596/banking-app/internal/logging"
)

type accountService interface {
	GetUserAccounts(ctx context.Context, userID uuid.UUID) ([]domain.Account, error)
	GetAccountForUser(ctx context.Context, accountID, userID uuid.UUID) (*domain.Account, error)
	GetLedger(ctx context.Context, accountID, userID uuid.UUID, limit, offset int) ([]domain.LedgerEntry, int, error)
	GetEntryByReference(ctx context.Context, referenceID string, userID uuid.UUID) (*domain.LedgerEntry, error)
}

type AccountHandler struct {
	accounts accountService
}

func NewAccountHandler(accounts accountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type accountDTO struct {
	ID            uuid.UUID `json:"id"`
	AccountNumber string    `json:"account_number"`
	Kind          string    `json:"kind"`
	Balance       string    `json:"balance"`
	Currency      string    `json:"currency"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

func toAccountDTO(a *domain.Account) accountDTO {
	return accountDTO{
		ID:            a.ID,
		AccountNumber: a.AccountNumber,
		Kind:          string(a.Kind),
		Balance:       a.Balance.StringFixed(2),
		Currency:      string(a.Currency),
		IsActive:      a.IsActive,
		CreatedAt:     a.CreatedAt,
	}
}

type entryDTO struct {
	ReferenceID   string     `json:"reference_id"`
	FromAccountID *uuid.UUID `json:"from_account_id,omitempty"`
	ToAccountID   *uuid.UUID `json:"to_account_id,omitempty"`
	Amount        string     `json:"amount"`
	Fee           string     `json:"fee"`
	Currency      string     `json:"currency"`
	Kind          string     `json:"kind"`
	Status        string     `json:"status"`
	Description   string     `json:"description,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toEntryDTO(e *domain.LedgerEntry) entryDTO {
	return entryDTO{
		ReferenceID:   e.ReferenceID,
		FromAccountID: e.FromAccountID,
		ToAccountID:   e.ToAccountID,
		Amount:        e.Amount.StringFixed(2),
		Fee:           e.Fee.StringFixed(2),
		Currency:      string(e.Currency),
		Kind:          string(e.Kind),
		Status:        string(e.Status),
		Description:   e.Description,
		CreatedAt:     e.CreatedAt,
	}
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	accounts, err := h.accounts.GetUserAccounts(r.Context(), userID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list accounts", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]accountDTO, 0, len(accounts))
	for i := range accounts {
		dtos = append(dtos, toAccountDTO(&accounts[i]))
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	accountID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrAccountNotFound, nil)
		return
	}

	account, err := h.accounts.GetAccountForUser(r.Context(), accountID, userID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("account lookup failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toAccountDTO(account))
}

func (h *AccountHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	accountID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrAccountNotFound, nil)
		return
	}

	limit, offset := paginationParams(r)

	entries, total, err := h.accounts.GetLedger(r.Context(), accountID, userID, limit, offset)
	if err != nil {
		logging.FromContext(r.Context()).Warn("ledger lookup failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]entryDTO, 0, len(entries))
	for i := range entries {
		dtos = append(dtos, toEntryDTO(&entries[i]))
	}

	RespondSuccess(w, http.StatusOK, map[string]any{
		"entries": dtos,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// Entry resolves a single ledger entry by reference id, visible only to a
// holder of one of its accounts.
func (h *AccountHandler) Entry(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	entry, err := h.accounts.GetEntryByReference(r.Context(), r.PathValue("reference"), userID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("entry lookup failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toEntryDTO(entry))
}

func paginationParams(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
