package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vaish4596/banking-app/internal/auth"
	"github.com/vaish4596/banking-app/internal/domain"
	"github.com/vaish4596/banking-app/internal/logging"
	"github.com/vaish4596/banking-app/internal/service/movement"
)

type movementService interface {
	Deposit(ctx context.Context, req movement.DepositRequest) (*movement.Result, error)
	Withdraw(ctx context.Context, req movement.WithdrawRequest) (*movement.Result, error)
	Transfer(ctx context.Context, req movement.TransferRequest) (*movement.Result, error)
}

type accountResolver interface {
	GetAccountForUser(ctx context.Context, accountID, userID uuid.UUID) (*domain.Account, error)
	ResolveAccountNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
}

type MovementHandler struct {
	movements movementService
	accounts  accountResolver
}

func NewMovementHandler(movements movementService, accounts accountResolver) *MovementHandler {
	return &MovementHandler{movements: movements, accounts: accounts}
}

type amountRequest struct {
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

// parseAmount rejects anything decimal cannot parse (including NaN and
// infinities) before the engine sees it.
func parseAmount(raw string) (decimal.Decimal, *FieldError) {
	if raw == "" {
		return decimal.Zero, &FieldError{Field: "amount", Message: "required"}
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &FieldError{Field: "amount", Message: "must be a decimal number"}
	}
	return amount, nil
}

type movementResponse struct {
	Entry         entryDTO `json:"entry"`
	SourceBalance *string  `json:"source_balance,omitempty"`
	DestBalance   *string  `json:"dest_balance,omitempty"`
}

func toMovementResponse(res *movement.Result) movementResponse {
	out := movementResponse{Entry: toEntryDTO(res.Entry)}
	if res.SourceBalance != nil {
		s := res.SourceBalance.StringFixed(2)
		out.SourceBalance = &s
	}
	if res.DestBalance != nil {
		s := res.DestBalance.StringFixed(2)
		out.DestBalance = &s
	}
	return out
}

func (h *MovementHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID, accountID, req, ok := h.singleAccountRequest(w, r)
	if !ok {
		return
	}

	amount, fieldErr := parseAmount(req.Amount)
	if fieldErr != nil {
		RespondValidationError(w, []FieldError{*fieldErr})
		return
	}

	res, err := h.movements.Deposit(r.Context(), movement.DepositRequest{
		AccountID:   accountID,
		Amount:      amount,
		Actor:       &userID,
		Description: req.Description,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("deposit failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toMovementResponse(res))
}

func (h *MovementHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, accountID, req, ok := h.singleAccountRequest(w, r)
	if !ok {
		return
	}

	amount, fieldErr := parseAmount(req.Amount)
	if fieldErr != nil {
		RespondValidationError(w, []FieldError{*fieldErr})
		return
	}

	res, err := h.movements.Withdraw(r.Context(), movement.WithdrawRequest{
		AccountID:   accountID,
		Amount:      amount,
		Actor:       &userID,
		Description: req.Description,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("withdrawal failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toMovementResponse(res))
}

// singleAccountRequest authenticates the caller, parses the body, and
// verifies the target account belongs to them.
func (h *MovementHandler) singleAccountRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, amountRequest, bool) {
	var zero amountRequest

	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return uuid.Nil, uuid.Nil, zero, false
	}

	accountID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrAccountNotFound, nil)
		return uuid.Nil, uuid.Nil, zero, false
	}

	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return uuid.Nil, uuid.Nil, zero, false
	}

	if _, err := h.accounts.GetAccountForUser(r.Context(), accountID, userID); err != nil {
		logging.FromContext(r.Context()).Warn("account ownership check failed", "error", err)
		RespondDomainError(w, err)
		return uuid.Nil, uuid.Nil, zero, false
	}

	return userID, accountID, req, true
}

// The destination is given either by id or by account number; exactly one
// is required.
type transferRequest struct {
	SourceAccountID   string `json:"source_account_id"`
	DestAccountID     string `json:"dest_account_id"`
	DestAccountNumber string `json:"dest_account_number"`
	Amount            string `json:"amount"`
	Description       string `json:"description"`
}

func (h *MovementHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	var fields []FieldError
	sourceID, err := uuid.Parse(req.SourceAccountID)
	if err != nil {
		fields = append(fields, FieldError{Field: "source_account_id", Message: "must be a valid account id"})
	}
	amount, fieldErr := parseAmount(req.Amount)
	if fieldErr != nil {
		fields = append(fields, *fieldErr)
	}

	var destID uuid.UUID
	switch {
	case req.DestAccountID != "" && req.DestAccountNumber != "":
		fields = append(fields, FieldError{Field: "dest_account_id", Message: "provide either dest_account_id or dest_account_number, not both"})
	case req.DestAccountID != "":
		destID, err = uuid.Parse(req.DestAccountID)
		if err != nil {
			fields = append(fields, FieldError{Field: "dest_account_id", Message: "must be a valid account id"})
		}
	case req.DestAccountNumber != "":
		dest, err := h.accounts.ResolveAccountNumber(r.Context(), req.DestAccountNumber)
		if err != nil {
			RespondDomainError(w, err)
			return
		}
		destID = dest.ID
	default:
		fields = append(fields, FieldError{Field: "dest_account_id", Message: "destination account required"})
	}

	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	// Only the source account has to belong to the caller; the destination
	// may be any account in the bank.
	if _, err := h.accounts.GetAccountForUser(r.Context(), sourceID, userID); err != nil {
		logging.FromContext(r.Context()).Warn("source ownership check failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	res, err := h.movements.Transfer(r.Context(), movement.TransferRequest{
		SourceAccountID: sourceID,
		DestAccountID:   destID,
		Amount:          amount,
		Actor:           &userID,
		Description:     req.Description,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("transfer failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toMovementResponse(res))
}
