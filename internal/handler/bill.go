package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vaish4596/banking-app/internal/auth"
	"github.com/vaish4596/banking-app/internal/domain"
	"github.com/vaish4596/banking-app/internal/logging"
	"github.com/vaish4596/banking-app/internal/service/billpay"
)

type billStore interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Bill, error)
	Create(ctx context.Context, bill *domain.Bill) error
}

type payeeReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payee, error)
}

type billPayer interface {
	Pay(ctx context.Context, req billpay.PayRequest) (*billpay.Outcome, error)
}

type BillHandler struct {
	bills    billStore
	payees   payeeReader
	payments billPayer
}

func NewBillHandler(bills billStore, payees payeeReader, payments billPayer) *BillHandler {
	return &BillHandler{bills: bills, payees: payees, payments: payments}
}

type billDTO struct {
	ID      uuid.UUID  `json:"id"`
	PayeeID uuid.UUID  `json:"payee_id"`
	Amount  string     `json:"amount"`
	DueDate time.Time  `json:"due_date"`
	Status  string     `json:"status"`
	PaidAt  *time.Time `json:"paid_at,omitempty"`
}

func toBillDTO(b *domain.Bill) billDTO {
	return billDTO{
		ID:      b.ID,
		PayeeID: b.PayeeID,
		Amount:  b.Amount.StringFixed(2),
		DueDate: b.DueDate,
		Status:  string(b.Status),
		PaidAt:  b.PaidAt,
	}
}

func (h *BillHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	bills, err := h.bills.GetByUserID(r.Context(), userID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list bills", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]billDTO, 0, len(bills))
	for i := range bills {
		dtos = append(dtos, toBillDTO(&bills[i]))
	}
	RespondSuccess(w, http.StatusOK, dtos)
}

type createBillRequest struct {
	PayeeID string `json:"payee_id"`
	Amount  string `json:"amount"`
	DueDate string `json:"due_date"`
}

func (h *BillHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req createBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	payeeID, err := uuid.Parse(req.PayeeID)
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "payee_id", Message: "must be a valid payee id"}})
		return
	}
	amount, ferr := parseAmount(req.Amount)
	if ferr != nil {
		RespondValidationError(w, []FieldError{*ferr})
		return
	}
	if err := domain.ValidateAmount(amount); err != nil {
		RespondAppError(w, ErrInvalidAmount, nil)
		return
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "due_date", Message: "must be a date in YYYY-MM-DD format"}})
		return
	}

	payee, err := h.payees.GetByID(r.Context(), payeeID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}
	if payee.UserID != userID {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	bill := &domain.Bill{
		ID:        uuid.New(),
		UserID:    userID,
		PayeeID:   payee.ID,
		Amount:    amount,
		DueDate:   dueDate,
		Status:    domain.BillStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.bills.Create(r.Context(), bill); err != nil {
		logging.FromContext(r.Context()).Error("failed to create bill", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toBillDTO(bill))
}

type payBillRequest struct {
	AccountID string `json:"account_id"`
}

type payBillResponse struct {
	Paid       bool     `json:"paid"`
	Entry      entryDTO `json:"entry"`
	NewBalance *string  `json:"new_balance,omitempty"`
	Message    string   `json:"message"`
}

func (h *BillHandler) Pay(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	billID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	var req payBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		RespondValidationError(w, []FieldError{{Field: "account_id", Message: "must be a valid account id"}})
		return
	}

	outcome, err := h.payments.Pay(r.Context(), billpay.PayRequest{
		BillID:    billID,
		AccountID: accountID,
		Actor:     userID,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("bill payment failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	resp := payBillResponse{
		Paid:  outcome.Paid,
		Entry: toEntryDTO(outcome.Entry),
	}
	if outcome.NewBalance != nil {
		s := outcome.NewBalance.StringFixed(2)
		resp.NewBalance = &s
	}
	if outcome.Paid {
		resp.Message = "bill paid successfully"
		RespondSuccess(w, http.StatusOK, resp)
		return
	}
	resp.Message = "payment was declined by the gateway; the bill remains payable"
	RespondSuccess(w, http.StatusOK, resp)
}
