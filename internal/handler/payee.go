package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vaish4596/banking-app/internal/auth"
	"github.com/vaish4596/banking-app/internal/domain"
	"github.com/vaish4596/banking-app/internal/logging"
)

type payeeStore interface {
	Create(ctx context.Context, payee *domain.Payee) error
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Payee, error)
}

type PayeeHandler struct {
	payees payeeStore
}

func NewPayeeHandler(payees payeeStore) *PayeeHandler {
	return &PayeeHandler{payees: payees}
}

type payeeDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	AccountNumber string    `json:"account_number"`
	BankName      string    `json:"bank_name"`
	CreatedAt     time.Time `json:"created_at"`
}

func toPayeeDTO(p *domain.Payee) payeeDTO {
	return payeeDTO{
		ID:            p.ID,
		Name:          p.Name,
		AccountNumber: p.AccountNumber,
		BankName:      p.BankName,
		CreatedAt:     p.CreatedAt,
	}
}

type createPayeeRequest struct {
	Name          string `json:"name"`
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
}

func (req *createPayeeRequest) validate() []FieldError {
	var errs []FieldError
	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "is required"})
	}
	if strings.TrimSpace(req.AccountNumber) == "" {
		errs = append(errs, FieldError{Field: "account_number", Message: "is required"})
	}
	if strings.TrimSpace(req.BankName) == "" {
		errs = append(errs, FieldError{Field: "bank_name", Message: "is required"})
	}
	return errs
}

func (h *PayeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req createPayeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		RespondValidationError(w, errs)
		return
	}

	payee := &domain.Payee{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          strings.TrimSpace(req.Name),
		AccountNumber: strings.TrimSpace(req.AccountNumber),
		BankName:      strings.TrimSpace(req.BankName),
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.payees.Create(r.Context(), payee); err != nil {
		logging.FromContext(r.Context()).Error("failed to create payee", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toPayeeDTO(payee))
}

func (h *PayeeHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	payees, err := h.payees.GetByUserID(r.Context(), userID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list payees", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]payeeDTO, 0, len(payees))
	for i := range payees {
		dtos = append(dtos, toPayeeDTO(&payees[i]))
	}
	RespondSuccess(w, http.StatusOK, dtos)
}
