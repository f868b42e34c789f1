package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/backoffice/internal/accounts"
	"github.com/cleared-dev/backoffice/internal/model"
)

// AccountsHandler handles chart-of-accounts endpoints and owner settings.
type AccountsHandler struct {
	svc *accounts.Service
}

// NewAccountsHandler creates a new AccountsHandler.
func NewAccountsHandler(svc *accounts.Service) *AccountsHandler {
	return &AccountsHandler{svc: svc}
}

// CreateAccountRequest is the body of POST /accounts.
type CreateAccountRequest struct {
	Code           string            `json:"code"`
	Name           string            `json:"name"`
	Type           model.AccountType `json:"type"`
	OpeningBalance decimal.Decimal   `json:"openingBalance"`
	Description    string            `json:"description"`
}

// UpdateAccountRequest is the body of PUT /accounts/{id}. Absent fields are
// left unchanged.
type UpdateAccountRequest struct {
	Code           *string            `json:"code"`
	Name           *string            `json:"name"`
	Type           *model.AccountType `json:"type"`
	OpeningBalance *decimal.Decimal   `json:"openingBalance"`
	Description    *string            `json:"description"`
}

// SettingsRequest is the body of PUT /settings.
type SettingsRequest struct {
	DefaultPaymentAccountID string `json:"defaultPaymentAccountId"`
}

// List handles GET /accounts.
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context(), OwnerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /accounts/{id}.
func (h *AccountsHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Get(r.Context(), OwnerFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Create handles POST /accounts.
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	a, err := h.svc.Create(r.Context(), OwnerFrom(r.Context()), accounts.CreateParams{
		Code:           req.Code,
		Name:           req.Name,
		Type:           req.Type,
		OpeningBalance: req.OpeningBalance,
		Description:    req.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// Update handles PUT /accounts/{id}.
func (h *AccountsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	a, err := h.svc.Update(r.Context(), OwnerFrom(r.Context()), chi.URLParam(r, "id"), accounts.UpdateParams{
		Code:           req.Code,
		Name:           req.Name,
		Type:           req.Type,
		OpeningBalance: req.OpeningBalance,
		Description:    req.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Delete handles DELETE /accounts/{id}.
func (h *AccountsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), OwnerFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSettings handles GET /settings.
func (h *AccountsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.DefaultPaymentAccount(r.Context(), OwnerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// PutSettings handles PUT /settings.
func (h *AccountsHandler) PutSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	settings, err := h.svc.SetDefaultPaymentAccount(r.Context(), OwnerFrom(r.Context()), req.DefaultPaymentAccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
