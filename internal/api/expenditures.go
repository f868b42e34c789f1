package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cleared-dev/backoffice/internal/expenditure"
	"github.com/cleared-dev/backoffice/internal/model"
)

// ExpendituresHandler handles expenditure endpoints.
type ExpendituresHandler struct {
	svc *expenditure.Service
}

// NewExpendituresHandler creates a new ExpendituresHandler.
func NewExpendituresHandler(svc *expenditure.Service) *ExpendituresHandler {
	return &ExpendituresHandler{svc: svc}
}

// RecordResponse is the reply to a successful record-to-ledger call.
type RecordResponse struct {
	Expenditure  model.Expenditure  `json:"expenditure"`
	JournalEntry model.JournalEntry `json:"journalEntry"`
}

// List handles GET /expenditures.
func (h *ExpendituresHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context(), OwnerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /expenditures/{id}.
func (h *ExpendituresHandler) Get(w http.ResponseWriter, r *http.Request) {
	x, err := h.svc.Get(r.Context(), OwnerFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, x)
}

// Create handles POST /expenditures.
func (h *ExpendituresHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req expenditure.CreateParams
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	x, err := h.svc.Create(r.Context(), OwnerFrom(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, x)
}

// Delete handles DELETE /expenditures/{id}.
func (h *ExpendituresHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), OwnerFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordToLedger handles POST /expenditures/{id}/record-to-ledger.
func (h *ExpendituresHandler) RecordToLedger(w http.ResponseWriter, r *http.Request) {
	x, entry, err := h.svc.RecordToLedger(r.Context(), OwnerFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RecordResponse{Expenditure: x, JournalEntry: entry})
}
