package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cleared-dev/backoffice/internal/journal"
	"github.com/cleared-dev/backoffice/internal/model"
)

// JournalsHandler handles journal entry endpoints.
type JournalsHandler struct {
	svc *journal.Service
}

// NewJournalsHandler creates a new JournalsHandler.
func NewJournalsHandler(svc *journal.Service) *JournalsHandler {
	return &JournalsHandler{svc: svc}
}

// List handles GET /journal-entries?status=&from=&to=&number=.
func (h *JournalsHandler) List(w http.ResponseWriter, r *http.Request) {
	from, err := queryDate(r, "from")
	if err != nil {
		writeError(w, r, err)
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		writeError(w, r, err)
		return
	}

	entries, err := h.svc.List(r.Context(), OwnerFrom(r.Context()), journal.ListFilter{
		Status: model.EntryStatus(r.URL.Query().Get("status")),
		From:   from,
		To:     to,
		Number: r.URL.Query().Get("number"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Get handles GET /journal-entries/{id}.
func (h *JournalsHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.Get(r.Context(), OwnerFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// Create handles POST /journal-entries. New entries are drafts.
func (h *JournalsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req journal.EntryParams
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := h.svc.Create(r.Context(), OwnerFrom(r.Context()), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// Update handles PUT /journal-entries/{id}.
func (h *JournalsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req journal.UpdateParams
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	e, err := h.svc.Update(r.Context(), OwnerFrom(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// Delete handles DELETE /journal-entries/{id}.
func (h *JournalsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), OwnerFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Post handles POST /journal-entries/{id}/post.
func (h *JournalsHandler) Post(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.Post(r.Context(), OwnerFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}
