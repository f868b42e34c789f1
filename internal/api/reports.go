package api

import (
	"net/http"
	"strings"

	"github.com/cleared-dev/backoffice/internal/balance"
	"github.com/cleared-dev/backoffice/internal/errs"
	"github.com/cleared-dev/backoffice/internal/model"
	"github.com/cleared-dev/backoffice/internal/report"
)

// ReportsHandler handles balance and report endpoints.
type ReportsHandler struct {
	reports  *report.Service
	balances *balance.Service
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(reports *report.Service, balances *balance.Service) *ReportsHandler {
	return &ReportsHandler{reports: reports, balances: balances}
}

// Balances handles GET /balances?asOf=.
func (h *ReportsHandler) Balances(w http.ResponseWriter, r *http.Request) {
	asOf, err := queryDate(r, "asOf")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if asOf.IsZero() {
		asOf = model.Today()
	}
	out, err := h.balances.ComputeBalances(r.Context(), OwnerFrom(r.Context()), asOf)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// GeneralLedger handles GET /reports/general-ledger?accountId=&from=&to=.
func (h *ReportsHandler) GeneralLedger(w http.ResponseWriter, r *http.Request) {
	accountID := strings.TrimSpace(r.URL.Query().Get("accountId"))
	if accountID == "" {
		writeError(w, r, errs.New(errs.ErrInvalidField, "accountId is required"))
		return
	}
	from, to, ok := h.dateRange(w, r)
	if !ok {
		return
	}
	gl, err := h.reports.GeneralLedger(r.Context(), OwnerFrom(r.Context()), accountID, from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gl)
}

// TrialBalance handles GET /reports/trial-balance?asOf=.
func (h *ReportsHandler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	asOf, err := queryDate(r, "asOf")
	if err != nil {
		writeError(w, r, err)
		return
	}
	tb, err := h.reports.TrialBalance(r.Context(), OwnerFrom(r.Context()), asOf)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tb)
}

// ProfitAndLoss handles GET /reports/profit-loss?from=&to=.
func (h *ReportsHandler) ProfitAndLoss(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.dateRange(w, r)
	if !ok {
		return
	}
	pl, err := h.reports.ProfitAndLoss(r.Context(), OwnerFrom(r.Context()), from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pl)
}

// BalanceSheet handles GET /reports/balance-sheet?asOf=.
func (h *ReportsHandler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	asOf, err := queryDate(r, "asOf")
	if err != nil {
		writeError(w, r, err)
		return
	}
	bs, err := h.reports.BalanceSheet(r.Context(), OwnerFrom(r.Context()), asOf)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bs)
}

func (h *ReportsHandler) dateRange(w http.ResponseWriter, r *http.Request) (model.Date, model.Date, bool) {
	from, err := queryDate(r, "from")
	if err != nil {
		writeError(w, r, err)
		return model.Date{}, model.Date{}, false
	}
	to, err := queryDate(r, "to")
	if err != nil {
		writeError(w, r, err)
		return model.Date{}, model.Date{}, false
	}
	return from, to, true
}
