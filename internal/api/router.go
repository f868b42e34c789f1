// Package api exposes the ledger over JSON HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cleared-dev/backoffice/internal/accounts"
	"github.com/cleared-dev/backoffice/internal/balance"
	"github.com/cleared-dev/backoffice/internal/errs"
	"github.com/cleared-dev/backoffice/internal/expenditure"
	"github.com/cleared-dev/backoffice/internal/journal"
	"github.com/cleared-dev/backoffice/internal/report"
)

// Services are the collaborators the handlers call.
type Services struct {
	Accounts     *accounts.Service
	Journals     *journal.Service
	Balances     *balance.Service
	Reports      *report.Service
	Expenditures *expenditure.Service
}

// NewRouter builds the HTTP handler.
func NewRouter(svc Services) http.Handler {
	accountsHandler := NewAccountsHandler(svc.Accounts)
	journalsHandler := NewJournalsHandler(svc.Journals)
	reportsHandler := NewReportsHandler(svc.Reports, svc.Balances)
	expendituresHandler := NewExpendituresHandler(svc.Expenditures)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Group(func(r chi.Router) {
		r.Use(OwnerMiddleware)

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", accountsHandler.List)
			r.Post("/", accountsHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(ValidID(errs.ErrAccountNotFound, "account"))
				r.Get("/", accountsHandler.Get)
				r.Put("/", accountsHandler.Update)
				r.Delete("/", accountsHandler.Delete)
			})
		})

		r.Route("/journal-entries", func(r chi.Router) {
			r.Get("/", journalsHandler.List)
			r.Post("/", journalsHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(ValidID(errs.ErrEntryNotFound, "journal entry"))
				r.Get("/", journalsHandler.Get)
				r.Put("/", journalsHandler.Update)
				r.Delete("/", journalsHandler.Delete)
				r.Post("/post", journalsHandler.Post)
			})
		})

		r.Get("/balances", reportsHandler.Balances)
		r.Route("/reports", func(r chi.Router) {
			r.Get("/general-ledger", reportsHandler.GeneralLedger)
			r.Get("/trial-balance", reportsHandler.TrialBalance)
			r.Get("/profit-loss", reportsHandler.ProfitAndLoss)
			r.Get("/balance-sheet", reportsHandler.BalanceSheet)
		})

		r.Route("/expenditures", func(r chi.Router) {
			r.Get("/", expendituresHandler.List)
			r.Post("/", expendituresHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(ValidID(errs.ErrExpenditureNotFound, "expenditure"))
				r.Get("/", expendituresHandler.Get)
				r.Delete("/", expendituresHandler.Delete)
				r.Post("/record-to-ledger", expendituresHandler.RecordToLedger)
			})
		})

		r.Get("/settings", accountsHandler.GetSettings)
		r.Put("/settings", accountsHandler.PutSettings)
	})

	return r
}
