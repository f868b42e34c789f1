package commands

import (
	"fmt"

	"github.com/cleared-dev/backoffice/internal/accounts"
	"github.com/cleared-dev/backoffice/internal/api"
	"github.com/cleared-dev/backoffice/internal/balance"
	"github.com/cleared-dev/backoffice/internal/config"
	"github.com/cleared-dev/backoffice/internal/expenditure"
	"github.com/cleared-dev/backoffice/internal/journal"
	"github.com/cleared-dev/backoffice/internal/logging"
	"github.com/cleared-dev/backoffice/internal/report"
	"github.com/cleared-dev/backoffice/internal/store"
)

// app is the wired set of services a command works with.
type app struct {
	cfg   *config.Config
	store *store.Store
	svc   api.Services
}

func openApp(configPath string) (*app, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}
	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	journals := journal.NewService(st)
	return &app{
		cfg:   cfg,
		store: st,
		svc: api.Services{
			Accounts:     accounts.NewService(st),
			Journals:     journals,
			Balances:     balance.NewService(st),
			Reports:      report.NewService(st),
			Expenditures: expenditure.NewService(st, journals, cfg.Ledger.DefaultPaymentCode),
		},
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
