package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/backoffice/internal/accounts"
	"github.com/cleared-dev/backoffice/internal/errs"
	"github.com/cleared-dev/backoffice/internal/model"
)

type reportFlags struct {
	owner, asOf, from, to, account string
}

func newReportCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a financial report as JSON",
	}

	cmd.AddCommand(newReportSubcommand(configPath, "trial-balance", "Trial balance as of a date",
		func(ctx context.Context, a *app, f reportFlags) (any, error) {
			asOf, err := parseDateFlag("as-of", f.asOf)
			if err != nil {
				return nil, err
			}
			return a.svc.Reports.TrialBalance(ctx, f.owner, asOf)
		}))
	cmd.AddCommand(newReportSubcommand(configPath, "balance-sheet", "Balance sheet as of a date",
		func(ctx context.Context, a *app, f reportFlags) (any, error) {
			asOf, err := parseDateFlag("as-of", f.asOf)
			if err != nil {
				return nil, err
			}
			return a.svc.Reports.BalanceSheet(ctx, f.owner, asOf)
		}))
	cmd.AddCommand(newReportSubcommand(configPath, "profit-loss", "Profit and loss for a period",
		func(ctx context.Context, a *app, f reportFlags) (any, error) {
			from, to, err := parseRangeFlags(f)
			if err != nil {
				return nil, err
			}
			return a.svc.Reports.ProfitAndLoss(ctx, f.owner, from, to)
		}))
	cmd.AddCommand(newReportSubcommand(configPath, "general-ledger", "Running balance of one account",
		func(ctx context.Context, a *app, f reportFlags) (any, error) {
			from, to, err := parseRangeFlags(f)
			if err != nil {
				return nil, err
			}
			accountID, err := resolveAccount(ctx, a, f.owner, f.account)
			if err != nil {
				return nil, err
			}
			return a.svc.Reports.GeneralLedger(ctx, f.owner, accountID, from, to)
		}))

	return cmd
}

func newReportSubcommand(configPath *string, use, short string, run func(context.Context, *app, reportFlags) (any, error)) *cobra.Command {
	var f reportFlags

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			out, err := run(cmd.Context(), a, f)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	ownerFlag(cmd, &f.owner)

	switch use {
	case "trial-balance", "balance-sheet":
		cmd.Flags().StringVar(&f.asOf, "as-of", "", "report date (YYYY-MM-DD, default today)")
	default:
		cmd.Flags().StringVar(&f.from, "from", "", "period start (YYYY-MM-DD, default inception)")
		cmd.Flags().StringVar(&f.to, "to", "", "period end (YYYY-MM-DD, default today)")
	}
	if use == "general-ledger" {
		cmd.Flags().StringVar(&f.account, "account", "", "account code or id (required)")
		_ = cmd.MarkFlagRequired("account")
	}

	return cmd
}

func parseDateFlag(name, v string) (model.Date, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return model.Date{}, nil
	}
	d, err := model.ParseDate(v)
	if err != nil {
		return model.Date{}, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}

func parseRangeFlags(f reportFlags) (model.Date, model.Date, error) {
	from, err := parseDateFlag("from", f.from)
	if err != nil {
		return model.Date{}, model.Date{}, err
	}
	to, err := parseDateFlag("to", f.to)
	if err != nil {
		return model.Date{}, model.Date{}, err
	}
	return from, to, nil
}

// resolveAccount accepts either an account code or an account id.
func resolveAccount(ctx context.Context, a *app, owner, ref string) (string, error) {
	list, err := a.svc.Accounts.List(ctx, owner)
	if err != nil {
		return "", err
	}
	code := accounts.NormalizeCode(ref)
	for _, acct := range list {
		if acct.Code == code || acct.ID == ref {
			return acct.ID, nil
		}
	}
	return "", errs.New(errs.ErrAccountNotFound, "account %s not found", ref)
}
