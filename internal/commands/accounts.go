package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/backoffice/internal/accounts"
	"github.com/cleared-dev/backoffice/internal/errs"
)

func newAccountsCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Export or import an owner's chart of accounts",
	}
	cmd.AddCommand(newAccountsExportCommand(configPath))
	cmd.AddCommand(newAccountsImportCommand(configPath))
	return cmd
}

func newAccountsExportCommand(configPath *string) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the chart of accounts as CSV to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.svc.Accounts.List(cmd.Context(), owner)
			if err != nil {
				return err
			}
			return accounts.WriteAccounts(cmd.OutOrStdout(), list)
		},
	}
	ownerFlag(cmd, &owner)

	return cmd
}

func newAccountsImportCommand(configPath *string) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Create accounts from a CSV file, skipping codes that already exist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			rows, err := accounts.ReadAccounts(f)
			if err != nil {
				return err
			}

			a, err := openApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			var created, skipped int
			for _, acct := range rows {
				_, err := a.svc.Accounts.Create(cmd.Context(), owner, accounts.CreateParams{
					Code:           acct.Code,
					Name:           acct.Name,
					Type:           acct.Type,
					OpeningBalance: acct.OpeningBalance,
					Description:    acct.Description,
				})
				if errors.Is(err, errs.ErrDuplicateCode) {
					skipped++
					continue
				}
				if err != nil {
					return fmt.Errorf("account %s: %w", acct.Code, err)
				}
				created++
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d accounts (%d skipped)\n", created, skipped)
			return nil
		},
	}
	ownerFlag(cmd, &owner)

	return cmd
}
