package commands

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/backoffice/internal/errs"
	"github.com/cleared-dev/backoffice/internal/expenditure"
	"github.com/cleared-dev/backoffice/internal/statement"
)

func newExpendituresCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expenditures",
		Short: "Capture expenditures",
	}
	cmd.AddCommand(newExpendituresImportCommand(configPath))
	return cmd
}

func newExpendituresImportCommand(configPath *string) *cobra.Command {
	var (
		owner, format, expenseRef, paymentRef string
		record                                bool
	)

	cmd := &cobra.Command{
		Use:   "import <statement.csv>",
		Short: "Create an expenditure for every outflow on a bank statement",
		Long: `Create an expenditure for every outflow on a bank statement.

Each line is stored with a reference derived from the statement, so running
the same import again skips lines already imported. With --record, drafts an
earlier run left unrecorded are recorded as well.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := statement.DefaultRegistry()
			parser := registry.Get(format)
			if parser == nil {
				formats := registry.Formats()
				sort.Strings(formats)
				return fmt.Errorf("unknown statement format %q (available: %s)", format, strings.Join(formats, ", "))
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			lines, err := parser.Parse(f)
			if err != nil {
				return err
			}

			a, err := openApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			expenseID, err := resolveAccount(ctx, a, owner, expenseRef)
			if err != nil {
				return err
			}
			var paymentID string
			if paymentRef != "" {
				if paymentID, err = resolveAccount(ctx, a, owner, paymentRef); err != nil {
					return err
				}
			}

			// Drafts left by an earlier run that stopped before recording.
			pending := map[string]string{}
			if record {
				existing, err := a.svc.Expenditures.List(ctx, owner)
				if err != nil {
					return err
				}
				for _, x := range existing {
					if x.SourceRef != "" && !x.IsRecorded() {
						pending[x.SourceRef] = x.ID
					}
				}
			}

			out := cmd.OutOrStdout()
			outflows := statement.Outflows(lines)
			refs := statement.SourceRefs(outflows)
			var created, skipped int
			for i, l := range outflows {
				x, err := a.svc.Expenditures.Create(ctx, owner, expenditure.CreateParams{
					Date:             l.Date,
					Description:      l.Description,
					Amount:           l.Amount.Neg(),
					ExpenseAccountID: expenseID,
					PaymentAccountID: paymentID,
					SourceRef:        refs[i],
				})
				switch {
				case errors.Is(err, errs.ErrDuplicateExpenditure):
					skipped++
					id, ok := pending[refs[i]]
					if !ok {
						continue
					}
					x.ID = id
				case err != nil:
					return fmt.Errorf("%s on %s: %w", l.Description, l.Date, err)
				default:
					created++
				}

				if !record {
					continue
				}
				recorded, entry, err := a.svc.Expenditures.RecordToLedger(ctx, owner, x.ID)
				if err != nil {
					return fmt.Errorf("recording %s: %w", l.Description, err)
				}
				fmt.Fprintf(out, "%s %s %s\n", entry.EntryNumber, recorded.Amount.StringFixed(2), recorded.Description)
			}

			fmt.Fprintf(out, "Imported %d expenditures from %d statement lines (%d already imported)\n", created, len(lines), skipped)
			return nil
		},
	}
	ownerFlag(cmd, &owner)
	cmd.Flags().StringVar(&format, "format", "chase", "statement format")
	cmd.Flags().StringVar(&expenseRef, "expense-account", "", "expense account code or id (required)")
	cmd.Flags().StringVar(&paymentRef, "payment-account", "", "payment account code or id (default: owner setting, then the configured cash code)")
	cmd.Flags().BoolVar(&record, "record", false, "post each expenditure to the ledger")
	_ = cmd.MarkFlagRequired("expense-account")

	return cmd
}
