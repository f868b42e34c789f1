package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/backoffice/internal/journal"
	"github.com/cleared-dev/backoffice/internal/model"
)

func newJournalCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Work with journal entries",
	}
	cmd.AddCommand(newJournalExportCommand(configPath))
	return cmd
}

func newJournalExportCommand(configPath *string) *cobra.Command {
	var (
		owner, status, from, to string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write journal entries as CSV to stdout, one row per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := journal.ListFilter{Status: model.EntryStatus(status)}
			var err error
			if f.From, err = parseDateFlag("from", from); err != nil {
				return err
			}
			if f.To, err = parseDateFlag("to", to); err != nil {
				return err
			}

			a, err := openApp(*configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.svc.Journals.List(cmd.Context(), owner, f)
			if err != nil {
				return err
			}
			return journal.WriteEntries(cmd.OutOrStdout(), entries)
		},
	}
	ownerFlag(cmd, &owner)
	cmd.Flags().StringVar(&status, "status", "", "draft or posted")
	cmd.Flags().StringVar(&from, "from", "", "first entry date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last entry date (YYYY-MM-DD)")

	return cmd
}
