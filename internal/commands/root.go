package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/backoffice/internal/buildinfo"
	"github.com/cleared-dev/backoffice/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "cleared",
		Short:   "Double-entry ledger service for small business back offices",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.FileName, "path to cleared.yaml")

	rootCmd.AddCommand(newServeCommand(&configPath))
	rootCmd.AddCommand(newInitCommand(&configPath))
	rootCmd.AddCommand(newAccountsCommand(&configPath))
	rootCmd.AddCommand(newJournalCommand(&configPath))
	rootCmd.AddCommand(newExpendituresCommand(&configPath))
	rootCmd.AddCommand(newReportCommand(&configPath))

	return rootCmd
}

// ownerFlag registers the required --owner flag.
func ownerFlag(cmd *cobra.Command, owner *string) {
	cmd.Flags().StringVar(owner, "owner", "", "owner id (required)")
	_ = cmd.MarkFlagRequired("owner")
}
