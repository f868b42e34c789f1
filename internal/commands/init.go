package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/backoffice/internal/config"
)

func newInitCommand(configPath *string) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config, create the database and seed an owner's chart of accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, *configPath, owner)
		},
	}
	ownerFlag(cmd, &owner)

	return cmd
}

func runInit(cmd *cobra.Command, configPath, owner string) error {
	out := cmd.OutOrStdout()

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := config.Save(configPath, config.Default()); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", configPath)
	} else if err != nil {
		return fmt.Errorf("checking config: %w", err)
	}

	a, err := openApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.svc.Accounts.Seed(cmd.Context(), owner)
	if err != nil {
		return fmt.Errorf("seeding chart of accounts: %w", err)
	}
	printSeeded(out, owner, a.store.Path(), n)
	return nil
}

func printSeeded(out io.Writer, owner, dbPath string, n int) {
	if n == 0 {
		fmt.Fprintf(out, "Owner %s already has a chart of accounts in %s\n", owner, dbPath)
		return
	}
	fmt.Fprintf(out, "Seeded %d accounts for owner %s in %s\n", n, owner, dbPath)
}
