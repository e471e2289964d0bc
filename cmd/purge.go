package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Run account purge and session cleanup once",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		ctx := cmd.Context()
		n, err := a.jobs.PurgeDeletedAccounts(ctx)
		if err != nil {
			return err
		}
		removed, err := a.jobs.CleanupSessions(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "purged %d account(s), removed %d session(s)\n", n, removed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(purgeCmd)
}
