package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		// bootstrap 已经执行 AutoMigrate
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()
		logger.Info("schema up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
