package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd 代表基础命令
var rootCmd = &cobra.Command{
	Use:   "merchant-ledger",
	Short: "Courier merchant parcel ledger",
	Long: `Backend for courier merchants: parcels with tracking, the running
balance and its transaction log, settlement of delivered parcels.`,
	SilenceUsage: true,
}

// Execute 将所有子命令添加到根命令并执行
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default ./config.yaml)")
}
