package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/ledger"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/util"
)

var (
	settleMerchant string
	settleDryRun   bool
)

var settleCmd = &cobra.Command{
	Use:   "settle",
	Short: "Settle all delivered parcels of one merchant",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		u, err := a.merchant(settleMerchant)
		if err != nil {
			return err
		}
		m := ledger.Merchant{MerchantID: u.MerchantID, Name: u.Name, Phone: u.Phone, Address: u.Address}
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		inv, err := a.ledgers.Preview(ctx, m)
		if err != nil {
			return err
		}
		for _, l := range inv.Lines {
			fmt.Fprintf(out, "%-12s %-24s amount %10s  delivery %8s  cod %8s  net %10s\n",
				l.ParcelID, l.CustomerName,
				util.FormatMoney(l.Amount), util.FormatMoney(l.Delivery),
				util.FormatMoney(l.COD), util.FormatMoney(l.Net))
		}
		fmt.Fprintf(out, "%d parcel(s), total net %s\n", len(inv.Lines), util.FormatMoney(inv.TotalNet))
		if settleDryRun {
			return nil
		}

		res, err := a.ledgers.Settle(ctx, m)
		if errors.Is(err, ledger.ErrNothingToSettle) {
			fmt.Fprintln(out, "nothing to settle")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "settled %d parcel(s), withdrawal %s (%s)\n",
			len(res.Settled), res.Transaction.ID, util.FormatMoney(res.Transaction.Amount))
		return nil
	},
}

func init() {
	settleCmd.Flags().StringVarP(&settleMerchant, "merchant", "m", "", "merchant id, e.g. MID-12345")
	settleCmd.Flags().BoolVar(&settleDryRun, "dry-run", false, "print the invoice without settling")
	_ = settleCmd.MarkFlagRequired("merchant")
	rootCmd.AddCommand(settleCmd)
}
