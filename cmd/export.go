package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/agrimitra/mandi-cli/internal/export"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored price records to an .xlsx file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		filter, err := historyFilterFromFlags(cmd)
		if err != nil {
			return err
		}

		records, err := st.History(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "export query")
		}

		if err := export.WriteXLSX(exportOut, records); err != nil {
			return err
		}

		fmt.Printf("Wrote %d records to %s\n", len(records), exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "prices.xlsx", "output file path")
	exportCmd.Flags().String("state", "", "filter by state")
	exportCmd.Flags().String("district", "", "filter by district")
	exportCmd.Flags().String("commodity", "", "filter by commodity")
	exportCmd.Flags().String("market", "", "filter by market")
	exportCmd.Flags().Duration("since", 0, "only records fetched within this window (e.g. 72h)")
	exportCmd.Flags().Int("limit", 10000, "max number of records to export")
	rootCmd.AddCommand(exportCmd)
}
