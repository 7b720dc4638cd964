package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/agrimitra/mandi-cli/internal/model"
	"github.com/agrimitra/mandi-cli/internal/prices"
)

var (
	pricesState       string
	pricesDistrict    string
	pricesCommodities []string
	pricesDate        string
	pricesJSON        bool
)

// rupees prints prices with Indian digit grouping (2,45,000).
var rupees = message.NewPrinter(language.MustParse("en-IN"))

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Fetch current mandi prices",
	Long:  "Fetches prices through the acquisition chain. Always prints data; when every live source is down the rows are marked with placeholder provenance.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		svc := initService(st)
		result := svc.GetPrices(ctx, prices.Query{
			State:       pricesState,
			District:    pricesDistrict,
			Commodities: pricesCommodities,
			Date:        pricesDate,
		})

		if pricesJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		if len(result.Records) == 0 {
			fmt.Fprintln(os.Stderr, "No prices found.")
			return nil
		}

		fmt.Printf("Source: %s (%d records)\n\n", result.Source, len(result.Records))
		formatPriceTable(os.Stdout, result.Records)
		return nil
	},
}

func init() {
	pricesCmd.Flags().StringVar(&pricesState, "state", "", "state name (e.g. Maharashtra)")
	pricesCmd.Flags().StringVar(&pricesDistrict, "district", "", "district name")
	pricesCmd.Flags().StringArrayVar(&pricesCommodities, "commodity", nil, "commodity name, repeatable")
	pricesCmd.Flags().StringVar(&pricesDate, "date", "", "price date (YYYY-MM-DD, default today)")
	pricesCmd.Flags().BoolVar(&pricesJSON, "json", false, "print raw JSON instead of a table")
	rootCmd.AddCommand(pricesCmd)
}

// formatPriceTable writes a tabular price listing to w.
func formatPriceTable(out io.Writer, records []model.NormalizedPriceRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "COMMODITY\tMARKET\tSTATE\tPRICE\tMIN\tMAX\tUNIT\tTREND\tCHANGE\tSOURCE")
	_, _ = fmt.Fprintln(w, "---------\t------\t-----\t-----\t---\t---\t----\t-----\t------\t------")

	for _, r := range records {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%+.0f\t%s\n",
			r.Commodity,
			r.Market,
			r.State,
			formatRupees(r.Price),
			formatRupees(r.MinPrice),
			formatRupees(r.MaxPrice),
			r.Unit,
			r.Trend,
			r.Change,
			r.Provenance,
		)
	}
	_ = w.Flush()
}

// formatRupees renders a price with the rupee sign and Indian grouping.
func formatRupees(v float64) string {
	return rupees.Sprintf("₹%v", number.Decimal(v, number.MaxFractionDigits(2)))
}
