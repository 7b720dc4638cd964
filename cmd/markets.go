package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/agrimitra/mandi-cli/internal/acquire"
)

var marketsState string

var marketsCmd = &cobra.Command{
	Use:   "markets",
	Short: "List known mandis for a state",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client := initScraperClient()
		if client.Health(ctx) {
			markets, err := client.Markets(ctx, marketsState)
			if err != nil {
				return eris.Wrap(err, "list markets")
			}
			for _, m := range markets {
				fmt.Println(m)
			}
			return nil
		}

		// Service down: at least the default mandi is always known.
		fmt.Fprintln(os.Stderr, "Scraping service unavailable; showing the default mandi only.")
		fmt.Println(acquire.DefaultMarket(marketsState))
		return nil
	},
}

func init() {
	marketsCmd.Flags().StringVar(&marketsState, "state", "", "state name (required)")
	_ = marketsCmd.MarkFlagRequired("state")
	rootCmd.AddCommand(marketsCmd)
}
