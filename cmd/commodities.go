package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agrimitra/mandi-cli/internal/normalize"
)

var commoditiesCmd = &cobra.Command{
	Use:   "commodities",
	Short: "List commodities with known price coverage",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client := initScraperClient()
		if client.Health(ctx) {
			commodities, err := client.Commodities(ctx)
			if err == nil {
				for _, c := range commodities {
					fmt.Println(c)
				}
				return nil
			}
			fmt.Fprintln(os.Stderr, "Scraping service error; showing the built-in commodity table.")
		}

		for _, c := range normalize.KnownCommodities() {
			fmt.Println(c)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(commoditiesCmd)
}
