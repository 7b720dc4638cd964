package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/agrimitra/mandi-cli/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the local price history",
	Long:  "Commands for listing recorded acquisition snapshots and querying stored price records.",
}

// -- history snapshots --

var historySnapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List recorded acquisition snapshots",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		snaps, err := st.ListSnapshots(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "history snapshots")
		}

		if len(snaps) == 0 {
			fmt.Fprintln(os.Stderr, "No snapshots recorded.")
			return nil
		}

		formatSnapshots(os.Stdout, snaps)
		return nil
	},
}

// -- history records --

var historyRecordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Query stored price records",
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
			return eris.Wrap(err, "history records")
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}

		if len(records) == 0 {
			fmt.Fprintln(os.Stderr, "No records found.")
			return nil
		}

		formatPriceTable(os.Stdout, records)
		return nil
	},
}

// -- history prune --

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete snapshots older than a retention window",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		keep, _ := cmd.Flags().GetDuration("keep")
		n, err := st.Prune(ctx, time.Now().Add(-keep))
		if err != nil {
			return eris.Wrap(err, "history prune")
		}

		fmt.Printf("Pruned %d snapshots.\n", n)
		return nil
	},
}

func init() {
	historySnapshotsCmd.Flags().Int("limit", 50, "max number of snapshots to display")

	historyRecordsCmd.Flags().String("state", "", "filter by state")
	historyRecordsCmd.Flags().String("district", "", "filter by district")
	historyRecordsCmd.Flags().String("commodity", "", "filter by commodity")
	historyRecordsCmd.Flags().String("market", "", "filter by market")
	historyRecordsCmd.Flags().Duration("since", 0, "only records fetched within this window (e.g. 72h)")
	historyRecordsCmd.Flags().Int("limit", 100, "max number of records to display")
	historyRecordsCmd.Flags().Bool("json", false, "print raw JSON instead of a table")

	historyPruneCmd.Flags().Duration("keep", 30*24*time.Hour, "retention window (e.g. 720h)")

	historyCmd.AddCommand(historySnapshotsCmd)
	historyCmd.AddCommand(historyRecordsCmd)
	historyCmd.AddCommand(historyPruneCmd)
	rootCmd.AddCommand(historyCmd)
}

// historyFilterFromFlags builds a store filter from the records flags.
func historyFilterFromFlags(cmd *cobra.Command) (store.HistoryFilter, error) {
	state, _ := cmd.Flags().GetString("state")
	district, _ := cmd.Flags().GetString("district")
	commodity, _ := cmd.Flags().GetString("commodity")
	market, _ := cmd.Flags().GetString("market")
	since, _ := cmd.Flags().GetDuration("since")
	limit, _ := cmd.Flags().GetInt("limit")

	filter := store.HistoryFilter{
		State:     state,
		District:  district,
		Commodity: commodity,
		Market:    market,
		Limit:     limit,
	}
	if since > 0 {
		filter.Since = time.Now().Add(-since)
	}
	return filter, nil
}

// formatSnapshots writes a tabular snapshot list to w.
func formatSnapshots(out io.Writer, snaps []store.Snapshot) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSOURCE\tSTATE\tRECORDS\tFETCHED")
	_, _ = fmt.Fprintln(w, "--\t------\t-----\t-------\t-------")

	for _, s := range snaps {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			truncateID(s.ID),
			s.Source,
			s.State,
			s.RecordCount,
			s.FetchedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
