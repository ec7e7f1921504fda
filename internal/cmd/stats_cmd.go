package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/runger/flit/internal/config"
	"github.com/runger/flit/internal/usage"
)

var statsLimit int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show launch statistics from the usage store",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := config.DefaultPaths()

		store, err := usage.Open(paths.DatabaseFile())
		if err != nil {
			return fmt.Errorf("failed to open usage store: %w", err)
		}
		defer store.Close()

		ctx := context.Background()
		records, err := store.All(ctx)
		if err != nil {
			return fmt.Errorf("failed to read usage records: %w", err)
		}
		events, err := store.EventCount(ctx)
		if err != nil {
			return fmt.Errorf("failed to count launch events: %w", err)
		}

		rows := make([]usage.Record, 0, len(records))
		for _, rec := range records {
			rows = append(rows, rec)
		}
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].LaunchCount != rows[j].LaunchCount {
				return rows[i].LaunchCount > rows[j].LaunchCount
			}
			return rows[i].Key < rows[j].Key
		})
		if statsLimit > 0 && len(rows) > statsLimit {
			rows = rows[:statsLimit]
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "LAUNCHES\tMODE\tLAST USED\tKEY")
		for _, rec := range rows {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
				rec.LaunchCount,
				rec.LastLaunchMode,
				time.Unix(rec.LastUsedAt, 0).Format("2006-01-02 15:04"),
				rec.Key,
			)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		fmt.Printf("\n%d items, %d launch events\n", len(records), events)
		return nil
	},
}

func init() {
	statsCmd.Flags().IntVar(&statsLimit, "limit", 20, "number of entries to show (0 = all)")
}
