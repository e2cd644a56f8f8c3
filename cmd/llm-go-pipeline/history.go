package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/juju/ansiterm/tabwriter"
	"github.com/spf13/cobra"

	"github.com/jt-f/dagger-experiments/internal/history"
)

func init() {
	historyCmd.AddCommand(historyListCmd, historyShowCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse reports of earlier pipeline runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored reports, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.OpenReadOnly(settings.HistoryPath)
		if err != nil {
			return err
		}
		defer store.Close()

		recs, err := store.List()
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', tabwriter.DiscardEmptyColumns)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", "ID", "STARTED", "DURATION", "ASSIGNMENT")
		for _, rec := range recs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				rec.ID,
				humanize.Time(rec.StartedAt),
				rec.Duration.Round(time.Second),
				summarize(rec.Assignment, 60),
			)
		}
		return tw.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a stored report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.OpenReadOnly(settings.HistoryPath)
		if err != nil {
			return err
		}
		defer store.Close()

		rec, err := store.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), rec.Report)
		return nil
	},
}

// summarize flattens s onto one line and truncates it to n runes.
func summarize(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
