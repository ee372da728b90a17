package commands

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"TickerScope/internal/recorder"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [TICKER]",
	Short: "List saved analyses",
	Long:  "List saved analyses newest first, optionally for one ticker",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer env.Close()

		symbol := ""
		if len(args) > 0 {
			symbol = strings.ToUpper(args[0])
		}
		saved, err := env.recorder.List(cmd.Context(), symbol)
		if err != nil {
			return fmt.Errorf("failed to list analyses: %w", err)
		}
		if historyLimit > 0 && len(saved) > historyLimit {
			saved = saved[:historyLimit]
		}

		out := cmd.OutOrStdout()
		if len(saved) == 0 {
			fmt.Fprintln(out, "No saved analyses.")
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSYMBOL\tDATE\tCLOSE\tSUPPORT\tRESISTANCE\tSAVED")
		for _, s := range saved {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%d\t%d\t%s\n",
				s.ID, s.Symbol, s.Date.Format("2006-01-02"), s.Close,
				len(s.Support), len(s.Resistance), humanize.Time(s.CreatedAt))
		}
		return w.Flush()
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a saved analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.recorder.Delete(cmd.Context(), args[0]); err != nil {
			if errors.Is(err, recorder.ErrNotFound) {
				return fmt.Errorf("no saved analysis with id %s", args[0])
			}
			return fmt.Errorf("failed to delete analysis: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyDeleteCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum rows to show (0 for all)")
}
