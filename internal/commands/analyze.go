package commands

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"TickerScope/internal/model"
	"TickerScope/internal/notifier"
)

var (
	analyzeSave bool
	analyzeJSON bool
	analyzeMock bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [TICKER]",
	Short: "Analyze one ticker and print the report",
	Long: `Download daily bars for TICKER (default: the configured ticker, AAPL),
compute RSI and both moving averages, and print the latest indicators with
support and resistance levels.

Examples:
  tickerscope analyze             # configured ticker
  tickerscope analyze MSFT --save # analyze and record
  tickerscope analyze BTC --json  # machine-readable output`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	addAnalyzeFlags(analyzeCmd)
}

func addAnalyzeFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&analyzeSave, "save", false, "record the analysis")
	cmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the analysis as JSON")
	cmd.Flags().BoolVar(&analyzeMock, "mock", false, "use generated prices instead of Yahoo")
}

// runAnalyze prints the report for one ticker. Missing data is reported on
// stdout and is not an error.
func runAnalyze(cmd *cobra.Command, args []string) error {
	env, err := newRuntime(cmd, analyzeMock)
	if err != nil {
		return err
	}
	defer env.Close()

	if analyzeSave && !env.persistent {
		return errors.New("--save needs a usable database.sqlite_path")
	}

	ticker := env.cfg.Ticker
	if len(args) > 0 {
		ticker = args[0]
	}

	frame, support, resistance := env.collector.TechnicalData(cmd.Context(), ticker)
	if frame == nil {
		return nil
	}
	a := &model.Analysis{
		Symbol:     frame.Symbol,
		Frame:      frame,
		Support:    support,
		Resistance: resistance,
		CreatedAt:  env.collector.Now(),
	}

	if analyzeSave {
		id, err := env.recorder.Save(cmd.Context(), a)
		if err != nil {
			return fmt.Errorf("failed to save analysis: %w", err)
		}
		env.log.WithField("id", id).WithField("symbol", a.Symbol).Info("analysis saved")
	}

	out := cmd.OutOrStdout()
	if analyzeJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	}
	fmt.Fprint(out, notifier.FormatReport(a))
	return nil
}
