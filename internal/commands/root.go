package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
	verbose  bool
)

// rootCmd runs analyze for the configured ticker when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "tickerscope",
	Short: "Daily technical analysis for a single ticker",
	Long: `TickerScope downloads a year of daily prices for a ticker and reports
its latest indicators together with support and resistance levels.

Features:
• RSI and fast/slow simple moving averages on daily closes
• Support and resistance from prominent troughs and peaks
• Saved analyses in SQLite
• Cron-driven watchlist with optional Telegram delivery
• JSON HTTP API`,
	Version:       "1.0.0",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runAnalyze,
}

// Execute adds all child commands to the root command and runs it until the
// process receives SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default $CONFIG_PATH or configs/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	addAnalyzeFlags(rootCmd)
}
