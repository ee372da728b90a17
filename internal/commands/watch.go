package commands

import (
	"os"

	"github.com/spf13/cobra"

	"TickerScope/internal/logger"
	"TickerScope/internal/notifier"
	"TickerScope/internal/scheduler"
)

var (
	watchNow  bool
	watchMock bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-analyze the watchlist on a cron schedule",
	Long: `Run the configured watchlist through the analysis on the schedule in
schedule.watch_cron. Each result is recorded and, when a bot token and chat id
are configured, sent to Telegram.

Runs until interrupted. Set RUN_ON_START=true or pass --now to run once
immediately.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&watchNow, "now", false, "run the watchlist once at startup")
	watchCmd.Flags().BoolVar(&watchMock, "mock", false, "use generated prices instead of Yahoo")
}

func runWatch(cmd *cobra.Command, args []string) error {
	env, err := newRuntime(cmd, watchMock)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := cmd.Context()
	log := logger.WithComponent(env.log, "watch")

	tn := notifier.NewTelegramNotifier(env.cfg.Telegram.BotToken, env.cfg.Telegram.ChatID, env.cfg.Proxy, log)
	if !tn.Enabled() {
		log.Info("telegram not configured, results are only recorded")
	}

	sched := scheduler.NewScheduler(ctx, env.collector, env.recorder, tn, newCache(env.cfg), env.cfg.Watchlist, log)
	if err := sched.Register(env.cfg.Schedule.WatchCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if watchNow || os.Getenv("RUN_ON_START") == "true" {
		log.Info("running watchlist at startup")
		go sched.RunNow()
	}

	log.WithField("cron", env.cfg.Schedule.WatchCron).Info("TickerScope is watching. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Info("shutdown signal received, stopping...")
	return nil
}
