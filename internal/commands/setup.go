package commands

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"TickerScope/internal/cache"
	"TickerScope/internal/calculator"
	"TickerScope/internal/collector"
	"TickerScope/internal/config"
	"TickerScope/internal/logger"
	"TickerScope/internal/recorder"
)

// runtimeEnv bundles the components shared by every subcommand.
type runtimeEnv struct {
	cfg       *config.Config
	log       *logrus.Logger
	collector *collector.Collector
	recorder  recorder.Recorder
	// persistent is false when saves go to the noop recorder.
	persistent bool
}

func (e *runtimeEnv) Close() {
	if err := e.recorder.Close(); err != nil {
		e.log.WithError(err).Warn("close recorder")
	}
}

// newRuntime loads config, builds the logger and wires the fetcher, collector
// and recorder. mock swaps the Yahoo fetcher for generated data.
func newRuntime(cmd *cobra.Command, mock bool) (*runtimeEnv, error) {
	cfg, err := config.Load(config.Path(cfgFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	var fetcher collector.Fetcher
	if mock {
		fetcher = &collector.MockFetcher{Price: 150}
	} else {
		fetcher = collector.NewYahooFetcher(collector.YahooOptions{
			Proxy:      cfg.Proxy,
			Timeout:    cfg.DataSource.Timeout,
			MaxRetries: *cfg.DataSource.MaxRetries,
			BaseDelay:  cfg.DataSource.BaseDelay,
			MaxDelay:   cfg.DataSource.MaxDelay,
		})
	}
	log.WithField("source", fetcher.Name()).Debug("data source selected")

	col := collector.NewCollector(fetcher, collector.Settings{
		Range:     cfg.DataSource.Range,
		RSILength: cfg.Indicators.RSILength,
		SMAFast:   cfg.Indicators.SMAFast,
		SMASlow:   cfg.Indicators.SMASlow,
		Peaks: calculator.PeakOptions{
			Distance:   cfg.Peaks.Distance,
			Prominence: *cfg.Peaks.Prominence,
		},
	}, logrus.NewEntry(log))
	col.Out = cmd.OutOrStdout()

	env := &runtimeEnv{cfg: cfg, log: log, collector: col, recorder: recorder.NewNoopRecorder()}
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logrus.NewEntry(log))
		if err != nil {
			log.WithError(err).Warn("init sqlite recorder failed, using noop")
		} else {
			env.recorder, env.persistent = sr, true
		}
	}
	return env, nil
}

func newCache(cfg *config.Config) *cache.AnalysisCache {
	return cache.New(cfg.Cache.Size, cfg.Cache.TTL)
}
