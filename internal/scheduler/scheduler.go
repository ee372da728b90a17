package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"TickerScope/internal/cache"
	"TickerScope/internal/collector"
	"TickerScope/internal/notifier"
	"TickerScope/internal/recorder"
)

// Scheduler re-analyses a watchlist on a cron schedule.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Recorder  recorder.Recorder
	Notifier  *notifier.TelegramNotifier
	Cache     *cache.AnalysisCache
	Watchlist []string
	Ctx       context.Context
	Log       *logrus.Entry
}

// NewScheduler creates a new Scheduler. Notifier and Cache may be nil.
func NewScheduler(ctx context.Context, col *collector.Collector, rec recorder.Recorder,
	tn *notifier.TelegramNotifier, ac *cache.AnalysisCache, watchlist []string, log *logrus.Entry) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Recorder:  rec,
		Notifier:  tn,
		Cache:     ac,
		Watchlist: watchlist,
		Ctx:       ctx,
		Log:       log.WithField("component", "scheduler"),
	}
}

// Register adds the watch task under the given six-field cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, func() { s.RunNow() }); err != nil {
		return fmt.Errorf("register watch task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.WithField("symbols", len(s.Watchlist)).Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info("scheduler stopped")
}

// RunNow analyses every watched symbol once and returns how many succeeded.
// A failing symbol is logged and does not stop the rest.
func (s *Scheduler) RunNow() int {
	s.Log.Info("running watch task")
	ok := 0
	for _, symbol := range s.Watchlist {
		if s.Ctx.Err() != nil {
			break
		}
		if err := s.analyze(symbol); err != nil {
			s.Log.WithError(err).WithField("symbol", symbol).Error("watch analysis failed")
			continue
		}
		ok++
	}
	return ok
}

// analyze skips symbols that already have an analysis in the cache, so a
// schedule firing within the cache TTL does not refetch, re-record or resend.
func (s *Scheduler) analyze(symbol string) error {
	if s.Cache != nil {
		if cached, ok := s.Cache.Get(symbol); ok {
			s.Log.WithField("symbol", cached.Symbol).Debug("fresh analysis cached, skipping")
			return nil
		}
	}
	a, err := s.Collector.Analyze(s.Ctx, symbol)
	if err != nil {
		return err
	}
	if s.Cache != nil {
		s.Cache.Add(a)
	}
	if _, err := s.Recorder.Save(s.Ctx, a); err != nil {
		s.Log.WithError(err).WithField("symbol", a.Symbol).Error("record analysis")
	}
	if s.Notifier.Enabled() {
		if err := s.Notifier.SendWithRetry(s.Ctx, notifier.FormatTelegram(notifier.FormatReport(a)), 3); err != nil {
			s.Log.WithError(err).WithField("symbol", a.Symbol).Error("send notification")
		}
	}
	return nil
}
