package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"TickerScope/internal/calculator"
	"TickerScope/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price     float64
	Days      int
	DailyData []model.OHLCV
	Err       error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, _ string, _ string) ([]model.OHLCV, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.DailyData != nil {
		return m.DailyData, nil
	}
	days := m.Days
	if days == 0 {
		days = 252
	}
	return GenerateMockBars(m.Price, days), nil
}

// GenerateMockBars builds a deterministic oscillating series ending today.
func GenerateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	end := time.Now().UTC().Truncate(24 * time.Hour)
	for i := 0; i < count; i++ {
		wave := math.Sin(float64(i)/8) * 0.06
		drift := float64(i-count/2) * 0.0005
		p := basePrice * (1 + wave + drift)
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Settings control indicator lengths and extrema detection.
type Settings struct {
	Range     string
	RSILength int
	SMAFast   int
	SMASlow   int
	Peaks     calculator.PeakOptions
}

// DefaultSettings mirrors the classic RSI(14), SMA(50/200), distance=10, prominence=1 setup.
var DefaultSettings = Settings{
	Range:     "1y",
	RSILength: 14,
	SMAFast:   50,
	SMASlow:   200,
	Peaks:     calculator.DefaultPeakOptions,
}

// Collector orchestrates data fetching and indicator computation.
type Collector struct {
	Fetcher  Fetcher
	Settings Settings
	Log      *logrus.Entry
	Out      io.Writer // receives user-facing failure messages from TechnicalData
	Now      func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, settings Settings, log *logrus.Entry) *Collector {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Collector{
		Fetcher:  fetcher,
		Settings: settings,
		Log:      log.WithField("component", "collector"),
		Out:      os.Stdout,
		Now:      time.Now,
	}
}

// Analyze fetches daily bars for symbol, annotates them with RSI and both SMAs,
// and derives support (trough lows) and resistance (peak highs) levels.
func (c *Collector) Analyze(ctx context.Context, symbol string) (*model.Analysis, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("empty ticker: %w", ErrNoData)
	}

	log := c.Log.WithField("symbol", symbol)
	log.WithField("source", c.Fetcher.Name()).Debug("fetching daily bars")

	bars, err := c.Fetcher.FetchDailyBars(ctx, symbol, c.Settings.Range)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars: %w", err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoData)
	}

	frame := model.NewFrame(symbol, bars)
	if err := c.annotate(frame); err != nil {
		return nil, fmt.Errorf("annotate: %w", err)
	}

	highs, lows := frame.Highs(), frame.Lows()
	peaks := calculator.FindPeaks(highs, c.Settings.Peaks)
	troughs := calculator.FindPeaks(calculator.Negate(lows), c.Settings.Peaks)

	resistance := make([]float64, len(peaks))
	for i, p := range peaks {
		resistance[i] = highs[p]
	}
	support := make([]float64, len(troughs))
	for i, p := range troughs {
		support[i] = lows[p]
	}

	log.WithFields(logrus.Fields{
		"bars":       frame.Len(),
		"support":    len(support),
		"resistance": len(resistance),
	}).Info("analysis complete")

	return &model.Analysis{
		Symbol:     symbol,
		Frame:      frame,
		Support:    support,
		Resistance: resistance,
		CreatedAt:  c.Now(),
	}, nil
}

func (c *Collector) annotate(frame *model.Frame) error {
	closes := frame.Closes()

	rsi, err := calculator.RSISeries(closes, c.Settings.RSILength)
	if err != nil {
		return fmt.Errorf("rsi: %w", err)
	}
	if err := frame.SetColumn(model.RSIColumn(c.Settings.RSILength), rsi); err != nil {
		return err
	}

	for _, length := range []int{c.Settings.SMAFast, c.Settings.SMASlow} {
		sma, err := calculator.SMASeries(closes, length)
		if err != nil {
			return fmt.Errorf("sma %d: %w", length, err)
		}
		if err := frame.SetColumn(model.SMAColumn(length), sma); err != nil {
			return err
		}
	}
	return nil
}

// TechnicalData runs Analyze and swallows any failure: it prints a message to
// Out and returns nil for the frame and both level lists.
func (c *Collector) TechnicalData(ctx context.Context, symbol string) (*model.Frame, []float64, []float64) {
	a, err := c.Analyze(ctx, symbol)
	if err != nil {
		if errors.Is(err, ErrNoData) {
			fmt.Fprintf(c.Out, "No data found for ticker: %s\n", symbol)
		} else {
			fmt.Fprintf(c.Out, "An error occurred: %v\n", err)
		}
		c.Log.WithError(err).WithField("symbol", symbol).Warn("technical data unavailable")
		return nil, nil, nil
	}
	return a.Frame, a.Support, a.Resistance
}
