package collector

import (
	"context"
	"errors"

	"TickerScope/internal/model"
)

// ErrNoData is returned when the provider has no bars for a symbol.
var ErrNoData = errors.New("no data")

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchDailyBars returns daily bars covering rng (a provider range such as "1y").
	FetchDailyBars(ctx context.Context, symbol, rng string) ([]model.OHLCV, error)
	Name() string
}
