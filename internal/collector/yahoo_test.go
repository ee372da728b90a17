package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const chartOK = `{"chart":{"result":[{"timestamp":[1700006400,1699920000,1700092800],
"indicators":{"quote":[{"open":[11,10,null],"high":[12,11,null],"low":[10,9,null],"close":[11.5,10.5,null],"volume":[200,100,null]}],
"adjclose":[{"adjclose":[5.75,10.5,null]}]}}],"error":null}}`

const chartNotFound = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

func newTestYahoo(url string) *YahooFetcher {
	f := NewYahooFetcher(YahooOptions{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond})
	f.BaseURL = url
	return f
}

func TestYahooFetcher_ParsesAndAdjusts(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		w.Write([]byte(chartOK))
	}))
	defer srv.Close()

	bars, err := newTestYahoo(srv.URL).FetchDailyBars(context.Background(), "aapl", "1y")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotPath != "/v8/finance/chart/AAPL" {
		t.Errorf("unexpected path %s", gotPath)
	}
	if !strings.Contains(gotQuery, "interval=1d") || !strings.Contains(gotQuery, "range=1y") {
		t.Errorf("unexpected query %s", gotQuery)
	}
	if len(bars) != 2 {
		t.Fatalf("expected null bar to be skipped, got %d bars", len(bars))
	}
	if !bars[0].Time.Before(bars[1].Time) {
		t.Error("bars should be sorted chronologically")
	}
	if bars[0].Close != 10.5 || bars[0].High != 11 {
		t.Errorf("unadjusted bar changed: %+v", bars[0])
	}
	// adjclose 5.75 on close 11.5 halves the second bar
	if bars[1].Close != 5.75 || bars[1].High != 6 || bars[1].Low != 5 {
		t.Errorf("expected halved prices, got %+v", bars[1])
	}
}

func TestYahooFetcher_SymbolMapping(t *testing.T) {
	f := NewYahooFetcher(YahooOptions{})
	tests := map[string]string{"SPX": "^GSPC", "btc": "BTC-USD", "AAPL": "AAPL"}
	for in, want := range tests {
		if got := f.yahooSymbol(in); got != want {
			t.Errorf("%s: expected %s, got %s", in, want, got)
		}
	}
}

func TestYahooFetcher_NotFoundIsNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(chartNotFound))
	}))
	defer srv.Close()

	_, err := newTestYahoo(srv.URL).FetchDailyBars(context.Background(), "ZZZZ", "1y")
	if !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestYahooFetcher_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(chartOK))
	}))
	defer srv.Close()

	bars, err := newTestYahoo(srv.URL).FetchDailyBars(context.Background(), "AAPL", "1y")
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls != 3 || len(bars) != 2 {
		t.Errorf("expected 3 calls and 2 bars, got %d calls, %d bars", calls, len(bars))
	}
}

func TestYahooFetcher_NoRetryOnClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestYahoo(srv.URL).FetchDailyBars(context.Background(), "AAPL", "1y")
	if err == nil || errors.Is(err, ErrNoData) {
		t.Errorf("expected a plain status error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single attempt, got %d", calls)
	}
}

func TestYahooFetcher_SkipsPartialNullBars(t *testing.T) {
	const chart = `{"chart":{"result":[{"timestamp":[1699920000,1700006400,1700092800,1700179200],
"indicators":{"quote":[{"open":[10,11,12,null],"high":[11,12,13,14],"low":[9,null,11,12],"close":[10.5,11.5,12.5,13.5],"volume":[100,200,300,400]}]}}],"error":null}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chart))
	}))
	defer srv.Close()

	bars, err := newTestYahoo(srv.URL).FetchDailyBars(context.Background(), "AAPL", "1y")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(bars) != 3 {
		t.Fatalf("expected the bar with a null low to be skipped, got %d bars", len(bars))
	}
	for _, b := range bars {
		if b.Low == 0 || b.High == 0 || b.Close == 0 {
			t.Errorf("bar carries a zero price: %+v", b)
		}
	}
	if last := bars[2]; last.Open != last.Close {
		t.Errorf("expected a null open to fall back to close, got %+v", last)
	}
}
