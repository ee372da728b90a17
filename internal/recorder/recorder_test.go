package recorder

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"TickerScope/internal/model"
)

func testAnalysis(symbol string, close float64, at time.Time) *model.Analysis {
	f := model.NewFrame(symbol, []model.OHLCV{{Time: at, Close: close, High: close + 1, Low: close - 1}})
	_ = f.SetColumn("RSI_14", []float64{55})
	return &model.Analysis{
		Symbol:     symbol,
		Frame:      f,
		Support:    []float64{close - 1},
		Resistance: []float64{close + 1},
		CreatedAt:  at,
	}
}

func openTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "test.db"), logrus.NewEntry(l))
	if err != nil {
		t.Fatalf("open recorder: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestNewSQLiteRecorder_CreatesParentDirectory(t *testing.T) {
	l := logrus.New()
	l.SetOutput(io.Discard)
	path := filepath.Join(t.TempDir(), "data", "nested", "tickerscope.db")
	r, err := NewSQLiteRecorder(path, logrus.NewEntry(l))
	if err != nil {
		t.Fatalf("open recorder: %v", err)
	}
	defer r.Close()

	id, err := r.Save(context.Background(), testAnalysis("AAPL", 100, time.Now()))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Get(context.Background(), id); err != nil {
		t.Errorf("expected saved analysis to be readable, got %v", err)
	}
}

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	ctx := context.Background()
	r := openTestRecorder(t)
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	older := testAnalysis("AAPL", 190, base)
	newer := testAnalysis("AAPL", 195, base.Add(time.Hour))
	other := testAnalysis("MSFT", 410, base.Add(2*time.Hour))
	for _, a := range []*model.Analysis{older, newer, other} {
		id, err := r.Save(ctx, a)
		if err != nil {
			t.Fatalf("save: %v", err)
		}
		if id == "" || id != a.ID {
			t.Fatalf("expected assigned id, got %q / %q", id, a.ID)
		}
	}

	all, err := r.List(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].Symbol != "MSFT" {
		t.Fatalf("expected 3 analyses newest first, got %+v", all)
	}

	aapl, err := r.List(ctx, "aapl")
	if err != nil {
		t.Fatal(err)
	}
	if len(aapl) != 2 || aapl[0].Close != 195 {
		t.Fatalf("expected 2 AAPL analyses newest first, got %+v", aapl)
	}

	got, err := r.Get(ctx, older.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Close != 190 || len(got.Support) != 1 || got.Support[0] != 189 {
		t.Errorf("unexpected payload: %+v", got)
	}
	if v := got.Indicators["RSI_14"]; v == nil || *v != 55 {
		t.Errorf("expected RSI_14=55, got %v", v)
	}

	if err := r.Delete(ctx, older.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Get(ctx, older.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := r.Delete(ctx, older.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestNoopRecorder(t *testing.T) {
	ctx := context.Background()
	r := NewNoopRecorder()
	a := testAnalysis("AAPL", 1, time.Now())
	id, err := r.Save(ctx, a)
	if err != nil || id == "" {
		t.Fatalf("expected id, got %q, %v", id, err)
	}
	list, _ := r.List(ctx, "")
	if len(list) != 0 {
		t.Error("noop recorder should not list anything")
	}
	if _, err := r.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
