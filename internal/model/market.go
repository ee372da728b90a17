package model

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// RSIColumn returns the column name used for an RSI of the given length.
func RSIColumn(length int) string { return fmt.Sprintf("RSI_%d", length) }

// SMAColumn returns the column name used for an SMA of the given length.
func SMAColumn(length int) string { return fmt.Sprintf("SMA_%d", length) }

// Frame is a date-indexed price table with derived indicator columns.
// Bars are kept in strictly increasing date order.
type Frame struct {
	Symbol  string
	Bars    []OHLCV
	Columns map[string][]float64
	order   []string
}

// NewFrame sorts bars by time and collapses bars sharing a timestamp (the last one wins).
func NewFrame(symbol string, bars []OHLCV) *Frame {
	sorted := make([]OHLCV, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	out := sorted[:0]
	for _, b := range sorted {
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return &Frame{
		Symbol:  symbol,
		Bars:    out,
		Columns: make(map[string][]float64),
	}
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.Bars) }

func (f *Frame) extract(pick func(OHLCV) float64) []float64 {
	vals := make([]float64, len(f.Bars))
	for i, b := range f.Bars {
		vals[i] = pick(b)
	}
	return vals
}

func (f *Frame) Highs() []float64  { return f.extract(func(b OHLCV) float64 { return b.High }) }
func (f *Frame) Lows() []float64   { return f.extract(func(b OHLCV) float64 { return b.Low }) }
func (f *Frame) Closes() []float64 { return f.extract(func(b OHLCV) float64 { return b.Close }) }

// SetColumn attaches a derived column. The column must have one value per row.
func (f *Frame) SetColumn(name string, values []float64) error {
	if len(values) != len(f.Bars) {
		return fmt.Errorf("column %s: got %d values for %d rows", name, len(values), len(f.Bars))
	}
	if _, exists := f.Columns[name]; !exists {
		f.order = append(f.order, name)
	}
	f.Columns[name] = values
	return nil
}

// Column returns a derived column by name.
func (f *Frame) Column(name string) ([]float64, bool) {
	v, ok := f.Columns[name]
	return v, ok
}

// ColumnNames returns derived column names in the order they were added.
func (f *Frame) ColumnNames() []string {
	names := make([]string, len(f.order))
	copy(names, f.order)
	return names
}

// Tail returns a new frame holding the last n rows.
func (f *Frame) Tail(n int) *Frame {
	if n > f.Len() {
		n = f.Len()
	}
	if n < 0 {
		n = 0
	}
	start := f.Len() - n
	t := &Frame{
		Symbol:  f.Symbol,
		Bars:    f.Bars[start:],
		Columns: make(map[string][]float64, len(f.Columns)),
		order:   f.ColumnNames(),
	}
	for name, vals := range f.Columns {
		t.Columns[name] = vals[start:]
	}
	return t
}

// Last returns the final row as a snapshot. ok is false for an empty frame.
func (f *Frame) Last() (snap Snapshot, ok bool) {
	if f == nil || f.Len() == 0 {
		return Snapshot{}, false
	}
	i := f.Len() - 1
	snap = Snapshot{
		Date:       f.Bars[i].Time,
		Close:      f.Bars[i].Close,
		Volume:     f.Bars[i].Volume,
		Indicators: make(map[string]float64, len(f.order)),
		Order:      f.ColumnNames(),
	}
	for _, name := range f.order {
		snap.Indicators[name] = f.Columns[name][i]
	}
	return snap, true
}

// Snapshot is one row of a Frame with its indicator values.
type Snapshot struct {
	Date       time.Time          `json:"date"`
	Close      float64            `json:"close"`
	Volume     float64            `json:"volume"`
	Indicators map[string]float64 `json:"-"`
	Order      []string           `json:"-"`
}

// Value returns an indicator value, or NaN when the column is missing.
func (s Snapshot) Value(name string) float64 {
	if v, ok := s.Indicators[name]; ok {
		return v
	}
	return math.NaN()
}
