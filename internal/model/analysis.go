package model

import (
	"encoding/json"
	"math"
	"time"
)

// Analysis is the outcome of one fetch-and-annotate run.
type Analysis struct {
	ID         string
	Symbol     string
	Frame      *Frame
	Support    []float64
	Resistance []float64
	CreatedAt  time.Time
}

// Latest returns the final row of the analysed frame.
func (a *Analysis) Latest() Snapshot {
	snap, _ := a.Frame.Last()
	return snap
}

// Summary is the persisted and JSON-encoded form of an Analysis.
type Summary struct {
	ID         string              `json:"id,omitempty"`
	Symbol     string              `json:"symbol"`
	CreatedAt  time.Time           `json:"created_at"`
	Date       time.Time           `json:"date"`
	Close      float64             `json:"close"`
	Volume     float64             `json:"volume"`
	Indicators map[string]*float64 `json:"indicators"`
	Support    []float64           `json:"support"`
	Resistance []float64           `json:"resistance"`
	Bars       int                 `json:"bars"`
}

// Summarize flattens the analysis for storage and transport. NaN indicator
// values become null since JSON has no NaN.
func (a *Analysis) Summarize() Summary {
	snap := a.Latest()
	ind := make(map[string]*float64, len(snap.Indicators))
	for name, v := range snap.Indicators {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			ind[name] = nil
			continue
		}
		ind[name] = &v
	}
	s := Summary{
		ID:         a.ID,
		Symbol:     a.Symbol,
		CreatedAt:  a.CreatedAt,
		Date:       snap.Date,
		Close:      snap.Close,
		Volume:     snap.Volume,
		Indicators: ind,
		Support:    nonNil(a.Support),
		Resistance: nonNil(a.Resistance),
	}
	if a.Frame != nil {
		s.Bars = a.Frame.Len()
	}
	return s
}

// MarshalJSON encodes the analysis as its Summary.
func (a *Analysis) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Summarize())
}

func nonNil(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}
