package model

import (
	"math"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// Level is a support or resistance price rounded to cents. Rounding follows
// printf's %.2f on the exact binary value, so 2.675 renders as $2.67.
type Level struct {
	Price decimal.Decimal
}

func (l Level) String() string { return "$" + l.Price.StringFixed(2) }

// UniqueLevels drops non-finite values, removes exact duplicates and orders the remaining prices.
// Deduplication is on the raw value, so two prices that both round to the
// same cent are still listed twice.
func UniqueLevels(prices []float64, descending bool) []Level {
	seen := make(map[float64]struct{}, len(prices))
	uniq := make([]float64, 0, len(prices))
	for _, p := range prices {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		uniq = append(uniq, p)
	}
	if descending {
		sort.Sort(sort.Reverse(sort.Float64Slice(uniq)))
	} else {
		sort.Float64s(uniq)
	}
	levels := make([]Level, len(uniq))
	for i, p := range uniq {
		levels[i] = Level{Price: decimal.RequireFromString(strconv.FormatFloat(p, 'f', 2, 64))}
	}
	return levels
}
