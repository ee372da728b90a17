package calculator

import "sort"

// PeakOptions filters local maxima.
// Distance is the minimum index spacing between kept peaks; values <= 1 disable the filter.
// Prominence is the minimum vertical drop to the higher of the two surrounding bases;
// values <= 0 disable the filter.
type PeakOptions struct {
	Distance   int
	Prominence float64
}

// DefaultPeakOptions are the parameters used for support and resistance detection.
var DefaultPeakOptions = PeakOptions{Distance: 10, Prominence: 1}

// FindPeaks returns the ascending indices of local maxima in x that survive
// the distance and prominence filters, applied in that order.
func FindPeaks(x []float64, opts PeakOptions) []int {
	peaks := localMaxima(x)
	if len(peaks) == 0 {
		return []int{}
	}
	if opts.Distance > 1 {
		peaks = selectByDistance(x, peaks, opts.Distance)
	}
	if opts.Prominence > 0 {
		proms := Prominences(x, peaks)
		kept := peaks[:0]
		for i, p := range peaks {
			if proms[i] >= opts.Prominence {
				kept = append(kept, p)
			}
		}
		peaks = kept
	}
	return peaks
}

// localMaxima finds samples higher than both neighbours. A flat top reports
// its middle sample (rounded down). The first and last samples never qualify.
func localMaxima(x []float64) []int {
	peaks := []int{}
	last := len(x) - 1
	for i := 1; i < last; i++ {
		if !(x[i-1] < x[i]) {
			continue
		}
		ahead := i + 1
		for ahead < last && x[ahead] == x[i] {
			ahead++
		}
		if x[ahead] < x[i] {
			left, right := i, ahead-1
			peaks = append(peaks, (left+right)/2)
			i = ahead - 1
		}
	}
	return peaks
}

// selectByDistance keeps the highest peaks first and drops any neighbour
// closer than distance samples. Ties favour the later peak.
func selectByDistance(x []float64, peaks []int, distance int) []int {
	n := len(peaks)
	byHeight := make([]int, n)
	for i := range byHeight {
		byHeight[i] = i
	}
	sort.SliceStable(byHeight, func(a, b int) bool {
		return x[peaks[byHeight[a]]] < x[peaks[byHeight[b]]]
	})

	keep := make([]bool, n)
	for i := range keep {
		keep[i] = true
	}
	for i := n - 1; i >= 0; i-- {
		j := byHeight[i]
		if !keep[j] {
			continue
		}
		for k := j - 1; k >= 0 && peaks[j]-peaks[k] < distance; k-- {
			keep[k] = false
		}
		for k := j + 1; k < n && peaks[k]-peaks[j] < distance; k++ {
			keep[k] = false
		}
	}

	out := make([]int, 0, n)
	for i, p := range peaks {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}

// Prominences measures each peak against the lowest point reached on each
// side before the signal climbs above the peak (or the series ends).
func Prominences(x []float64, peaks []int) []float64 {
	out := make([]float64, len(peaks))
	for n, p := range peaks {
		leftMin := x[p]
		for i := p; i >= 0 && x[i] <= x[p]; i-- {
			if x[i] < leftMin {
				leftMin = x[i]
			}
		}
		rightMin := x[p]
		for i := p; i < len(x) && x[i] <= x[p]; i++ {
			if x[i] < rightMin {
				rightMin = x[i]
			}
		}
		base := leftMin
		if rightMin > base {
			base = rightMin
		}
		out[n] = x[p] - base
	}
	return out
}

// Negate flips the sign of every sample so troughs can be found as peaks.
func Negate(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = -v
	}
	return out
}
