package analysis

import (
	"math"
	"sort"
)

// Median returns the standard median of vals: the middle element for odd
// lengths, the mean of the two middle elements for even lengths. ok is false
// for empty input. vals is not modified.
func Median(vals []float64) (m float64, ok bool) {
	if len(vals) == 0 {
		return 0, false
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	return medianSorted(cp), true
}

func medianSorted(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return sorted[n/2-1]/2 + sorted[n/2]/2
}

// Quantile estimates the q-th quantile of sorted ascending values by linear
// interpolation between the two nearest ranks at position (n-1)*q. ok is false
// for empty input.
func Quantile(sorted []float64, q float64) (float64, bool) {
	if len(sorted) == 0 {
		return 0, false
	}
	if q <= 0 || len(sorted) == 1 {
		return sorted[0], true
	}
	if q >= 1 {
		return sorted[len(sorted)-1], true
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo], true
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w, true
}

// MeanStd returns the arithmetic mean and population standard deviation
// (divide by N) of vals. ok is false for empty input.
func MeanStd(vals []float64) (mean, std float64, ok bool) {
	if len(vals) == 0 {
		return 0, 0, false
	}
	mean = runningMean(vals)
	var ss float64
	for _, v := range vals {
		d := v - mean
		ss += d * d
	}
	std = math.Sqrt(ss / float64(len(vals)))
	return mean, std, true
}

// runningMean is sum/n, falling back to an incremental update when the sum
// overflows.
func runningMean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	if !math.IsInf(sum, 0) {
		return sum / float64(len(vals))
	}
	mean := 0.0
	for i, v := range vals {
		n := float64(i + 1)
		mean += v/n - mean/n
	}
	return mean
}
