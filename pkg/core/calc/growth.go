package calc

import (
	"math"
	"sort"
)

// =============================================================================
// GROWTH
// =============================================================================

// CalculateYoY returns the year-over-year change as a fraction: (current - prior) / |prior|.
// Returns ok=false when prior is zero.
func CalculateYoY(current, prior float64) (float64, bool) {
	if prior == 0 {
		return 0, false
	}
	return (current - prior) / math.Abs(prior), true
}

// CalculateCAGR calculates compound annual growth rate as a fraction.
//
// FORMULA: CAGR = (End / Start)^(1/years) - 1
//
// Returns ok=false unless both endpoints are positive and years > 0.
func CalculateCAGR(startValue, endValue float64, years int) (float64, bool) {
	if startValue <= 0 || endValue <= 0 || years <= 0 {
		return 0, false
	}
	return math.Pow(endValue/startValue, 1.0/float64(years)) - 1, true
}

// CAGRFromSeries computes CAGR between the earliest and latest of the given years.
func CAGRFromSeries(values map[int]float64, years []int) (float64, bool) {
	if len(years) < 2 {
		return 0, false
	}
	sorted := append([]int(nil), years...)
	sort.Ints(sorted)
	first, last := sorted[0], sorted[len(sorted)-1]
	start, okStart := values[first]
	end, okEnd := values[last]
	if !okStart || !okEnd {
		return 0, false
	}
	return CalculateCAGR(start, end, last-first)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// =============================================================================
// DESCRIPTIVE STATISTICS
// =============================================================================

// Mean returns the arithmetic mean of values (0 for an empty slice).
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// LowerMedian returns the median, taking the lower middle value for even counts.
func LowerMedian(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return sorted[(len(sorted)-1)/2]
}

// MinMax returns the smallest and largest of values.
func MinMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// WithinTolerance reports whether actual is within a relative tolerance of expected.
func WithinTolerance(actual, expected, tolerance float64) bool {
	if expected == 0 {
		return math.Abs(actual) <= tolerance
	}
	return math.Abs(actual-expected)/math.Abs(expected) <= tolerance
}
