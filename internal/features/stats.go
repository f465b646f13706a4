package features

import (
	"math"
	"sort"
)

// Aggregate helpers over float64 slices. Missing values are NaN and are
// skipped: a mean over {10, NaN} is 10, matching how the source tables
// treat unreported cells. A mean or max with no present values is NaN; a
// sum with no present values is 0.

func calculateMean(values []float64) float64 {
	sum := 0.0
	count := 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		count++
	}
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}

func calculateSum(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		if !math.IsNaN(v) {
			sum += v
		}
	}
	return sum
}

func calculateMax(values []float64) float64 {
	max := math.NaN()
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(max) || v > max {
			max = v
		}
	}
	return max
}

// calculateMedian returns the midpoint of the sorted present values: the
// middle element for odd counts, the mean of the two middle elements for
// even counts. The input slice is not modified.
func calculateMedian(values []float64) float64 {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return math.NaN()
	}
	sort.Float64s(present)

	mid := len(present) / 2
	if len(present)%2 == 0 {
		return (present[mid-1] + present[mid]) / 2
	}
	return present[mid]
}
