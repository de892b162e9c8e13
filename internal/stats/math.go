package stats

import "slices"

// Median finds the statistical median of a slice of floats.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	// Work on a copy to avoid mutating the original
	temp := make([]float64, len(values))
	copy(temp, values)
	slices.Sort(temp)

	n := len(temp)
	if n%2 == 1 {
		return temp[n/2]
	}
	return (temp[n/2-1] + temp[n/2]) / 2.0
}

// LowerMedianIndex returns the index of the lower-median element of an
// ascending-sorted collection of length n. For even n this is the upper of
// the two middle positions (n/2), which is the authoritative definition used
// when a single representative element must be picked.
func LowerMedianIndex(n int) int {
	if n <= 0 {
		return 0
	}
	return n / 2
}
