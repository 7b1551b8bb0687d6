package domain

import "gonum.org/v1/gonum/stat"

// Mean returns the arithmetic mean of vals, 0 for an empty set.
func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return stat.Mean(vals, nil)
}

// StdDev returns the sample standard deviation of vals (unbiased, n-1).
// Sets with fewer than two values have no dispersion and yield 0.
func StdDev(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	return stat.StdDev(vals, nil)
}

// RSD returns the relative standard deviation of vals in percent.
// Zero-safe: a zero mean yields 0 rather than dividing by it.
func RSD(vals []float64) float64 {
	m := Mean(vals)
	if m == 0 {
		return 0
	}
	return StdDev(vals) / m * 100
}
