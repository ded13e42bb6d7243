// pkg/stats/stats.go
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Variance calculates the sample variance of a slice of float64 values
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.Variance(data, nil)
}

// Median returns the middle value of the data (average of the two middle
// values for even-length inputs). The input slice is not modified.
func Median(data []float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, data)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Min returns the smallest value in data, or 0 for empty input.
func Min(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	m := data[0]
	for _, v := range data[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// Max returns the largest value in data, or 0 for empty input.
func Max(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	m := data[0]
	for _, v := range data[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// WeightedMean calculates the weighted mean of data. Weights must match
// data in length; zero total weight yields 0.
func WeightedMean(data, weights []float64) float64 {
	if len(data) == 0 || len(data) != len(weights) {
		return 0
	}
	var sumW float64
	for _, w := range weights {
		sumW += w
	}
	if sumW == 0 {
		return 0
	}
	return stat.Mean(data, weights)
}

// Correlation calculates the Pearson correlation coefficient between two datasets
func Correlation(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	if StdDev(x) == 0 || StdDev(y) == 0 {
		return 0
	}
	return stat.Correlation(x, y, nil)
}

// LinearRegression fits y = alpha + beta*i over the sequence index and
// returns the slope beta. Fewer than two points yields 0.
func LinearRegression(y []float64) (slope, intercept float64) {
	if len(y) < 2 {
		return 0, 0
	}
	x := make([]float64, len(y))
	for i := range x {
		x[i] = float64(i)
	}
	intercept, slope = stat.LinearRegression(x, y, nil, false)
	return slope, intercept
}

// CoefficientOfVariation returns StdDev/Mean, or 0 when the mean is 0.
func CoefficientOfVariation(data []float64) float64 {
	m := Mean(data)
	if m == 0 {
		return 0
	}
	return math.Abs(StdDev(data) / m)
}
