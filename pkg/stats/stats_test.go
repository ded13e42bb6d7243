package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 10.0, Mean([]float64{10}))
	assert.Equal(t, 5.0, Mean([]float64{2, 4, 6, 8}))
}

func TestStdDevAndVariance(t *testing.T) {
	// Fewer than two points has no spread to measure.
	assert.Equal(t, 0.0, StdDev(nil))
	assert.Equal(t, 0.0, StdDev([]float64{5}))
	assert.Equal(t, 0.0, Variance([]float64{5}))

	data := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, 4.571, Variance(data), 0.001)
	assert.InDelta(t, 2.138, StdDev(data), 0.001)
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 3.0, Median([]float64{3}))
	assert.Equal(t, 4.0, Median([]float64{9, 4, 1}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 3, 2}))

	// Input order must survive.
	data := []float64{9, 4, 1}
	Median(data)
	assert.Equal(t, []float64{9, 4, 1}, data)
}

func TestMinMax(t *testing.T) {
	data := []float64{4, -2, 9, 0}
	assert.Equal(t, -2.0, Min(data))
	assert.Equal(t, 9.0, Max(data))
	assert.Equal(t, 0.0, Min(nil))
	assert.Equal(t, 0.0, Max(nil))
}

func TestWeightedMean(t *testing.T) {
	assert.Equal(t, 0.0, WeightedMean([]float64{1, 2}, []float64{1}))
	assert.Equal(t, 0.0, WeightedMean([]float64{1, 2}, []float64{0, 0}))
	assert.InDelta(t, 8.0, WeightedMean([]float64{10, 2}, []float64{3, 1}), 1e-9)
}

func TestCorrelation(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	assert.InDelta(t, 1.0, Correlation(x, []float64{2, 4, 6, 8}), 1e-9)
	assert.InDelta(t, -1.0, Correlation(x, []float64{8, 6, 4, 2}), 1e-9)

	// Mismatched lengths and flat series are not correlatable.
	assert.Equal(t, 0.0, Correlation(x, []float64{1, 2}))
	assert.Equal(t, 0.0, Correlation(x, []float64{5, 5, 5, 5}))
}

func TestLinearRegression(t *testing.T) {
	slope, intercept := LinearRegression([]float64{2, 4, 6, 8})
	assert.InDelta(t, 2.0, slope, 1e-9)
	assert.InDelta(t, 2.0, intercept, 1e-9)

	slope, _ = LinearRegression([]float64{5})
	assert.Equal(t, 0.0, slope)
}

func TestCoefficientOfVariation(t *testing.T) {
	assert.Equal(t, 0.0, CoefficientOfVariation(nil))
	assert.Equal(t, 0.0, CoefficientOfVariation([]float64{0, 0}))

	cv := CoefficientOfVariation([]float64{10, 20, 30})
	assert.InDelta(t, 0.5, cv, 0.001)
}
