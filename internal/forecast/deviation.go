// internal/forecast/deviation.go
package forecast

import (
	"fmt"
	"math"

	"github.com/inventorykit/replenish/internal/domain"
)

// MAD returns the mean absolute deviation between paired actuals and
// forecasts. Empty input yields 0.
func MAD(actuals, forecasts []float64) (float64, error) {
	if len(actuals) != len(forecasts) {
		return 0, fmt.Errorf("%w: %d actuals vs %d forecasts", domain.ErrShapeMismatch, len(actuals), len(forecasts))
	}
	if len(actuals) == 0 {
		return 0, nil
	}

	var sum float64
	for i := range actuals {
		sum += math.Abs(actuals[i] - forecasts[i])
	}
	return sum / float64(len(actuals)), nil
}

// MADP returns the mean absolute deviation as a percentage of forecast.
// Pairs with a zero forecast are excluded to avoid division by zero; if
// every pair is excluded the result is 0.
func MADP(actuals, forecasts []float64) (float64, error) {
	if len(actuals) != len(forecasts) {
		return 0, fmt.Errorf("%w: %d actuals vs %d forecasts", domain.ErrShapeMismatch, len(actuals), len(forecasts))
	}

	var sum float64
	var n int
	for i := range actuals {
		if forecasts[i] == 0 {
			continue
		}
		sum += math.Abs(actuals[i]-forecasts[i]) / forecasts[i] * 100
		n++
	}
	if n == 0 {
		return 0, nil
	}
	return sum / float64(n), nil
}

// TrackingSignal returns the signed bias of the forecast as a fraction in
// [-1, 1]: sum of errors divided by the total absolute error. Positive
// means demand is running above forecast. A zero MAD yields 0.
func TrackingSignal(actuals, forecasts []float64) (float64, error) {
	if len(actuals) != len(forecasts) {
		return 0, fmt.Errorf("%w: %d actuals vs %d forecasts", domain.ErrShapeMismatch, len(actuals), len(forecasts))
	}
	if len(actuals) == 0 {
		return 0, nil
	}

	var errSum float64
	for i := range actuals {
		errSum += actuals[i] - forecasts[i]
	}

	mad, err := MAD(actuals, forecasts)
	if err != nil {
		return 0, err
	}
	if mad == 0 {
		return 0, nil
	}

	track := errSum / (float64(len(actuals)) * mad)
	return math.Max(-1, math.Min(1, track)), nil
}

// MADPAgainst scores a single stored forecast against a demand window.
// A zero forecast with any observed demand reads as 100% deviation; the
// result is clamped to [0, 100].
func MADPAgainst(forecast float64, history []float64) float64 {
	if len(history) == 0 {
		return 0
	}
	if forecast == 0 {
		for _, d := range history {
			if d != 0 {
				return 100
			}
		}
		return 0
	}

	var sum float64
	for _, d := range history {
		sum += math.Abs(d-forecast) / forecast * 100
	}
	madp := sum / float64(len(history))
	return math.Max(0, math.Min(100, madp))
}

// DetectDemandSpike flags a single period's demand that sits more than
// the configured number of MADs away from forecast. The MAD is recovered
// from the stored MADP.
func DetectDemandSpike(forecast, actual, madp, highMADs, lowMADs float64) domain.ExceptionCode {
	if forecast <= 0 || madp <= 0 {
		return domain.ExceptionNone
	}
	mad := forecast * madp / 100

	switch {
	case actual > forecast+highMADs*mad:
		return domain.ExceptionDemandSpikeHigh
	case actual < forecast-lowMADs*mad:
		return domain.ExceptionDemandSpikeLow
	default:
		return domain.ExceptionNone
	}
}

// DetectTrackingException flags a tracking signal whose magnitude exceeds
// the review limit, preserving its direction.
func DetectTrackingException(track, limit float64) domain.ExceptionCode {
	switch {
	case track > limit:
		return domain.ExceptionTrackingHigh
	case track < -limit:
		return domain.ExceptionTrackingLow
	default:
		return domain.ExceptionNone
	}
}
