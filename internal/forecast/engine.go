// internal/forecast/engine.go
package forecast

import (
	"math"
	"time"

	"github.com/inventorykit/replenish/internal/config"
	"github.com/inventorykit/replenish/internal/domain"
	"github.com/inventorykit/replenish/pkg/stats"
)

// SeasonalIndexer supplies the demand index for a period of the year.
// A nil indexer means the item is not seasonal.
type SeasonalIndexer interface {
	IndexFor(periodIndex int) float64
}

// Engine performs adaptive-smoothing reforecasting. All methods are pure
// over their inputs; persistence belongs to the caller.
type Engine struct {
	cfg config.ForecastConfig
}

func NewEngine(cfg config.ForecastConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Derived are the read-only views recomputed from the base forecast.
type Derived struct {
	Weekly    float64 `json:"weekly"`
	Period    float64 `json:"period"`
	Quarterly float64 `json:"quarterly"`
	Yearly    float64 `json:"yearly"`
}

// Derived projects the base forecast onto the other horizons. With a
// 13-period calendar the base is a 4-week bucket; with 52 it is a week.
func (e *Engine) Derived(base float64) Derived {
	if e.cfg.Periodicity == 52 {
		return Derived{
			Weekly:    base,
			Period:    base * 4,
			Quarterly: base * 13,
			Yearly:    base * 52,
		}
	}
	return Derived{
		Weekly:    base / 4,
		Period:    base,
		Quarterly: base * 3,
		Yearly:    base * 13,
	}
}

// Result reports one reforecast attempt.
type Result struct {
	Reforecast   bool                   `json:"reforecast"`
	Reason       string                 `json:"reason,omitempty"`
	Old          domain.ItemForecast    `json:"old"`
	New          domain.ItemForecast    `json:"new"`
	Weight       float64                `json:"weight"`
	RecentDemand float64                `json:"recent_demand"`
	ZeroPeriods  int                    `json:"zero_periods,omitempty"`
	Exceptions   []domain.ExceptionCode `json:"exceptions,omitempty"`
}

// Reforecast blends the most recent period's demand into the stored
// forecast, weighting by the tracking signal so a biased forecast chases
// demand harder. MADP and track are measured against the outgoing
// forecast and stored alongside the new one. Seasonal items are
// deseasonalized so the smoothing runs in level terms, then the new base
// is reseasonalized to the current period's index: the stored forecast
// is always the current period's expectation.
func (e *Engine) Reforecast(item *domain.Item, profile SeasonalIndexer, now time.Time) Result {
	old := item.Forecast

	if skipped, res := e.checkFrozen(old, now); skipped {
		return res
	}

	current := CurrentPeriod(now, e.cfg.Periodicity)
	window := demandWindow(item.History, current, e.cfg.WindowPeriods)
	if len(window) == 0 {
		return Result{Reforecast: false, Reason: "no_history", Old: old, New: old}
	}

	actuals := e.deseasonalize(window, profile)
	levelBase := old.Base / seasonalIndex(profile, window[0].Period.Index)
	madp, track := e.deviation(actuals, levelBase)

	weight := e.trackWeight(track)
	recent := actuals[0]
	newLevel := weight*recent + (1-weight)*levelBase
	newBase := newLevel * seasonalIndex(profile, current.Index)

	res := Result{
		Reforecast:   true,
		Old:          old,
		New:          e.updated(old, newBase, madp, track, now),
		Weight:       weight,
		RecentDemand: recent,
	}
	res.Exceptions = e.exceptions(levelBase, recent, madp, track)
	return res
}

// EnhancedReforecast is the intermittent-demand variant: it only moves
// the forecast when demand actually occurred, or when a run of zero
// periods has outlasted what the forecast level predicts. The smoothing
// weight is divided across the zero gap so a lone sale after a dry spell
// does not whipsaw the forecast.
func (e *Engine) EnhancedReforecast(item *domain.Item, profile SeasonalIndexer, now time.Time) Result {
	old := item.Forecast

	if skipped, res := e.checkFrozen(old, now); skipped {
		return res
	}

	current := CurrentPeriod(now, e.cfg.Periodicity)
	window := demandWindow(item.History, current, e.cfg.WindowPeriods)
	if len(window) == 0 {
		return Result{Reforecast: false, Reason: "no_history", Old: old, New: old}
	}

	var zeroPeriods int
	for _, h := range window {
		if h.Demand != 0 {
			break
		}
		zeroPeriods++
	}

	recent := window[0].Demand
	trigger := recent > e.cfg.DemandLimit
	if !trigger && zeroPeriods > 0 {
		threshold := ExpectedZeroPeriods(old.Base, old.MADP) * e.cfg.UpdateFrequencyImpact
		trigger = float64(zeroPeriods) >= threshold
	}
	if !trigger {
		return Result{
			Reforecast:  false,
			Reason:      "no_demand_trigger",
			Old:         old,
			New:         old,
			ZeroPeriods: zeroPeriods,
		}
	}

	actuals := e.deseasonalize(window, profile)
	levelBase := old.Base / seasonalIndex(profile, window[0].Period.Index)
	madp, track := e.deviation(actuals, levelBase)

	weight := e.trackWeight(track)
	if zeroPeriods > 0 {
		weight /= float64(zeroPeriods + 1)
	}
	newLevel := weight*actuals[0] + (1-weight)*levelBase
	newBase := newLevel * seasonalIndex(profile, current.Index)

	res := Result{
		Reforecast:   true,
		Old:          old,
		New:          e.updated(old, newBase, madp, track, now),
		Weight:       weight,
		RecentDemand: actuals[0],
		ZeroPeriods:  zeroPeriods,
	}
	res.Exceptions = e.exceptions(levelBase, actuals[0], madp, track)
	return res
}

// InitialForecast seeds a new item, either from an explicit starting
// value or from the average forecast of comparable items. With neither,
// it starts at one unit per period. New items carry a wide default MADP
// so early demand swings do not raise exceptions.
func (e *Engine) InitialForecast(starting *float64, similar []float64, now time.Time) domain.ItemForecast {
	base := 1.0
	switch {
	case starting != nil:
		base = *starting
	case len(similar) > 0:
		base = stats.Mean(similar)
	}

	return domain.ItemForecast{
		Base:      base,
		MADP:      30,
		Track:     0.2,
		State:     domain.ForecastNormal,
		UpdatedAt: now,
	}
}

// Freeze pins the forecast until the given date; period-end runs leave
// frozen items untouched.
func Freeze(f *domain.ItemForecast, until time.Time) {
	f.State = domain.ForecastFrozen
	f.FreezeUntil = &until
}

// Thaw returns a frozen forecast to normal processing.
func Thaw(f *domain.ItemForecast) {
	f.State = domain.ForecastNormal
	f.FreezeUntil = nil
}

// HistoryOp adjusts a stored demand bucket, e.g. to strip a one-off bulk
// sale before it distorts the next reforecast.
type HistoryOp string

const (
	HistoryAdd      HistoryOp = "ADD"
	HistorySubtract HistoryOp = "SUBTRACT"
	HistoryMultiply HistoryOp = "MULTIPLY"
	HistorySet      HistoryOp = "SET"
)

// AdjustHistoryValue applies op to a demand value, flooring at zero.
func AdjustHistoryValue(op HistoryOp, current, value float64) float64 {
	var out float64
	switch op {
	case HistoryAdd:
		out = current + value
	case HistorySubtract:
		out = current - value
	case HistoryMultiply:
		out = current * value
	case HistorySet:
		out = value
	default:
		out = current
	}
	return math.Max(0, out)
}

// ExpectedZeroPeriods estimates how many zero-demand periods a year at
// this forecast level implies, approximating period demand as normal
// with the MADP-derived deviation. A nonpositive forecast expects a
// fully quiet year; a forecast several deviations above zero expects
// demand every period.
func ExpectedZeroPeriods(forecast, madp float64) float64 {
	const periodsPerYear = 12
	if forecast <= 0 {
		return periodsPerYear
	}
	std := madp / 100 * forecast * 1.25
	if std <= 0 {
		return 0
	}
	z := forecast / std
	if z > 6 {
		return 0
	}
	probZero := math.Min(1, math.Max(0, 1-math.Erf(z/math.Sqrt2)/2))
	return probZero * periodsPerYear
}

// TimeGapDecay shrinks a forecast that has seen no demand for gap
// periods, with exponential decay past the first quiet period.
func TimeGapDecay(forecast float64, gap int) float64 {
	if gap <= 1 {
		return forecast
	}
	const decay = 0.8
	return forecast * math.Pow(decay, float64(gap-1))
}

func (e *Engine) checkFrozen(old domain.ItemForecast, now time.Time) (bool, Result) {
	if old.FreezeUntil != nil && now.Before(*old.FreezeUntil) {
		return true, Result{Reforecast: false, Reason: "frozen", Old: old, New: old}
	}
	return false, Result{}
}

// deseasonalize divides each bucket by its period index so the smoothing
// runs in level terms. Degenerate indices pass demand through.
func (e *Engine) deseasonalize(window []domain.PeriodDemand, profile SeasonalIndexer) []float64 {
	actuals := make([]float64, len(window))
	for i, h := range window {
		actuals[i] = h.Demand / seasonalIndex(profile, h.Period.Index)
	}
	return actuals
}

// seasonalIndex resolves a period's demand index, treating a nil profile
// or a degenerate index as flat.
func seasonalIndex(profile SeasonalIndexer, periodIndex int) float64 {
	if profile == nil {
		return 1
	}
	if idx := profile.IndexFor(periodIndex); idx > 0 {
		return idx
	}
	return 1
}

func (e *Engine) deviation(actuals []float64, oldBase float64) (madp, track float64) {
	forecasts := make([]float64, len(actuals))
	for i := range forecasts {
		forecasts[i] = oldBase
	}

	if oldBase == 0 {
		madp = MADPAgainst(oldBase, actuals)
	} else {
		madp, _ = MADP(actuals, forecasts) // lengths match by construction
	}
	track, _ = TrackingSignal(actuals, forecasts)
	return madp, track
}

// trackWeight converts the signed tracking signal into the smoothing
// weight, scaled by the alpha factor (10 = neutral) and clamped.
func (e *Engine) trackWeight(track float64) float64 {
	w := math.Abs(track) * e.cfg.AlphaFactor / 10
	return math.Max(0, math.Min(e.cfg.MaxTrackWeight, w))
}

func (e *Engine) updated(old domain.ItemForecast, base, madp, track float64, now time.Time) domain.ItemForecast {
	next := old
	next.Base = base
	next.MADP = madp
	next.Track = track
	next.State = domain.ForecastNormal
	next.FreezeUntil = nil
	next.UpdatedAt = now
	return next
}

func (e *Engine) exceptions(oldBase, recent, madp, track float64) []domain.ExceptionCode {
	var out []domain.ExceptionCode
	if code := DetectDemandSpike(oldBase, recent, madp, e.cfg.DemandFilterHi, e.cfg.DemandFilterLo); code != domain.ExceptionNone {
		out = append(out, code)
	}
	if code := DetectTrackingException(track, e.cfg.TrackingLimit); code != domain.ExceptionNone {
		out = append(out, code)
	}
	return out
}
