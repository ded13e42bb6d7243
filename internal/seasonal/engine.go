// internal/seasonal/engine.go
package seasonal

import (
	"math"
	"sort"

	"github.com/inventorykit/replenish/internal/config"
	"github.com/inventorykit/replenish/internal/domain"
	"github.com/inventorykit/replenish/pkg/stats"
)

// Engine builds and evaluates seasonal profiles from demand history.
type Engine struct {
	cfg config.SeasonalConfig
}

func NewEngine(cfg config.SeasonalConfig) *Engine {
	return &Engine{cfg: cfg}
}

// CompositeLine collapses multi-year history into one demand value per
// period, weighting recent years higher with exponential decay. Periods
// with no observation read as zero demand.
func (e *Engine) CompositeLine(history []domain.PeriodDemand, periodicity int) []float64 {
	composite := make([]float64, periodicity)
	if len(history) == 0 {
		return composite
	}

	maxYear := history[0].Period.Year
	for _, h := range history {
		if h.Period.Year > maxYear {
			maxYear = h.Period.Year
		}
	}

	type bucket struct {
		values  []float64
		weights []float64
	}
	buckets := make([]bucket, periodicity)
	for _, h := range history {
		i := h.Period.Index - 1
		if h.Ignored || i < 0 || i >= periodicity {
			continue
		}
		w := math.Pow(e.cfg.YearDecay, float64(maxYear-h.Period.Year))
		buckets[i].values = append(buckets[i].values, h.Demand)
		buckets[i].weights = append(buckets[i].weights, w)
	}

	for i, b := range buckets {
		if len(b.values) > 0 {
			composite[i] = stats.WeightedMean(b.values, b.weights)
		}
	}
	return composite
}

// GenerateIndices converts a composite line to seasonal indices with
// mean 1.0. Zero-demand periods are floored so a seasonal item can still
// carry a forecast in its off season, and the set is renormalized after
// flooring. A flat-zero composite yields all ones.
func (e *Engine) GenerateIndices(composite []float64) []float64 {
	n := len(composite)
	if n == 0 {
		return nil
	}

	overall := stats.Mean(composite)
	indices := make([]float64, n)
	if overall == 0 {
		for i := range indices {
			indices[i] = 1
		}
		return indices
	}

	floored := false
	for i, d := range composite {
		indices[i] = d / overall
		if indices[i] < e.cfg.ZeroIndexFloor {
			indices[i] = e.cfg.ZeroIndexFloor
			floored = true
		}
	}
	if floored {
		normalize(indices)
	}
	return indices
}

// Smooth blends each index with its calendar neighbors, wrapping across
// the year boundary, then renormalizes to mean 1.0.
func (e *Engine) Smooth(indices []float64) []float64 {
	n := len(indices)
	if n == 0 {
		return nil
	}

	f := e.cfg.SmoothingFactor
	smoothed := make([]float64, n)
	for i := range indices {
		prev := indices[(i-1+n)%n]
		next := indices[(i+1)%n]
		smoothed[i] = (1-f)*indices[i] + (f/2)*prev + (f/2)*next
	}
	normalize(smoothed)
	return smoothed
}

// Detection reports whether a demand pattern is seasonal and how
// trustworthy the call is.
type Detection struct {
	Seasonal      bool            `json:"seasonal"`
	Reason        string          `json:"reason,omitempty"`
	Range         float64         `json:"range"`
	Confidence    float64         `json:"confidence"`
	Indices       map[int]float64 `json:"indices,omitempty"`
	MaxPeriod     int             `json:"max_period,omitempty"`
	MinPeriod     int             `json:"min_period,omitempty"`
	YearsAnalyzed int             `json:"years_analyzed"`
}

// DetectSeasonality decides whether history shows a repeating annual
// shape. It needs at least two years; periods seen in only one year are
// ignored. The pattern is seasonal when the index spread reaches the
// threshold, and confidence rises with the spread and falls with
// year-to-year inconsistency.
func (e *Engine) DetectSeasonality(history []domain.PeriodDemand) Detection {
	years := make(map[int]struct{})
	byPeriod := make(map[int][]float64)
	for _, h := range history {
		if h.Ignored {
			continue
		}
		years[h.Period.Year] = struct{}{}
		byPeriod[h.Period.Index] = append(byPeriod[h.Period.Index], h.Demand)
	}
	if len(years) < 2 {
		return Detection{Reason: "insufficient_history", YearsAnalyzed: len(years)}
	}

	var all []float64
	var cvs []float64
	periodAvg := make(map[int]float64)
	for period, demands := range byPeriod {
		if len(demands) < 2 {
			continue
		}
		periodAvg[period] = stats.Mean(demands)
		cvs = append(cvs, stats.CoefficientOfVariation(demands))
		all = append(all, demands...)
	}
	if len(periodAvg) == 0 {
		return Detection{Reason: "insufficient_period_data", YearsAnalyzed: len(years)}
	}

	overall := stats.Mean(all)
	indices := make(map[int]float64, len(periodAvg))
	var maxP, minP int
	maxIdx, minIdx := math.Inf(-1), math.Inf(1)
	for period, avg := range periodAvg {
		idx := 1.0
		if overall > 0 {
			idx = avg / overall
		}
		indices[period] = idx
		if idx > maxIdx {
			maxIdx, maxP = idx, period
		}
		if idx < minIdx {
			minIdx, minP = idx, period
		}
	}

	spread := maxIdx - minIdx
	avgCV := stats.Mean(cvs)
	confidence := math.Min(1, spread*1.5*(1-math.Min(avgCV, 0.5)))

	return Detection{
		Seasonal:      spread >= e.cfg.RangeThreshold,
		Range:         spread,
		Confidence:    confidence,
		Indices:       indices,
		MaxPeriod:     maxP,
		MinPeriod:     minP,
		YearsAnalyzed: len(years),
	}
}

// BuildProfile runs the full pipeline from raw history to a smoothed
// profile: composite line, indices, smoothing.
func (e *Engine) BuildProfile(id string, history []domain.PeriodDemand, periodicity int) *Profile {
	composite := e.CompositeLine(history, periodicity)
	indices := e.Smooth(e.GenerateIndices(composite))
	return NewProfile(id, indices)
}

// PatternSimilarity scores two demand patterns by Pearson correlation
// over the union of their periods, treating gaps as zero demand. Only
// positive correlation counts as similarity.
func PatternSimilarity(p1, p2 map[int]float64) float64 {
	periods := make(map[int]struct{})
	for p := range p1 {
		periods[p] = struct{}{}
	}
	for p := range p2 {
		periods[p] = struct{}{}
	}
	if len(periods) < 2 {
		return 0
	}

	keys := make([]int, 0, len(periods))
	for p := range periods {
		keys = append(keys, p)
	}
	sort.Ints(keys)

	x := make([]float64, len(keys))
	y := make([]float64, len(keys))
	for i, p := range keys {
		x[i] = p1[p]
		y[i] = p2[p]
	}

	return math.Max(0, stats.Correlation(x, y))
}

// MostSimilar picks the candidate pattern closest to the reference,
// provided it clears the configured similarity floor.
func (e *Engine) MostSimilar(ref map[int]float64, candidates map[string]map[int]float64) (string, float64, bool) {
	var bestID string
	best := -1.0
	for id, pattern := range candidates {
		if score := PatternSimilarity(ref, pattern); score > best {
			best, bestID = score, id
		}
	}
	if best < e.cfg.MinSimilarity {
		return "", best, false
	}
	return bestID, best, true
}

func normalize(indices []float64) {
	mean := stats.Mean(indices)
	if mean == 0 {
		return
	}
	for i := range indices {
		indices[i] /= mean
	}
}
