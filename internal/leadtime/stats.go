// internal/leadtime/stats.go
package leadtime

import (
	"math"
	"time"

	"github.com/inventorykit/replenish/internal/domain"
	"github.com/inventorykit/replenish/pkg/stats"
)

// ActualLeadTime returns the realized lead time of a receipt in days.
// Receipts with a missing date or a receipt before the order are
// reported as not usable; same-day receipts count as zero days.
func ActualLeadTime(r domain.Receipt) (float64, bool) {
	if r.OrderDate == nil || r.ReceiptDate == nil {
		return 0, false
	}
	days := r.ReceiptDate.Sub(*r.OrderDate).Hours() / 24
	if days < 0 {
		return 0, false
	}
	return days, true
}

// Stats summarizes the realized lead times of a receipt set.
type Stats struct {
	Mean        float64 `json:"mean"`
	Median      float64 `json:"median"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	StdDev      float64 `json:"std_dev"`
	Variance    float64 `json:"variance"`
	VariancePct float64 `json:"variance_pct"`
	Trend       float64 `json:"trend"`
	Count       int     `json:"count"`
}

// CalcStats computes lead time statistics over receipts, which are
// assumed chronological. Trend is the regression slope of lead time over
// receipt sequence, in days per receipt. Returns nil when no receipt
// yields a usable lead time.
func CalcStats(receipts []domain.Receipt) *Stats {
	leadTimes := usableLeadTimes(receipts)
	if len(leadTimes) == 0 {
		return nil
	}

	mean := stats.Mean(leadTimes)
	std := stats.StdDev(leadTimes)
	variancePct := 0.0
	if mean > 0 {
		variancePct = std / mean * 100
	}
	slope, _ := stats.LinearRegression(leadTimes)

	return &Stats{
		Mean:        mean,
		Median:      stats.Median(leadTimes),
		Min:         stats.Min(leadTimes),
		Max:         stats.Max(leadTimes),
		StdDev:      std,
		Variance:    stats.Variance(leadTimes),
		VariancePct: variancePct,
		Trend:       slope,
		Count:       len(leadTimes),
	}
}

// Trend describes whether lead times are drifting.
type Trend struct {
	HasTrend  bool    `json:"has_trend"`
	Value     float64 `json:"value"`
	Pct       float64 `json:"pct"`
	Direction string  `json:"direction"`
}

// DetectTrend flags a drift whose projected change over the sample
// exceeds the threshold fraction of the mean lead time.
func DetectTrend(s *Stats, threshold float64) Trend {
	if s == nil || s.Count < 2 {
		return Trend{Direction: "stable"}
	}

	// Project the per-receipt slope across the whole sample.
	change := s.Trend * float64(s.Count-1)
	pct := 0.0
	if s.Mean > 0 {
		pct = change / s.Mean * 100
	}

	t := Trend{
		HasTrend: math.Abs(change) > s.Mean*threshold,
		Value:    change,
		Pct:      pct,
	}
	switch {
	case change > 0:
		t.Direction = "increasing"
	case change < 0:
		t.Direction = "decreasing"
	default:
		t.Direction = "stable"
	}
	return t
}

// Seasonality reports month-of-year variation in lead times.
type Seasonality struct {
	Seasonal bool                   `json:"seasonal"`
	Indices  map[time.Month]float64 `json:"indices,omitempty"`
	Range    float64                `json:"range"`
	MaxMonth time.Month             `json:"max_month,omitempty"`
	MinMonth time.Month             `json:"min_month,omitempty"`
}

// DetectSeasonality groups realized lead times by receipt month and
// compares each month's mean against the overall mean. The pattern is
// called seasonal when the index spread reaches the threshold.
func DetectSeasonality(receipts []domain.Receipt, rangeThreshold float64) Seasonality {
	byMonth := make(map[time.Month][]float64)
	var all []float64
	for _, r := range receipts {
		lt, ok := ActualLeadTime(r)
		if !ok {
			continue
		}
		m := r.ReceiptDate.Month()
		byMonth[m] = append(byMonth[m], lt)
		all = append(all, lt)
	}
	if len(all) == 0 {
		return Seasonality{}
	}

	overall := stats.Mean(all)
	if overall == 0 {
		return Seasonality{}
	}

	indices := make(map[time.Month]float64, len(byMonth))
	var maxM, minM time.Month
	maxIdx, minIdx := -1.0, -1.0
	for m, lts := range byMonth {
		idx := stats.Mean(lts) / overall
		indices[m] = idx
		if maxIdx < 0 || idx > maxIdx {
			maxIdx, maxM = idx, m
		}
		if minIdx < 0 || idx < minIdx {
			minIdx, minM = idx, m
		}
	}

	spread := maxIdx - minIdx
	return Seasonality{
		Seasonal: spread >= rangeThreshold,
		Indices:  indices,
		Range:    spread,
		MaxMonth: maxM,
		MinMonth: minM,
	}
}

func usableLeadTimes(receipts []domain.Receipt) []float64 {
	out := make([]float64, 0, len(receipts))
	for _, r := range receipts {
		if lt, ok := ActualLeadTime(r); ok {
			out = append(out, lt)
		}
	}
	return out
}
