// internal/leadtime/engine.go
package leadtime

import (
	"math"

	"github.com/inventorykit/replenish/internal/config"
	"github.com/inventorykit/replenish/internal/domain"
	"github.com/inventorykit/replenish/pkg/stats"
)

// Engine resolves lead time forecasts through a strict fallback chain:
// item override, then receipt history, then the supplier default, then
// the organization default. The first level that can answer wins.
type Engine struct {
	cfg config.LeadTimeConfig
}

func NewEngine(cfg config.LeadTimeConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Input carries everything one resolution needs.
type Input struct {
	Override            *int // planner-set lead time, days
	Receipts            []domain.Receipt
	SupplierDays        *int // supplier quoted lead time, days
	SupplierVariancePct *float64
}

// FilterOptions control which special receipts are excluded from
// history-based forecasting.
type FilterOptions struct {
	ExcludeExpedited bool
	ExcludeDelayed   bool
}

// FilterSpecialReceipts drops receipts whose realized lead time deviates
// far enough from the expected lead time to suggest expediting or a
// supply problem. Receipts without an expected lead time pass through.
func (e *Engine) FilterSpecialReceipts(receipts []domain.Receipt, opts FilterOptions) []domain.Receipt {
	filtered := make([]domain.Receipt, 0, len(receipts))
	for _, r := range receipts {
		actual, ok := ActualLeadTime(r)
		if !ok {
			continue
		}
		if r.ExpectedDays > 0 {
			if opts.ExcludeExpedited && actual < e.cfg.ExpeditedRatio*r.ExpectedDays {
				continue
			}
			if opts.ExcludeDelayed && actual > e.cfg.DelayedRatio*r.ExpectedDays {
				continue
			}
		}
		filtered = append(filtered, r)
	}
	return filtered
}

// Forecast walks the fallback chain and returns the first answer. It
// never fails: the organization default is always available.
func (e *Engine) Forecast(in Input) domain.LeadTimeForecast {
	resolvers := []func(Input) *domain.LeadTimeForecast{
		e.fromOverride,
		e.fromHistory,
		e.fromSupplier,
	}
	for _, resolve := range resolvers {
		if f := resolve(in); f != nil {
			return *f
		}
	}
	return domain.LeadTimeForecast{
		Days:        e.cfg.DefaultDays,
		VariancePct: e.cfg.DefaultVariancePct,
		Source:      domain.LeadTimeOrgDefault,
	}
}

func (e *Engine) fromOverride(in Input) *domain.LeadTimeForecast {
	if in.Override == nil || *in.Override <= 0 {
		return nil
	}
	return &domain.LeadTimeForecast{
		Days:        *in.Override,
		VariancePct: e.cfg.DefaultVariancePct,
		Source:      domain.LeadTimeItemOverride,
	}
}

// fromHistory forecasts from receipt history when enough clean samples
// exist. The forecast leans on the median, nudged by half the detected
// trend so a drifting supplier is anticipated rather than chased.
func (e *Engine) fromHistory(in Input) *domain.LeadTimeForecast {
	clean := e.FilterSpecialReceipts(in.Receipts, FilterOptions{
		ExcludeExpedited: true,
		ExcludeDelayed:   true,
	})
	s := CalcStats(clean)
	if s == nil || s.Count < e.cfg.MinSamples {
		return nil
	}

	forecast := s.Median
	if trend := DetectTrend(s, e.cfg.TrendThreshold); trend.HasTrend {
		forecast += trend.Value / 2
	}
	days := int(math.Round(math.Max(1, forecast)))

	return &domain.LeadTimeForecast{
		Days:        days,
		VariancePct: math.Max(e.cfg.MinVariancePct, s.VariancePct),
		Source:      domain.LeadTimeReceiptHistory,
	}
}

func (e *Engine) fromSupplier(in Input) *domain.LeadTimeForecast {
	if in.SupplierDays == nil || *in.SupplierDays <= 0 {
		return nil
	}
	variance := e.cfg.SupplierVariancePct
	if in.SupplierVariancePct != nil {
		variance = *in.SupplierVariancePct
	}
	return &domain.LeadTimeForecast{
		Days:        *in.SupplierDays,
		VariancePct: variance,
		Source:      domain.LeadTimeSupplierDefault,
	}
}

// Reliability grades how well a supplier hits its quoted lead time.
type Reliability struct {
	Score        float64 `json:"score"`
	Status       string  `json:"status"`
	MeanLeadTime float64 `json:"mean_lead_time"`
	DeviationPct float64 `json:"deviation_pct"`
}

// EvaluateReliability scores actual lead times against the expected one.
// Both bias and spread count against the score.
func EvaluateReliability(expected float64, actuals []float64) Reliability {
	if len(actuals) == 0 || expected <= 0 {
		return Reliability{Status: "INSUFFICIENT_DATA"}
	}

	mean := stats.Mean(actuals)
	std := stats.StdDev(actuals)
	deviationPct := math.Abs(mean-expected) / expected * 100
	score := math.Max(0, 100-(deviationPct+std))

	var status string
	switch {
	case score >= 90:
		status = "EXCELLENT"
	case score >= 75:
		status = "GOOD"
	case score >= 50:
		status = "AVERAGE"
	case score >= 25:
		status = "POOR"
	default:
		status = "UNRELIABLE"
	}

	return Reliability{
		Score:        score,
		Status:       status,
		MeanLeadTime: mean,
		DeviationPct: deviationPct,
	}
}

// FillInLeadTime estimates a lead time for an emergency fill-in order
// when the primary supply is disrupted: an alternate supplier's quote if
// one exists, otherwise buffered history, otherwise a buffered quote.
// The result is clamped to a sane range.
func FillInLeadTime(quotedDays float64, historical []float64, alternateDays float64) float64 {
	var fillIn float64
	switch {
	case alternateDays > 0:
		fillIn = alternateDays
	case len(historical) > 0:
		fillIn = stats.Mean(historical) * 1.5
	default:
		fillIn = quotedDays * 1.25
	}
	return math.Max(3, math.Min(fillIn, 45))
}
