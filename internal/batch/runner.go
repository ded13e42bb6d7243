// internal/batch/runner.go
package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/inventorykit/replenish/internal/config"
	"github.com/inventorykit/replenish/internal/domain"
	"github.com/inventorykit/replenish/internal/forecast"
	"github.com/inventorykit/replenish/internal/leadtime"
	"github.com/inventorykit/replenish/internal/safetystock"
	"github.com/inventorykit/replenish/internal/seasonal"
	"github.com/inventorykit/replenish/pkg/logger"
)

// Runner drives a period-end run across a snapshot of items: reforecast,
// lead time resolution, then order point and order quantity sizing. One
// item's failure is logged and counted without aborting its siblings.
type Runner struct {
	cfg      *config.Config
	forecast *forecast.Engine
	leadtime *leadtime.Engine
	safety   *safetystock.Engine
	seasonal *seasonal.Engine

	// profiles is read-only for the life of the runner.
	profiles map[string]*seasonal.Profile
}

func NewRunner(cfg *config.Config, profiles map[string]*seasonal.Profile) *Runner {
	return &Runner{
		cfg:      cfg,
		forecast: forecast.NewEngine(cfg.Forecast),
		leadtime: leadtime.NewEngine(cfg.LeadTime),
		safety:   safetystock.NewEngine(cfg.SafetyStock),
		seasonal: seasonal.NewEngine(cfg.Seasonal),
		profiles: profiles,
	}
}

// ItemResult is the period-end outcome for one item.
type ItemResult struct {
	SKU      string `json:"sku"`
	Location string `json:"location"`

	Forecast forecast.Result         `json:"forecast"`
	Derived  forecast.Derived        `json:"derived"`
	LeadTime domain.LeadTimeForecast `json:"lead_time"`

	SafetyStock      float64 `json:"safety_stock"`
	ItemOrderPoint   float64 `json:"item_order_point"`
	SourceOrderPoint float64 `json:"source_order_point"`
	OrderUpToLevel   float64 `json:"order_up_to_level"`
	SuggestedQty     float64 `json:"suggested_qty"`

	Exceptions []string `json:"exceptions,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// Summary totals one run.
type Summary struct {
	Processed int           `json:"processed"`
	Updated   int           `json:"updated"`
	Errors    int           `json:"errors"`
	Duration  time.Duration `json:"duration"`
}

// Run processes items with bounded concurrency and returns per-item
// results in input order plus run totals.
func (r *Runner) Run(ctx context.Context, items []domain.Item) ([]ItemResult, Summary) {
	start := time.Now()
	results := make([]ItemResult, len(items))

	workers := int64(r.cfg.Batch.Workers)
	if workers < 1 {
		workers = 1
	}
	sem := semaphore.NewWeighted(workers)

	var wg sync.WaitGroup
	for i := range items {
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = ItemResult{
				SKU:      items[i].SKU,
				Location: items[i].Location,
				Error:    err.Error(),
			}
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = r.processItem(&items[i], time.Now())
		}(i)
	}
	wg.Wait()

	summary := Summary{Duration: time.Since(start)}
	for _, res := range results {
		summary.Processed++
		switch {
		case res.Error != "":
			summary.Errors++
		case res.Forecast.Reforecast:
			summary.Updated++
		}
	}
	logger.Log.Info().
		Int("processed", summary.Processed).
		Int("updated", summary.Updated).
		Int("errors", summary.Errors).
		Dur("duration", summary.Duration).
		Msg("period-end run complete")
	return results, summary
}

func (r *Runner) processItem(item *domain.Item, now time.Time) (res ItemResult) {
	res.SKU = item.SKU
	res.Location = item.Location

	defer func() {
		if rec := recover(); rec != nil {
			res.Error = fmt.Sprintf("%v: %v", domain.ErrCalculation, rec)
			logger.Log.Error().
				Str("sku", item.SKU).
				Str("location", item.Location).
				Interface("panic", rec).
				Msg("item processing failed")
		}
	}()

	profile := r.profileFor(item)

	res.Forecast = r.reforecast(item, profile, now)
	item.Forecast = res.Forecast.New
	res.Derived = r.forecast.Derived(item.Forecast.Base)

	res.LeadTime = r.leadtime.Forecast(leadtime.Input{
		Override:     item.LeadTimeOverride,
		Receipts:     item.Receipts,
		SupplierDays: item.SupplierLeadTime,
	})

	res.SafetyStock, res.ItemOrderPoint, res.SourceOrderPoint, res.OrderUpToLevel, res.SuggestedQty =
		r.orderPoints(item, res.LeadTime)

	for _, code := range res.Forecast.Exceptions {
		res.Exceptions = append(res.Exceptions, domain.ExceptionLabel(code))
	}
	return res
}

// reforecast picks the enhanced variant for slow movers so a dry spell
// does not erase the forecast.
func (r *Runner) reforecast(item *domain.Item, profile *seasonal.Profile, now time.Time) forecast.Result {
	var indexer forecast.SeasonalIndexer
	if profile != nil {
		indexer = profile
	}
	if item.Forecast.Base <= r.cfg.Forecast.DemandLimit {
		return r.forecast.EnhancedReforecast(item, indexer, now)
	}
	return r.forecast.Reforecast(item, indexer, now)
}

// orderPoints sizes the item from its stored base forecast, which is
// already the current period's seasonally adjusted expectation.
func (r *Runner) orderPoints(item *domain.Item, lt domain.LeadTimeForecast) (ss, iop, vop, outl, soq float64) {
	periodDays := 28.0
	if r.cfg.Forecast.Periodicity == 52 {
		periodDays = 7
	}
	dailyDemand := item.Forecast.Base / periodDays

	z := r.safety.Z(item.ServiceLevelGoal)
	ltDays := float64(lt.Days)
	demandStd := dailyDemand * item.Forecast.MADP / 100 * 1.25
	ltStd := ltDays * lt.VariancePct / 100

	ss = safetystock.SafetyStock(z, demandStd, ltDays, ltStd, dailyDemand)
	effSS := safetystock.EffectiveSafetyStock(ss, item.EventMinimum, item.PresentationStock, item.PromoActive)

	iop = safetystock.ItemOrderPoint(dailyDemand, ltDays, effSS)
	vop = safetystock.SourceOrderPoint(dailyDemand, ltDays, item.VendorCycleDays, effSS)
	outl = safetystock.OrderUpToLevel(dailyDemand, ltDays, item.ReviewCycleDays, effSS)
	soq = safetystock.SuggestedOrderQty(outl, item.Stock.AvailableBalance(), item.Constraints)
	if r.cfg.Batch.ForwardBuy {
		soq = r.safety.ForwardBuy(soq, dailyDemand, item.Constraints)
	}
	return ss, iop, vop, outl, soq
}

func (r *Runner) profileFor(item *domain.Item) *seasonal.Profile {
	if item.Forecast.ProfileID == "" {
		return nil
	}
	return r.profiles[item.Forecast.ProfileID]
}
