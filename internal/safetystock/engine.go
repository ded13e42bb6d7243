// internal/safetystock/engine.go
package safetystock

import (
	"math"

	"github.com/inventorykit/replenish/internal/config"
	"github.com/inventorykit/replenish/internal/domain"
)

// madToSigma approximates the standard deviation from a mean absolute
// deviation under a normal distribution.
const madToSigma = 1.25

// Engine computes safety stock, order points and suggested order
// quantities. All methods are pure.
type Engine struct {
	cfg config.SafetyStockConfig
}

func NewEngine(cfg config.SafetyStockConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Z resolves the safety factor for a goal, substituting the configured
// default service level when the goal is unset.
func (e *Engine) Z(goal float64) float64 {
	if goal <= 0 {
		goal = e.cfg.DefaultServiceLevel
	}
	return ServiceLevelToZ(goal, e.cfg.ServiceLevelFloor, e.cfg.ServiceLevelCeil)
}

// SafetyStock returns safety stock in units for independent demand and
// lead time variability:
//
//	SS = Z * sqrt(LT*sigmaD^2 + D^2*sigmaLT^2)
//
// A negative radicand from degenerate inputs is clamped to zero, as is
// the result.
func SafetyStock(z, demandStd, avgLeadTime, leadTimeStd, avgDailyDemand float64) float64 {
	radicand := avgLeadTime*demandStd*demandStd + avgDailyDemand*avgDailyDemand*leadTimeStd*leadTimeStd
	if radicand < 0 {
		radicand = 0
	}
	return math.Max(0, z*math.Sqrt(radicand))
}

// SafetyStockDays is the days-of-supply form driven by the stored MADP
// instead of a demand sigma. Daily demand normalizes to 1, so the
// result reads directly as days. A long order cycle damps the result:
// the longer stock sits between reviews, the less marginal protection
// safety stock buys.
func (e *Engine) SafetyStockDays(goal, madp, leadTimeDays, leadTimeVariancePct, orderCycleDays float64) float64 {
	z := e.Z(goal)
	sigma := madp / 100 * madToSigma
	ltVarianceDays := leadTimeDays * leadTimeVariancePct / 100

	days := z * math.Sqrt(leadTimeDays*sigma*sigma+ltVarianceDays*ltVarianceDays)

	if orderCycleDays > 0 {
		factor := 1 - 0.1*math.Log10(orderCycleDays)
		days *= math.Max(0.5, math.Min(1, factor))
	}
	return math.Max(0, days)
}

// EffectiveSafetyStock applies merchandising floors to the computed
// safety stock. Exactly one substitution applies: an active promotion's
// event minimum takes priority, otherwise presentation stock floors the
// value when it exceeds the computed stock.
func EffectiveSafetyStock(computed, eventMin, presentationStock float64, promoActive bool) float64 {
	if promoActive && eventMin > 0 {
		return math.Max(computed, eventMin)
	}
	if presentationStock > computed {
		return presentationStock
	}
	return computed
}

// ItemOrderPoint is the inventory level that triggers a replenishment:
// expected demand over the lead time plus safety stock.
func ItemOrderPoint(dailyDemand, leadTimeDays, safetyStock float64) float64 {
	return leadTimeDays*dailyDemand + safetyStock
}

// SourceOrderPoint extends the item order point by the vendor's order
// cycle, for items replenished on the vendor's schedule.
func SourceOrderPoint(dailyDemand, leadTimeDays, vendorCycleDays, safetyStock float64) float64 {
	return ItemOrderPoint(dailyDemand, leadTimeDays, safetyStock) + vendorCycleDays*dailyDemand
}

// OrderUpToLevel is the target inventory position after ordering. The
// effective cycle is the longer of lead time and review cycle, so the
// level always covers at least one full replenishment loop and never
// drops below the item order point.
func OrderUpToLevel(dailyDemand, leadTimeDays, reviewCycleDays, effectiveSafetyStock float64) float64 {
	cycle := math.Max(leadTimeDays, reviewCycleDays)
	return cycle*dailyDemand + effectiveSafetyStock
}

// SuggestedOrderQty sizes the order that brings the available balance up
// to the order-up-to level, then applies pack and vendor rules: round up
// to the buying multiple, clamp to the item min/max, then the vendor
// min/max. A positive need below the vendor minimum yields no order.
func SuggestedOrderQty(outl, availableBalance float64, c domain.OrderConstraints) float64 {
	need := outl - availableBalance
	if need <= 0 {
		return 0
	}

	qty := need
	if c.BuyingMultiple > 0 {
		qty = math.Ceil(qty/c.BuyingMultiple) * c.BuyingMultiple
	}

	if c.MinQty > 0 && qty < c.MinQty {
		qty = c.MinQty
	}
	if c.MaxQty > 0 && qty > c.MaxQty {
		qty = c.MaxQty
	}

	if c.VendorMinQty > 0 && qty < c.VendorMinQty {
		return 0
	}
	if c.VendorMaxQty > 0 && qty > c.VendorMaxQty {
		qty = c.VendorMaxQty
	}
	return qty
}

// EconomicOrderQty balances per-order acquisition cost against annual
// carrying cost with the classic EOQ formula. Degenerate inputs yield
// zero.
func (e *Engine) EconomicOrderQty(annualDemand, acquisitionCost float64) float64 {
	rate := e.cfg.CarryingCostRate / 100
	if annualDemand <= 0 || acquisitionCost <= 0 || rate <= 0 {
		return 0
	}
	return math.Sqrt(2 * annualDemand * acquisitionCost / rate)
}

// ForwardBuy tops an order up to the forward-buy window of supply. The
// extra quantity must clear the minimum-days filter to be worth carrying,
// and is rounded up to the buying multiple. An order already covering the
// window, or an item without demand, passes through unchanged.
func (e *Engine) ForwardBuy(soq, dailyDemand float64, c domain.OrderConstraints) float64 {
	if soq <= 0 || dailyDemand <= 0 {
		return soq
	}
	daysOfSupply := soq / dailyDemand
	if daysOfSupply >= e.cfg.ForwardBuyMaxDays {
		return soq
	}

	extra := (e.cfg.ForwardBuyMaxDays - daysOfSupply) * dailyDemand
	if extra < e.cfg.ForwardBuyMinDays*dailyDemand {
		return soq
	}
	if c.BuyingMultiple > 0 {
		extra = math.Ceil(extra/c.BuyingMultiple) * c.BuyingMultiple
	}
	return soq + extra
}

// EmpiricalAdjustment nudges safety stock toward the service level goal
// based on attained performance, capped per review so one bad period
// cannot whipsaw the investment.
func (e *Engine) EmpiricalAdjustment(currentSS, goalPct, attainedPct float64) float64 {
	factor := (goalPct - attainedPct) / 100
	cap := e.cfg.MaxAdjustmentPct / 100
	factor = math.Max(-cap, math.Min(cap, factor))
	return math.Max(0, currentSS*(1+factor))
}
