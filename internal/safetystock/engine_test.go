package safetystock

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inventorykit/replenish/internal/config"
	"github.com/inventorykit/replenish/internal/domain"
)

func testSafetyStockConfig() config.SafetyStockConfig {
	return config.SafetyStockConfig{
		DefaultServiceLevel: 95,
		ServiceLevelFloor:   50,
		ServiceLevelCeil:    99.99,
		MaxAdjustmentPct:    20,
		CarryingCostRate:    25,
		ForwardBuyMinDays:   0,
		ForwardBuyMaxDays:   60,
	}
}

func TestServiceLevelToZ(t *testing.T) {
	// Fraction and percentage forms agree.
	assert.InDelta(t, 1.645, ServiceLevelToZ(0.95, 50, 99.99), 0.01)
	assert.InDelta(t, 1.645, ServiceLevelToZ(95, 50, 99.99), 0.01)

	// Higher goals demand more protection.
	z90 := ServiceLevelToZ(0.90, 50, 99.99)
	z95 := ServiceLevelToZ(0.95, 50, 99.99)
	z99 := ServiceLevelToZ(0.99, 50, 99.99)
	assert.Less(t, z90, z95)
	assert.Less(t, z95, z99)

	// The floor and ceiling clamp extreme goals.
	assert.InDelta(t, 0.0, ServiceLevelToZ(0.10, 50, 99.99), 1e-9)
	assert.InDelta(t, ServiceLevelToZ(0.9999, 50, 99.99), ServiceLevelToZ(0.99999, 50, 99.99), 1e-6)

	// Out-of-domain goals fall back rather than failing.
	assert.InDelta(t, 1.65, ServiceLevelToZ(0, 50, 99.99), 1e-9)
	assert.InDelta(t, 1.65, ServiceLevelToZ(-5, 50, 99.99), 1e-9)
}

func TestZToServiceLevel(t *testing.T) {
	assert.InDelta(t, 95.0, ZToServiceLevel(1.645), 0.1)
	assert.InDelta(t, 50.0, ZToServiceLevel(0), 1e-9)
}

func TestEngineZ_DefaultsGoal(t *testing.T) {
	e := NewEngine(testSafetyStockConfig())
	assert.InDelta(t, 1.645, e.Z(0), 0.01)
	assert.InDelta(t, e.Z(99), e.Z(0.99), 1e-9)
}

func TestSafetyStock(t *testing.T) {
	// 1.65 * sqrt(10*20^2 + 100^2*2^2) = 1.65 * sqrt(44000)
	ss := SafetyStock(1.65, 20, 10, 2, 100)
	assert.InDelta(t, 346.11, ss, 0.01)

	// No variability needs no protection.
	assert.Equal(t, 0.0, SafetyStock(1.65, 0, 10, 0, 100))

	// Degenerate inputs clamp instead of producing NaN.
	assert.Equal(t, 0.0, SafetyStock(1.65, 20, -10, 0, 0))
	assert.Equal(t, 0.0, SafetyStock(-1.65, 20, 10, 2, 100))
}

func TestSafetyStock_MonotoneInServiceLevel(t *testing.T) {
	e := NewEngine(testSafetyStockConfig())
	low := SafetyStock(e.Z(90), 20, 10, 2, 100)
	high := SafetyStock(e.Z(99), 20, 10, 2, 100)
	assert.Less(t, low, high)
}

func TestSafetyStockDays(t *testing.T) {
	e := NewEngine(testSafetyStockConfig())

	days := e.SafetyStockDays(95, 25, 14, 10, 0)
	assert.Greater(t, days, 0.0)

	// A longer order cycle damps the investment.
	damped := e.SafetyStockDays(95, 25, 14, 10, 28)
	assert.Less(t, damped, days)

	// No deviation, no variance: nothing to protect against.
	assert.Equal(t, 0.0, e.SafetyStockDays(95, 0, 14, 0, 0))
}

func TestEffectiveSafetyStock(t *testing.T) {
	// Promotion floors at the event minimum.
	assert.Equal(t, 80.0, EffectiveSafetyStock(50, 80, 60, true))
	assert.Equal(t, 90.0, EffectiveSafetyStock(90, 80, 60, true))

	// Without a promotion, presentation stock floors when larger.
	assert.Equal(t, 60.0, EffectiveSafetyStock(50, 80, 60, false))
	assert.Equal(t, 50.0, EffectiveSafetyStock(50, 80, 40, false))

	// Exactly one substitution: an active promo ignores presentation.
	assert.Equal(t, 70.0, EffectiveSafetyStock(50, 70, 100, true))
}

func TestOrderPoints(t *testing.T) {
	iop := ItemOrderPoint(10, 7, 30)
	assert.InDelta(t, 100.0, iop, 1e-9)

	vop := SourceOrderPoint(10, 7, 14, 30)
	assert.InDelta(t, 240.0, vop, 1e-9)
	assert.Greater(t, vop, iop)
}

func TestOrderUpToLevel(t *testing.T) {
	// Review cycle shorter than lead time: lead time drives the level.
	outl := OrderUpToLevel(10, 7, 3, 30)
	assert.InDelta(t, 100.0, outl, 1e-9)
	assert.GreaterOrEqual(t, outl, ItemOrderPoint(10, 7, 30))

	// Longer review cycle raises the level.
	outl = OrderUpToLevel(10, 7, 14, 30)
	assert.InDelta(t, 170.0, outl, 1e-9)
	assert.GreaterOrEqual(t, outl, ItemOrderPoint(10, 7, 30))
}

func TestSuggestedOrderQty(t *testing.T) {
	c := domain.OrderConstraints{BuyingMultiple: 12}

	// Need of 50 rounds up to the pack size.
	assert.Equal(t, 60.0, SuggestedOrderQty(150, 100, c))

	// Fully stocked means no order.
	assert.Equal(t, 0.0, SuggestedOrderQty(100, 120, c))
	assert.Equal(t, 0.0, SuggestedOrderQty(100, 100, c))
}

func TestSuggestedOrderQty_Constraints(t *testing.T) {
	// Item minimum lifts a small need.
	c := domain.OrderConstraints{MinQty: 24}
	assert.Equal(t, 24.0, SuggestedOrderQty(110, 100, c))

	// Item maximum caps a large need.
	c = domain.OrderConstraints{MaxQty: 40}
	assert.Equal(t, 40.0, SuggestedOrderQty(200, 100, c))

	// Below the vendor minimum nothing ships.
	c = domain.OrderConstraints{VendorMinQty: 100}
	assert.Equal(t, 0.0, SuggestedOrderQty(150, 100, c))

	// Vendor maximum is the final cap.
	c = domain.OrderConstraints{MinQty: 10, VendorMaxQty: 30}
	assert.Equal(t, 30.0, SuggestedOrderQty(200, 100, c))
}

func TestEconomicOrderQty(t *testing.T) {
	e := NewEngine(testSafetyStockConfig())

	// EOQ = sqrt(2 * 1000 * 50 / 0.25) = sqrt(400000)
	assert.InDelta(t, 632.455, e.EconomicOrderQty(1000, 50), 0.01)

	assert.Equal(t, 0.0, e.EconomicOrderQty(0, 50))
	assert.Equal(t, 0.0, e.EconomicOrderQty(1000, 0))
}

func TestForwardBuy(t *testing.T) {
	e := NewEngine(testSafetyStockConfig())

	// 70 units at 10 a day is 7 days of supply; the window tops the
	// order up to 60 days.
	assert.InDelta(t, 600.0, e.ForwardBuy(70, 10, domain.OrderConstraints{}), 1e-9)

	// The top-up rounds to the buying multiple.
	assert.InDelta(t, 70+540.0, e.ForwardBuy(70, 10, domain.OrderConstraints{BuyingMultiple: 27}), 1e-9)

	// Orders already covering the window, items without demand, and
	// empty orders pass through.
	assert.Equal(t, 700.0, e.ForwardBuy(700, 10, domain.OrderConstraints{}))
	assert.Equal(t, 70.0, e.ForwardBuy(70, 0, domain.OrderConstraints{}))
	assert.Equal(t, 0.0, e.ForwardBuy(0, 10, domain.OrderConstraints{}))
}

func TestForwardBuy_MinDaysFilter(t *testing.T) {
	cfg := testSafetyStockConfig()
	cfg.ForwardBuyMinDays = 30
	e := NewEngine(cfg)

	// A 58-day order would only gain 2 days, below the 30-day filter.
	assert.Equal(t, 580.0, e.ForwardBuy(580, 10, domain.OrderConstraints{}))

	// A 7-day order gains 53 days, clearing the filter.
	assert.InDelta(t, 600.0, e.ForwardBuy(70, 10, domain.OrderConstraints{}), 1e-9)
}

func TestEmpiricalAdjustment(t *testing.T) {
	e := NewEngine(testSafetyStockConfig())

	// Underperforming the goal grows safety stock.
	assert.InDelta(t, 105.0, e.EmpiricalAdjustment(100, 95, 90), 1e-9)

	// Overperforming shrinks it.
	assert.InDelta(t, 97.0, e.EmpiricalAdjustment(100, 95, 98), 1e-9)

	// The cap bounds a wild swing.
	assert.InDelta(t, 120.0, e.EmpiricalAdjustment(100, 95, 40), 1e-9)
	assert.InDelta(t, 80.0, e.EmpiricalAdjustment(100, 50, 100), 1e-9)
}
