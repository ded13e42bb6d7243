// internal/domain/models.go
package domain

import (
	"fmt"
	"time"
)

// Period identifies one demand bucket in a periodic calendar, e.g. period
// 3 of 13 in 2026. Index is 1-based.
type Period struct {
	Year  int `json:"year"`
	Index int `json:"index"`
}

func (p Period) String() string {
	return fmt.Sprintf("%d-P%02d", p.Year, p.Index)
}

// Before reports whether p precedes q in calendar order.
func (p Period) Before(q Period) bool {
	if p.Year != q.Year {
		return p.Year < q.Year
	}
	return p.Index < q.Index
}

// PeriodDemand is one bucket of recorded demand. Ignored buckets stay on
// record but are excluded from forecasting, e.g. a period distorted by a
// stockout or a one-off bulk sale.
type PeriodDemand struct {
	Period  Period  `json:"period"`
	Demand  float64 `json:"demand"`
	Ignored bool    `json:"ignored,omitempty"`
}

// ForecastState gates whether the reforecast touches an item.
type ForecastState string

const (
	ForecastNormal ForecastState = "NORMAL"
	ForecastFrozen ForecastState = "FROZEN"
)

// ItemForecast is the stored forecast for one item at one location. The
// base value is per period of the configured periodicity; weekly,
// quarterly and yearly views are derived from it on demand and never
// stored independently.
type ItemForecast struct {
	Base        float64       `json:"base"`
	MADP        float64       `json:"madp"`
	Track       float64       `json:"track"`
	State       ForecastState `json:"state"`
	FreezeUntil *time.Time    `json:"freeze_until,omitempty"`
	ProfileID   string        `json:"profile_id,omitempty"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Receipt is one purchase order receipt used for lead time analysis.
type Receipt struct {
	OrderDate    *time.Time `json:"order_date,omitempty"`
	ReceiptDate  *time.Time `json:"receipt_date,omitempty"`
	ExpectedDays float64    `json:"expected_days,omitempty"`
	Quantity     float64    `json:"quantity,omitempty"`
}

// LeadTimeSource names the level of the fallback chain that produced a
// lead time forecast.
type LeadTimeSource string

const (
	LeadTimeItemOverride    LeadTimeSource = "ITEM_OVERRIDE"
	LeadTimeReceiptHistory  LeadTimeSource = "RECEIPT_HISTORY"
	LeadTimeSupplierDefault LeadTimeSource = "SUPPLIER_DEFAULT"
	LeadTimeOrgDefault      LeadTimeSource = "ORG_DEFAULT"
)

// LeadTimeForecast is the resolved lead time for an item, tagged with
// its source so planners can audit how it was derived.
type LeadTimeForecast struct {
	Days        int            `json:"days"`
	VariancePct float64        `json:"variance_pct"`
	Source      LeadTimeSource `json:"source"`
}

// StockPosition is the on-hand picture used when sizing an order.
type StockPosition struct {
	OnHand    float64 `json:"on_hand"`
	OnOrder   float64 `json:"on_order"`
	BackOrder float64 `json:"back_order"`
	Reserved  float64 `json:"reserved"`
	Held      float64 `json:"held"`
}

// AvailableBalance is the quantity that counts against the order-up-to
// level: what we have plus what is coming, less committed stock.
func (s StockPosition) AvailableBalance() float64 {
	return s.OnHand + s.OnOrder - s.BackOrder - s.Reserved - s.Held
}

// OrderConstraints are the pack and vendor rules applied to a suggested
// order quantity. Zero values mean the constraint is absent.
type OrderConstraints struct {
	BuyingMultiple float64 `json:"buying_multiple,omitempty"`
	MinQty         float64 `json:"min_qty,omitempty"`
	MaxQty         float64 `json:"max_qty,omitempty"`
	VendorMinQty   float64 `json:"vendor_min_qty,omitempty"`
	VendorMaxQty   float64 `json:"vendor_max_qty,omitempty"`
}

// Item is the snapshot of one SKU/location that a period-end run reads
// and writes. It carries everything the engines need so a run never
// reaches outside its input.
type Item struct {
	SKU      string `json:"sku"`
	Location string `json:"location"`
	Supplier string `json:"supplier,omitempty"`

	Forecast ItemForecast   `json:"forecast"`
	History  []PeriodDemand `json:"history"`
	Receipts []Receipt      `json:"receipts,omitempty"`

	ServiceLevelGoal  float64 `json:"service_level_goal,omitempty"`
	LeadTimeOverride  *int    `json:"lead_time_override,omitempty"`
	SupplierLeadTime  *int    `json:"supplier_lead_time,omitempty"`
	ReviewCycleDays   float64 `json:"review_cycle_days,omitempty"`
	VendorCycleDays   float64 `json:"vendor_cycle_days,omitempty"`
	EventMinimum      float64 `json:"event_minimum,omitempty"`
	PresentationStock float64 `json:"presentation_stock,omitempty"`
	PromoActive       bool    `json:"promo_active,omitempty"`

	Stock       StockPosition    `json:"stock"`
	Constraints OrderConstraints `json:"constraints"`
}
