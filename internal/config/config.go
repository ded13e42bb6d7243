// internal/config/config.go
package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Forecast    ForecastConfig
	LeadTime    LeadTimeConfig
	SafetyStock SafetyStockConfig
	Seasonal    SeasonalConfig
	Batch       BatchConfig
}

// ForecastConfig tunes the adaptive smoothing reforecast.
type ForecastConfig struct {
	Periodicity    int     // periods per year: 13 (4-week) or 52 (weekly)
	WindowPeriods  int     // history window for MADP / tracking signal
	AlphaFactor    float64 // 0-10 scale applied to the track weight
	MaxTrackWeight float64 // upper clamp on the smoothing weight
	DemandFilterHi float64 // spike threshold, in MADs above forecast
	DemandFilterLo float64 // spike threshold, in MADs below forecast
	TrackingLimit  float64 // |tracking signal| beyond which an exception fires
	DemandLimit    float64 // units below which an item is treated as slow moving

	// UpdateFrequencyImpact multiplies the expected zero-period count to
	// form the forced-reforecast threshold for intermittent items.
	UpdateFrequencyImpact float64
}

// LeadTimeConfig tunes lead time analysis and the fallback chain.
type LeadTimeConfig struct {
	DefaultDays            int     // org-level default when nothing else resolves
	DefaultVariancePct     float64 // org-level default variance
	SupplierVariancePct    float64 // default variance for supplier quotes
	MinSamples             int     // receipts required to trust history
	MinVariancePct         float64 // floor on history-derived variance
	ExpeditedRatio         float64 // actual/expected below this is expedited
	DelayedRatio           float64 // actual/expected above this is delayed
	TrendThreshold         float64 // |slope| as a fraction of mean lead time
	SeasonalRangeThreshold float64 // monthly index range for seasonality
}

type SafetyStockConfig struct {
	DefaultServiceLevel float64 // percent
	ServiceLevelFloor   float64 // percent
	ServiceLevelCeil    float64 // percent
	MaxAdjustmentPct    float64 // cap on empirical service adjustments
	CarryingCostRate    float64 // annual inventory carrying cost, percent
	ForwardBuyMinDays   float64 // smallest forward buy worth adding to an order
	ForwardBuyMaxDays   float64 // days of supply a forward buy may reach
}

type SeasonalConfig struct {
	RangeThreshold  float64 // index spread required to call a pattern seasonal
	SmoothingFactor float64 // neighbor smoothing weight
	MinSimilarity   float64 // Pearson floor for profile assignment
	YearDecay       float64 // weight decay per year of age in composites
	ZeroIndexFloor  float64 // floor applied to zero-demand period indices
}

type BatchConfig struct {
	Workers    int
	ForwardBuy bool // top suggested orders up to the forward-buy window
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("FORECAST_PERIODICITY", 13)
		viper.SetDefault("FORECAST_WINDOW_PERIODS", 12)
		viper.SetDefault("FORECAST_ALPHA_FACTOR", 10.0)
		viper.SetDefault("FORECAST_MAX_TRACK_WEIGHT", 1.0)
		viper.SetDefault("FORECAST_DEMAND_FILTER_HI", 5.0)
		viper.SetDefault("FORECAST_DEMAND_FILTER_LO", 3.0)
		viper.SetDefault("FORECAST_TRACKING_LIMIT", 0.55)
		viper.SetDefault("FORECAST_DEMAND_LIMIT", 2.0)
		viper.SetDefault("FORECAST_UPDATE_FREQUENCY_IMPACT", 2.0)
		viper.SetDefault("LEADTIME_DEFAULT_DAYS", 7)
		viper.SetDefault("LEADTIME_DEFAULT_VARIANCE_PCT", 0.0)
		viper.SetDefault("LEADTIME_SUPPLIER_VARIANCE_PCT", 10.0)
		viper.SetDefault("LEADTIME_MIN_SAMPLES", 3)
		viper.SetDefault("LEADTIME_MIN_VARIANCE_PCT", 5.0)
		viper.SetDefault("LEADTIME_EXPEDITED_RATIO", 0.5)
		viper.SetDefault("LEADTIME_DELAYED_RATIO", 1.5)
		viper.SetDefault("LEADTIME_TREND_THRESHOLD", 0.1)
		viper.SetDefault("LEADTIME_SEASONAL_RANGE_THRESHOLD", 0.3)
		viper.SetDefault("SS_DEFAULT_SERVICE_LEVEL", 95.0)
		viper.SetDefault("SS_SERVICE_LEVEL_FLOOR", 50.0)
		viper.SetDefault("SS_SERVICE_LEVEL_CEIL", 99.99)
		viper.SetDefault("SS_MAX_ADJUSTMENT_PCT", 20.0)
		viper.SetDefault("SS_CARRYING_COST_RATE", 25.0)
		viper.SetDefault("SS_FORWARD_BUY_MIN_DAYS", 0.0)
		viper.SetDefault("SS_FORWARD_BUY_MAX_DAYS", 60.0)
		viper.SetDefault("SEASONAL_RANGE_THRESHOLD", 0.3)
		viper.SetDefault("SEASONAL_SMOOTHING_FACTOR", 0.3)
		viper.SetDefault("SEASONAL_MIN_SIMILARITY", 0.7)
		viper.SetDefault("SEASONAL_YEAR_DECAY", 0.7)
		viper.SetDefault("SEASONAL_ZERO_INDEX_FLOOR", 0.1)
		viper.SetDefault("BATCH_WORKERS", 8)
		viper.SetDefault("BATCH_FORWARD_BUY", false)

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Forecast: ForecastConfig{
				Periodicity:           viper.GetInt("FORECAST_PERIODICITY"),
				WindowPeriods:         viper.GetInt("FORECAST_WINDOW_PERIODS"),
				AlphaFactor:           viper.GetFloat64("FORECAST_ALPHA_FACTOR"),
				MaxTrackWeight:        viper.GetFloat64("FORECAST_MAX_TRACK_WEIGHT"),
				DemandFilterHi:        viper.GetFloat64("FORECAST_DEMAND_FILTER_HI"),
				DemandFilterLo:        viper.GetFloat64("FORECAST_DEMAND_FILTER_LO"),
				TrackingLimit:         viper.GetFloat64("FORECAST_TRACKING_LIMIT"),
				DemandLimit:           viper.GetFloat64("FORECAST_DEMAND_LIMIT"),
				UpdateFrequencyImpact: viper.GetFloat64("FORECAST_UPDATE_FREQUENCY_IMPACT"),
			},
			LeadTime: LeadTimeConfig{
				DefaultDays:            viper.GetInt("LEADTIME_DEFAULT_DAYS"),
				DefaultVariancePct:     viper.GetFloat64("LEADTIME_DEFAULT_VARIANCE_PCT"),
				SupplierVariancePct:    viper.GetFloat64("LEADTIME_SUPPLIER_VARIANCE_PCT"),
				MinSamples:             viper.GetInt("LEADTIME_MIN_SAMPLES"),
				MinVariancePct:         viper.GetFloat64("LEADTIME_MIN_VARIANCE_PCT"),
				ExpeditedRatio:         viper.GetFloat64("LEADTIME_EXPEDITED_RATIO"),
				DelayedRatio:           viper.GetFloat64("LEADTIME_DELAYED_RATIO"),
				TrendThreshold:         viper.GetFloat64("LEADTIME_TREND_THRESHOLD"),
				SeasonalRangeThreshold: viper.GetFloat64("LEADTIME_SEASONAL_RANGE_THRESHOLD"),
			},
			SafetyStock: SafetyStockConfig{
				DefaultServiceLevel: viper.GetFloat64("SS_DEFAULT_SERVICE_LEVEL"),
				ServiceLevelFloor:   viper.GetFloat64("SS_SERVICE_LEVEL_FLOOR"),
				ServiceLevelCeil:    viper.GetFloat64("SS_SERVICE_LEVEL_CEIL"),
				MaxAdjustmentPct:    viper.GetFloat64("SS_MAX_ADJUSTMENT_PCT"),
				CarryingCostRate:    viper.GetFloat64("SS_CARRYING_COST_RATE"),
				ForwardBuyMinDays:   viper.GetFloat64("SS_FORWARD_BUY_MIN_DAYS"),
				ForwardBuyMaxDays:   viper.GetFloat64("SS_FORWARD_BUY_MAX_DAYS"),
			},
			Seasonal: SeasonalConfig{
				RangeThreshold:  viper.GetFloat64("SEASONAL_RANGE_THRESHOLD"),
				SmoothingFactor: viper.GetFloat64("SEASONAL_SMOOTHING_FACTOR"),
				MinSimilarity:   viper.GetFloat64("SEASONAL_MIN_SIMILARITY"),
				YearDecay:       viper.GetFloat64("SEASONAL_YEAR_DECAY"),
				ZeroIndexFloor:  viper.GetFloat64("SEASONAL_ZERO_INDEX_FLOOR"),
			},
			Batch: BatchConfig{
				Workers:    viper.GetInt("BATCH_WORKERS"),
				ForwardBuy: viper.GetBool("BATCH_FORWARD_BUY"),
			},
		}
	})

	return instance
}
