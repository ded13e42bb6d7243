// internal/safetystock/zscore.go
package safetystock

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// defaultZ backs an unusable service level goal; it corresponds to
// roughly a 95% service level.
const defaultZ = 1.65

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// ServiceLevelToZ converts a service level goal to the safety factor Z.
// The goal may arrive as a fraction (0.95) or a percentage (95); both
// are clamped to the configured floor and ceiling. Goals outside the
// open unit interval after normalization fall back to a safe default
// rather than failing the calculation.
func ServiceLevelToZ(goal, floorPct, ceilPct float64) float64 {
	p := normalizeServiceLevel(goal)
	if p <= 0 || p >= 1 {
		return defaultZ
	}

	if floor := floorPct / 100; p < floor {
		p = floor
	}
	if ceil := ceilPct / 100; p > ceil {
		p = ceil
	}
	return stdNormal.Quantile(p)
}

// ZToServiceLevel converts a safety factor back to the service level it
// achieves, as a percentage.
func ZToServiceLevel(z float64) float64 {
	return stdNormal.CDF(z) * 100
}

// normalizeServiceLevel maps both fraction and percentage inputs onto
// (0, 1). Values above 1 are treated as percentages.
func normalizeServiceLevel(goal float64) float64 {
	if goal > 1 {
		return goal / 100
	}
	return goal
}
