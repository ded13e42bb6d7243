// internal/seasonal/profile.go
package seasonal

// Profile is a set of period indices averaging 1.0 that describes how
// demand distributes across the year. Index 0 of Indices holds period 1.
type Profile struct {
	ID      string    `json:"id"`
	Indices []float64 `json:"indices"`
}

func NewProfile(id string, indices []float64) *Profile {
	return &Profile{ID: id, Indices: indices}
}

// IndexFor returns the index for a 1-based period. A nil profile or a
// period outside the profile reads as non-seasonal.
func (p *Profile) IndexFor(periodIndex int) float64 {
	if p == nil || periodIndex < 1 || periodIndex > len(p.Indices) {
		return 1
	}
	return p.Indices[periodIndex-1]
}

// Apply reseasonalizes a level value into the given period.
func (p *Profile) Apply(base float64, periodIndex int) float64 {
	return base * p.IndexFor(periodIndex)
}

// Deseasonalize converts an observed value back to level terms.
// Degenerate indices pass the value through.
func (p *Profile) Deseasonalize(value float64, periodIndex int) float64 {
	idx := p.IndexFor(periodIndex)
	if idx <= 0 {
		return value
	}
	return value / idx
}

// Pattern exposes the profile as a period-to-index map, the shape the
// similarity scoring works over.
func (p *Profile) Pattern() map[int]float64 {
	if p == nil {
		return nil
	}
	pattern := make(map[int]float64, len(p.Indices))
	for i, idx := range p.Indices {
		pattern[i+1] = idx
	}
	return pattern
}

// SwitchProfile re-expresses a seasonal forecast under a new profile:
// back to level terms with the old indices, then into the new ones. The
// level forecast itself is unchanged.
func SwitchProfile(value float64, old, next *Profile, periodIndex int) float64 {
	return next.Apply(old.Deseasonalize(value, periodIndex), periodIndex)
}
