// Package model contains domain models passed between layers.
package model

// FeatureCount is the dimensionality of a FeatureSet.
const FeatureCount = 5

// FeatureNames lists the rating names in vector order.
var FeatureNames = [FeatureCount]string{"team", "traction", "market", "innovation", "financials"} //nolint:gochecknoglobals // fixed ordering

// FeatureSet holds the five qualitative ratings of a startup.
// Values are expected in [0,1] but are not validated.
type FeatureSet struct {
	Team       float64 `json:"team" koanf:"team"`
	Traction   float64 `json:"traction" koanf:"traction"`
	Market     float64 `json:"market" koanf:"market"`
	Innovation float64 `json:"innovation" koanf:"innovation"`
	Financials float64 `json:"financials" koanf:"financials"`
}

// Vector returns the ratings in FeatureNames order.
func (f FeatureSet) Vector() []float64 {
	return []float64{f.Team, f.Traction, f.Market, f.Innovation, f.Financials}
}

// FeatureSetFromVector is the inverse of Vector. Missing trailing values are zero.
func FeatureSetFromVector(v []float64) FeatureSet {
	var a [FeatureCount]float64
	copy(a[:], v)
	return FeatureSet{Team: a[0], Traction: a[1], Market: a[2], Innovation: a[3], Financials: a[4]}
}
