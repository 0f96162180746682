package smoke

import (
	"math"
	"math/rand/v2"

	"github.com/okian/quantumcrowd/internal/domain/model"
)

// Request is one planned prediction request.
type Request struct {
	StartupID int              `json:"startupId"`
	Features  model.FeatureSet `json:"features"`
}

// Generate plans n requests spread over the given startups. The same seed
// always yields the same plan.
func Generate(seed int64, n int, startups []model.Startup) []Request {
	if n <= 0 || len(startups) == 0 {
		return nil
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)) //nolint:gosec // test data

	out := make([]Request, n)
	for i := range out {
		v := make([]float64, model.FeatureCount)
		for j := range v {
			v[j] = math.Round(rng.Float64()*100) / 100
		}
		out[i] = Request{
			StartupID: startups[rng.IntN(len(startups))].ID,
			Features:  model.FeatureSetFromVector(v),
		}
	}
	return out
}
