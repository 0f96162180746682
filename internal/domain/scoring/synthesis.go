package scoring

import (
	"math"

	"github.com/okian/quantumcrowd/internal/domain/kernel"
)

const (
	maxPercent     = 100
	neutralPercent = 50
)

// Synthesis is the pair of percentages derived from a similarity result.
type Synthesis struct {
	Prediction float64
	Confidence float64
}

// Synthesize turns high/low archetype similarities into a prediction and a
// confidence percentage. Missing or non-finite similarities count as zero and
// a zero total yields the neutral prediction of 50. Both outputs are clamped to
// [0, 100] and rounded to two decimals.
func Synthesize(sim kernel.Similarity) Synthesis {
	high := finite(sim[kernel.LabelHighSuccess])
	low := finite(sim[kernel.LabelLowSuccess])

	prediction := float64(neutralPercent)
	if total := high + low; total > 0 {
		prediction = maxPercent * high / total
	}
	confidence := math.Min(maxPercent, maxPercent*math.Abs(high-low))

	return Synthesis{
		Prediction: round2(clampPercent(prediction)),
		Confidence: round2(clampPercent(confidence)),
	}
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clampPercent(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(maxPercent, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
