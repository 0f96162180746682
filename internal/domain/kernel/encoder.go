package kernel

import (
	"math"

	"github.com/okian/quantumcrowd/internal/domain/model"
)

// Encode maps a FeatureSet into the kernel embedding space.
func Encode(f model.FeatureSet) []float64 {
	return EncodeVector(f.Vector())
}

// EncodeVector scales v by 2π divided by its largest magnitude, floored at 1.
// Non-negative inputs land in [0, 2π]. An all-zero vector stays all-zero and a
// single dominant value compresses the remaining components proportionally.
func EncodeVector(v []float64) []float64 {
	peak := 1.0
	for _, x := range v {
		if a := math.Abs(x); a > peak {
			peak = a
		}
	}

	scale := 2 * math.Pi / peak
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x * scale
	}
	return out
}
