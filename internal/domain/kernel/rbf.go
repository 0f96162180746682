package kernel

import (
	"fmt"
	"math"
)

const rbfBackend = "Classical RBF Kernel"

// RBF is the Gaussian kernel exp(-γ‖x−y‖²). It decreases strictly with
// Euclidean distance.
type RBF struct {
	gamma float64
}

// NewRBF returns an RBF kernel with bandwidth gamma.
func NewRBF(gamma float64) (*RBF, error) {
	if gamma <= 0 || math.IsNaN(gamma) || math.IsInf(gamma, 0) {
		return nil, fmt.Errorf("%w: gamma must be a positive finite number, got %v", ErrInvalidParameter, gamma)
	}
	return &RBF{gamma: gamma}, nil
}

// Kind implements Kernel.
func (k *RBF) Kind() Kind { return KindRBF }

// Validate implements Kernel.
func (k *RBF) Validate(dim int) error {
	if dim < 1 {
		return fmt.Errorf("%w: empty vector", ErrDimensionMismatch)
	}
	return nil
}

// Meta implements Kernel. A single exact evaluation per pair; depth is the
// vector length.
func (k *RBF) Meta(dim int) Meta {
	return Meta{CircuitDepth: dim, Backend: rbfBackend, Shots: 1}
}

// Evaluate implements Kernel.
func (k *RBF) Evaluate(x, y []float64) float64 {
	var d2 float64
	for i := range x {
		d := x[i] - y[i]
		d2 += d * d
	}
	return math.Exp(-k.gamma * d2)
}
