// Package kernel implements the feature encoder and the kernel similarity
// engine that compares an encoded query against labeled reference vectors.
//
// Every Kernel is deterministic: the same pair of inputs always yields the same
// value. Kernels are symmetric and reach their maximum of 1 on identical inputs.
package kernel

import (
	"fmt"
	"strings"
	"time"
)

// Kind names a kernel strategy.
type Kind string

// Supported kernel strategies.
const (
	KindStatevector Kind = "statevector"
	KindRBF         Kind = "rbf"
)

// ParseKind validates a configured kernel name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindStatevector, KindRBF:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Kernel is a similarity function between two encoded vectors of equal length.
type Kernel interface {
	Kind() Kind
	// Evaluate returns k(x, y) in [0, 1].
	Evaluate(x, y []float64) float64
	// Validate reports whether vectors of length dim can be evaluated.
	Validate(dim int) error
	// Meta describes the computation for vectors of length dim.
	Meta(dim int) Meta
}

// Meta is execution metadata reported alongside similarities. It never affects
// the numeric result.
type Meta struct {
	CircuitDepth  int
	ExecutionTime time.Duration
	Backend       string
	Shots         int
}

// New builds a kernel from its kind using opts for tunables.
func New(kind Kind, opts ...Option) (Kernel, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	switch kind {
	case KindStatevector:
		return NewStatevector(o.reps, o.shots)
	case KindRBF:
		return NewRBF(o.gamma)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
