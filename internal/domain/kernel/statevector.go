package kernel

import (
	"fmt"
	"math"
)

const (
	maxQubits = 16

	statevectorBackend = "Statevector Simulator (exact)"
)

// Statevector evaluates a ZZ feature-map kernel by exact state simulation.
//
// Each of the reps layers applies a Hadamard to every qubit followed by the
// diagonal phase exp(i·φ(z)) where, for basis state z,
//
//	φ(z) = Σ_i 2·x_i·z_i + Σ_{i<j} 2·(π−x_i)(π−x_j)·(z_i ⊕ z_j)
//
// which is the full-entanglement ZZ map. k(x,y) = |⟨ψ(x)|ψ(y)⟩|². There is no
// measurement, so shots are only reported.
type Statevector struct {
	reps  int
	shots int
}

// NewStatevector returns a statevector kernel.
func NewStatevector(reps, shots int) (*Statevector, error) {
	if reps < 1 {
		return nil, fmt.Errorf("%w: reps must be >= 1, got %d", ErrInvalidParameter, reps)
	}
	if shots < 0 {
		return nil, fmt.Errorf("%w: shots must be >= 0, got %d", ErrInvalidParameter, shots)
	}
	return &Statevector{reps: reps, shots: shots}, nil
}

// Kind implements Kernel.
func (k *Statevector) Kind() Kind { return KindStatevector }

// Validate implements Kernel.
func (k *Statevector) Validate(dim int) error {
	if dim < 1 || dim > maxQubits {
		return fmt.Errorf("%w: statevector kernel supports 1..%d qubits, got %d", ErrDimensionMismatch, maxQubits, dim)
	}
	return nil
}

// Meta implements Kernel. Depth counts one Hadamard layer, one single-qubit
// phase layer and a CX-P-CX triple per qubit pair for every repetition.
func (k *Statevector) Meta(dim int) Meta {
	pairs := dim * (dim - 1) / 2
	return Meta{
		CircuitDepth: k.reps * (2 + 3*pairs),
		Backend:      statevectorBackend,
		Shots:        k.shots,
	}
}

// Evaluate implements Kernel.
func (k *Statevector) Evaluate(x, y []float64) float64 {
	return Fidelity(k.State(x), k.State(y))
}

// State returns the feature-map state of x.
func (k *Statevector) State(x []float64) []complex128 {
	n := len(x)
	psi := make([]complex128, 1<<n)
	psi[0] = 1

	phase := make([]complex128, len(psi))
	for z := range phase {
		p := zzPhase(x, z)
		phase[z] = complex(math.Cos(p), math.Sin(p))
	}

	for r := 0; r < k.reps; r++ {
		hadamardAll(psi)
		for z := range psi {
			psi[z] *= phase[z]
		}
	}
	return psi
}

// Fidelity returns |⟨a|b⟩|² clamped to [0, 1].
func Fidelity(a, b []complex128) float64 {
	var re, im float64
	for z := range a {
		ar, ai := real(a[z]), imag(a[z])
		br, bi := real(b[z]), imag(b[z])
		re += ar*br + ai*bi
		im += ar*bi - ai*br
	}
	f := re*re + im*im
	return math.Max(0, math.Min(1, f))
}

func zzPhase(x []float64, z int) float64 {
	var p float64
	for i := range x {
		if z>>i&1 == 1 {
			p += 2 * x[i]
		}
	}
	for i := 0; i < len(x); i++ {
		for j := i + 1; j < len(x); j++ {
			if (z>>i^z>>j)&1 == 1 {
				p += 2 * (math.Pi - x[i]) * (math.Pi - x[j])
			}
		}
	}
	return p
}

// hadamardAll applies H to every qubit in place (fast Walsh–Hadamard transform).
func hadamardAll(psi []complex128) {
	norm := complex(1/math.Sqrt2, 0)
	for h := 1; h < len(psi); h <<= 1 {
		for i := 0; i < len(psi); i += h << 1 {
			for j := i; j < i+h; j++ {
				a, b := psi[j], psi[j+h]
				psi[j] = (a + b) * norm
				psi[j+h] = (a - b) * norm
			}
		}
	}
}
