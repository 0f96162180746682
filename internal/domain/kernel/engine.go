package kernel

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/quantumcrowd/internal/domain/model"
)

// Reference archetype labels.
const (
	LabelHighSuccess = "high_success"
	LabelLowSuccess  = "low_success"
)

// Reference is a labeled archetype FeatureSet.
type Reference struct {
	Label    string
	Features model.FeatureSet
}

// DefaultReferences returns the canonical high- and low-success archetypes.
func DefaultReferences() []Reference {
	return []Reference{
		{Label: LabelHighSuccess, Features: model.FeatureSet{Team: 0.9, Traction: 0.8, Market: 0.7, Innovation: 0.9, Financials: 0.8}},
		{Label: LabelLowSuccess, Features: model.FeatureSet{Team: 0.3, Traction: 0.2, Market: 0.4, Innovation: 0.3, Financials: 0.2}},
	}
}

// Similarity maps reference labels to kernel values.
type Similarity map[string]float64

// Engine compares encoded queries against a fixed set of encoded references.
// It is immutable after construction and safe for concurrent use.
type Engine struct {
	kernel Kernel
	labels []string
	refs   [][]float64
	dim    int
}

// NewEngine encodes refs once and binds them to k.
func NewEngine(k Kernel, refs []Reference) (*Engine, error) {
	if len(refs) == 0 {
		return nil, ErrNoReferences
	}

	e := &Engine{
		kernel: k,
		labels: make([]string, 0, len(refs)),
		refs:   make([][]float64, 0, len(refs)),
	}
	seen := make(map[string]struct{}, len(refs))
	for _, r := range refs {
		if _, dup := seen[r.Label]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateReference, r.Label)
		}
		seen[r.Label] = struct{}{}
		e.labels = append(e.labels, r.Label)
		e.refs = append(e.refs, Encode(r.Features))
	}

	e.dim = len(e.refs[0])
	if err := k.Validate(e.dim); err != nil {
		return nil, err
	}
	return e, nil
}

// Kernel returns the bound kernel.
func (e *Engine) Kernel() Kernel { return e.kernel }

// Similarity evaluates the kernel between query and every reference.
// ctx is checked between references.
func (e *Engine) Similarity(ctx context.Context, query []float64) (Similarity, Meta, error) {
	if len(query) != e.dim {
		return nil, Meta{}, fmt.Errorf("%w: query has %d components, references have %d", ErrDimensionMismatch, len(query), e.dim)
	}

	start := time.Now()
	out := make(Similarity, len(e.refs))
	for i, ref := range e.refs {
		if err := ctx.Err(); err != nil {
			return nil, Meta{}, fmt.Errorf("kernel evaluation interrupted: %w", err)
		}
		out[e.labels[i]] = e.kernel.Evaluate(query, ref)
	}

	meta := e.kernel.Meta(e.dim)
	meta.ExecutionTime = time.Since(start)
	return out, meta, nil
}
