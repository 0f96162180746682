// Package scoring turns a startup's feature ratings into a prediction using
// the kernel similarity engine.
package scoring

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/quantumcrowd/internal/domain/kernel"
	"github.com/okian/quantumcrowd/internal/domain/model"
	"github.com/okian/quantumcrowd/pkg/metrics"
)

const defaultRandomSeed = 42

// Option applies a configuration option to the KernelScorer.
type Option func(*KernelScorer)

// WithLatencyRange adds a simulated backend latency drawn from [minLatency, maxLatency)
// before every evaluation. Disabled by default.
func WithLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(s *KernelScorer) {
		if minLatency >= 0 && maxLatency > minLatency {
			s.minLatency = minLatency
			s.maxLatency = maxLatency
		}
	}
}

// Input abstracts the job fields needed for scoring.
type Input struct {
	StartupID int
	Features  model.FeatureSet
}

// Result contains the computed prediction for a startup.
type Result struct {
	StartupID  int
	Prediction float64
	Confidence float64
	Breakdown  model.FeatureSet
	Similarity kernel.Similarity
	Meta       kernel.Meta
}

// Scorer computes a prediction from an input.
type Scorer interface {
	// Score computes a prediction, honoring ctx for cancellation.
	Score(ctx context.Context, in Input) (Result, error)
}

// KernelScorer implements Scorer with Encode, Engine.Similarity and Synthesize.
type KernelScorer struct {
	engine *kernel.Engine

	// Simulated latency range
	minLatency time.Duration
	maxLatency time.Duration
	rngMu      sync.Mutex
	rng        *rand.Rand
}

// NewKernelScorer creates a scorer bound to engine.
func NewKernelScorer(engine *kernel.Engine, opts ...Option) (*KernelScorer, error) {
	if engine == nil {
		return nil, fmt.Errorf("kernel scorer: %w", kernel.ErrNoReferences)
	}

	s := &KernelScorer{
		engine: engine,
		rng:    rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // latency jitter only
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Score computes a prediction for the given input.
func (s *KernelScorer) Score(ctx context.Context, in Input) (Result, error) {
	start := time.Now()

	if err := s.simulateLatency(ctx); err != nil {
		return Result{}, err
	}

	sim, meta, err := s.engine.Similarity(ctx, kernel.Encode(in.Features))
	if err != nil {
		return Result{}, fmt.Errorf("similarity for startup %d: %w", in.StartupID, err)
	}
	metrics.RecordKernelLatency(string(s.engine.Kernel().Kind()), float64(meta.ExecutionTime.Nanoseconds())/1e6)

	syn := Synthesize(sim)
	metrics.RecordScoringLatency(float64(time.Since(start).Nanoseconds()) / 1e6)

	return Result{
		StartupID:  in.StartupID,
		Prediction: syn.Prediction,
		Confidence: syn.Confidence,
		Breakdown:  in.Features,
		Similarity: sim,
		Meta:       meta,
	}, nil
}

func (s *KernelScorer) simulateLatency(ctx context.Context) error {
	if s.maxLatency <= 0 {
		return ctx.Err()
	}

	s.rngMu.Lock()
	latency := s.minLatency + time.Duration(s.rng.Int63n(int64(s.maxLatency-s.minLatency)))
	s.rngMu.Unlock()

	timer := time.NewTimer(latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
