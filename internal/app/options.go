package service

import (
	"time"

	workerpool "github.com/okian/quantumcrowd/internal/adapters/mq/worker"
	"github.com/okian/quantumcrowd/internal/adapters/registry"
	"github.com/okian/quantumcrowd/internal/domain/kernel"
	"github.com/okian/quantumcrowd/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of scoring workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued prediction jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many webhook deliveries are remembered for replay suppression.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithJobHistorySize sets how many finished jobs stay queryable.
func WithJobHistorySize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.jobHistorySize = size
		}
	}
}

// WithKernel selects the similarity kernel.
func WithKernel(kind kernel.Kind) Option {
	return func(s *Service) {
		if kind != "" {
			s.kernelKind = kind
		}
	}
}

// WithFeatureMapReps sets the repetition count of the statevector feature map.
func WithFeatureMapReps(reps int) Option {
	return func(s *Service) {
		if reps > 0 {
			s.reps = reps
		}
	}
}

// WithShots sets the shot count reported for the statevector kernel.
func WithShots(shots int) Option {
	return func(s *Service) {
		if shots > 0 {
			s.shots = shots
		}
	}
}

// WithRBFGamma sets the RBF kernel bandwidth.
func WithRBFGamma(gamma float64) Option {
	return func(s *Service) {
		if gamma > 0 {
			s.gamma = gamma
		}
	}
}

// WithReferences replaces the reference archetypes.
func WithReferences(refs []kernel.Reference) Option {
	return func(s *Service) {
		if len(refs) > 0 {
			s.references = refs
		}
	}
}

// WithModelVersion sets the version stamped on every prediction.
func WithModelVersion(version string) Option {
	return func(s *Service) {
		if version != "" {
			s.modelVersion = version
		}
	}
}

// WithSeed sets the startup catalogue and the predictions computed at start.
func WithSeed(seed registry.Seed) Option {
	return func(s *Service) {
		if len(seed.Startups) > 0 {
			s.seed = seed
		}
	}
}

// WithScoringLatencyRange adds simulated backend latency to every scoring call.
func WithScoringLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(s *Service) {
		if minLatency >= 0 && maxLatency > minLatency {
			s.scoringMinLatency = minLatency
			s.scoringMaxLatency = maxLatency
		}
	}
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// withScorerWrapper decorates the scorer handed to the workers.
func withScorerWrapper(wrap func(workerpool.Scorer) workerpool.Scorer) Option {
	return func(s *Service) {
		s.wrapScorer = wrap
	}
}
