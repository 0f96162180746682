package kernel

// Default tunables.
const (
	DefaultReps  = 2
	DefaultShots = 1024
	DefaultGamma = 0.1
)

type options struct {
	reps  int
	shots int
	gamma float64
}

func defaultOptions() options {
	return options{reps: DefaultReps, shots: DefaultShots, gamma: DefaultGamma}
}

// Option configures New.
type Option func(*options)

// WithReps sets the feature-map repetition count of the statevector kernel.
func WithReps(reps int) Option {
	return func(o *options) {
		if reps > 0 {
			o.reps = reps
		}
	}
}

// WithShots sets the shot count reported by the statevector kernel.
func WithShots(shots int) Option {
	return func(o *options) {
		if shots > 0 {
			o.shots = shots
		}
	}
}

// WithGamma sets the RBF bandwidth.
func WithGamma(gamma float64) Option {
	return func(o *options) {
		if gamma > 0 {
			o.gamma = gamma
		}
	}
}
