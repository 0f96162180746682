// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) initializer to build a Config with defaults.
// - Load layers a YAML file and QCROWD_* environment variables on top.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/okian/quantumcrowd/internal/domain/kernel"
	"github.com/okian/quantumcrowd/pkg/logger"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory prediction job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of scoring workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the webhook replay cache.
	DedupeSize int `koanf:"dedupe_size"`

	// JobHistorySize bounds how many finished jobs stay queryable.
	JobHistorySize int `koanf:"job_history_size"`

	// Kernel selects the similarity strategy: statevector or rbf.
	Kernel string `koanf:"kernel"`

	// FeatureMapReps is the number of feature-map repetitions (statevector).
	FeatureMapReps int `koanf:"feature_map_reps"`

	// RBFGamma is the RBF kernel width parameter.
	RBFGamma float64 `koanf:"rbf_gamma"`

	// Shots is reported in prediction metadata.
	Shots int `koanf:"shots"`

	// ModelVersion is stamped on every prediction.
	ModelVersion string `koanf:"model_version"`

	// SeedFile optionally points to a YAML file with startups and predictions to preload.
	SeedFile string `koanf:"seed_file"`

	// ScoringLatencyMinMS and ScoringLatencyMaxMS simulate external model latency.
	// Both zero disables the simulation.
	ScoringLatencyMinMS int `koanf:"scoring_latency_min_ms"`
	ScoringLatencyMaxMS int `koanf:"scoring_latency_max_ms"`

	// PredictRatePerSec and PredictBurst limit POST /api/predict per client IP.
	// A rate of zero disables limiting.
	PredictRatePerSec float64 `koanf:"predict_rate_per_sec"`
	PredictBurst      int     `koanf:"predict_burst"`

	// TrustProxyHeaders keys the predict limit by X-Forwarded-For / X-Real-IP.
	// Enable only behind a proxy that overwrites these headers.
	TrustProxyHeaders bool `koanf:"trust_proxy_headers"`

	// CORSAllowedOrigins lists browser origins allowed to call the API; "*" allows any.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// ShutdownTimeout bounds graceful shutdown, including worker drain.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          logger.FormatText,
		Addr:               ":8080",
		QueueSize:          10_000,
		WorkerCount:        runtime.NumCPU() * 2,
		DedupeSize:         10_000,
		JobHistorySize:     10_000,
		Kernel:             string(kernel.KindStatevector),
		FeatureMapReps:     kernel.DefaultReps,
		RBFGamma:           kernel.DefaultGamma,
		Shots:              kernel.DefaultShots,
		ModelVersion:       "QML-v2.0",
		PredictRatePerSec:  10,
		PredictBurst:       20,
		CORSAllowedOrigins: []string{"*"},
		ShutdownTimeout:    10 * time.Second,
	}
}

// Validate reports the first invalid setting wrapped with ErrInvalidConfig.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	switch {
	case strings.TrimSpace(c.Addr) == "":
		return invalid("addr must not be empty")
	case c.FeatureMapReps < 1:
		return invalid("feature_map_reps must be at least 1, got %d", c.FeatureMapReps)
	case c.RBFGamma <= 0:
		return invalid("rbf_gamma must be positive, got %g", c.RBFGamma)
	case c.Shots < 1:
		return invalid("shots must be at least 1, got %d", c.Shots)
	case c.ScoringLatencyMinMS < 0 || c.ScoringLatencyMaxMS < c.ScoringLatencyMinMS:
		return invalid("scoring latency range [%d,%d]ms is invalid", c.ScoringLatencyMinMS, c.ScoringLatencyMaxMS)
	case c.PredictRatePerSec < 0:
		return invalid("predict_rate_per_sec must not be negative")
	}
	if _, err := kernel.ParseKind(c.Kernel); err != nil {
		return invalid("kernel: %v", err)
	}
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case logger.FormatText, logger.FormatJSON:
	default:
		return invalid("unknown log_format %q", c.LogFormat)
	}
	return nil
}

// KernelKind returns the parsed kernel strategy. Call after Validate.
func (c *Config) KernelKind() kernel.Kind {
	k, _ := kernel.ParseKind(c.Kernel)
	return k
}

// ScoringLatency returns the simulated scoring latency bounds.
func (c *Config) ScoringLatency() (time.Duration, time.Duration) {
	return time.Duration(c.ScoringLatencyMinMS) * time.Millisecond,
		time.Duration(c.ScoringLatencyMaxMS) * time.Millisecond
}
