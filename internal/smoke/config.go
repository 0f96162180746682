// Package smoke drives a running QuantumCrowd server end to end: it submits
// predictions, waits for the jobs to finish and checks the stored records.
package smoke

import (
	"errors"
	"time"
)

// Defaults used by the CLI.
const (
	DefaultBaseURL      = "http://localhost:8080"
	DefaultPredictions  = 100
	DefaultConcurrency  = 8
	DefaultRate         = 50
	DefaultTimeout      = 10 * time.Second
	DefaultPollInterval = 100 * time.Millisecond
	DefaultPollTimeout  = 2 * time.Minute
)

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Predictions  int           // Number of predictions to request
	Concurrency  int           // Maximum requests in flight
	Rate         float64       // Requests per second; zero or less means unpaced
	Timeout      time.Duration // Per-request HTTP timeout
	PollInterval time.Duration // Delay between job status polls
	PollTimeout  time.Duration // Upper bound on waiting for all jobs
	Seed         int64         // Seed for feature generation; zero picks a random one
	OutputFile   string        // Optional JSON report path
	Verbose      bool          // Log every request
}

// DefaultConfig returns a Config with the CLI defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:      DefaultBaseURL,
		Predictions:  DefaultPredictions,
		Concurrency:  DefaultConcurrency,
		Rate:         DefaultRate,
		Timeout:      DefaultTimeout,
		PollInterval: DefaultPollInterval,
		PollTimeout:  DefaultPollTimeout,
	}
}

// Validate rejects configurations that cannot run.
func (c Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return errors.New("base url must not be empty")
	case c.Predictions < 1:
		return errors.New("predictions must be at least 1")
	case c.Concurrency < 1:
		return errors.New("concurrency must be at least 1")
	case c.Timeout <= 0:
		return errors.New("timeout must be positive")
	case c.PollInterval <= 0:
		return errors.New("poll interval must be positive")
	}
	return nil
}

// Stats summarises a run.
type Stats struct {
	RunID              string        `json:"runId"`
	Startups           int           `json:"startups"`
	Submitted          int           `json:"submitted"`
	Accepted           int           `json:"accepted"`
	Throttled          int           `json:"throttled"`
	Rejected           int           `json:"rejected"`
	JobsCompleted      int           `json:"jobsCompleted"`
	JobsFailed         int           `json:"jobsFailed"`
	RecordsVerified    int           `json:"recordsVerified"`
	VerificationErrors []string      `json:"verificationErrors,omitempty"`
	StartTime          time.Time     `json:"startTime"`
	Duration           time.Duration `json:"duration"`
}
