package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/quantumcrowd/internal/smoke"
	"github.com/okian/quantumcrowd/pkg/logger"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := smoke.DefaultConfig()
	var (
		logFormat  string
		runTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "predict-smoke",
		Short: "Drive a QuantumCrowd server end to end",
		Long: `Submit predictions to a running QuantumCrowd server, wait for the scoring
jobs and verify the stored records.

Examples:
  predict-smoke
  predict-smoke --url http://localhost:8080 --predictions 500 --concurrency 16
  predict-smoke --rate 5 --seed 42 --output reports/run.json`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.InitWithOptions(logger.WithFormat(logFormat)); err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}
			defer func() { _ = logger.Sync() }()
			if cfg.Verbose {
				_ = logger.SetLevelString("debug")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, runTimeout)
			defer cancel()

			runner, err := smoke.NewRunner(cfg, logger.Get().Named("smoke"))
			if err != nil {
				return err
			}
			stats, err := runner.Run(ctx)
			if stats != nil {
				printSummary(cmd, stats)
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "base URL of the service")
	f.IntVarP(&cfg.Predictions, "predictions", "n", cfg.Predictions, "number of predictions to request")
	f.IntVarP(&cfg.Concurrency, "concurrency", "c", cfg.Concurrency, "maximum requests in flight")
	f.Float64Var(&cfg.Rate, "rate", cfg.Rate, "requests per second (0 disables pacing)")
	f.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-request HTTP timeout")
	f.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "delay between job status polls")
	f.DurationVar(&cfg.PollTimeout, "poll-timeout", cfg.PollTimeout, "maximum wait for all jobs")
	f.Int64Var(&cfg.Seed, "seed", 0, "feature generation seed (0 picks one)")
	f.StringVarP(&cfg.OutputFile, "output", "o", "", "write a JSON report to this file")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "log every request")
	f.StringVar(&logFormat, "log-format", logger.FormatText, "log format: text or json")
	f.DurationVar(&runTimeout, "run-timeout", defaultRunTimeout, "upper bound on the whole run")

	return cmd
}

func printSummary(cmd *cobra.Command, s *smoke.Stats) {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "run %s\n", s.RunID)
	_, _ = fmt.Fprintf(out, "  startups:          %d\n", s.Startups)
	_, _ = fmt.Fprintf(out, "  submitted:         %d\n", s.Submitted)
	_, _ = fmt.Fprintf(out, "  accepted:          %d\n", s.Accepted)
	_, _ = fmt.Fprintf(out, "  throttled:         %d\n", s.Throttled)
	_, _ = fmt.Fprintf(out, "  rejected:          %d\n", s.Rejected)
	_, _ = fmt.Fprintf(out, "  jobs completed:    %d\n", s.JobsCompleted)
	_, _ = fmt.Fprintf(out, "  jobs failed:       %d\n", s.JobsFailed)
	_, _ = fmt.Fprintf(out, "  records verified:  %d\n", s.RecordsVerified)
	_, _ = fmt.Fprintf(out, "  duration:          %s\n", s.Duration.Round(time.Millisecond))
	for _, e := range s.VerificationErrors {
		_, _ = fmt.Fprintf(out, "  invalid: %s\n", e)
	}
}
