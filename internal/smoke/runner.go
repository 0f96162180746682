package smoke

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/okian/quantumcrowd/internal/domain/model"
	"github.com/okian/quantumcrowd/pkg/logger"
)

const (
	reportFilePermission = 0o600
	directoryPermission  = 0o750
)

// Runner executes smoke runs against one server.
type Runner struct {
	cfg     Config
	client  *Client
	limiter *rate.Limiter
	log     logger.Logger
}

// NewRunner validates cfg and prepares a runner.
func NewRunner(cfg Config, log logger.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Get().Named("smoke")
	}
	r := &Runner{cfg: cfg, client: NewClient(cfg.BaseURL, cfg.Timeout), log: log}
	if cfg.Rate > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Concurrency)
	}
	return r, nil
}

// Run performs a complete smoke run. Stats are returned even when the run fails
// after submission so callers can report partial progress.
func (r *Runner) Run(ctx context.Context) (*Stats, error) {
	stats := &Stats{RunID: uuid.NewString(), StartTime: time.Now()}
	defer func() { stats.Duration = time.Since(stats.StartTime) }()

	r.log.Info(ctx, "starting smoke run",
		logger.String("runId", stats.RunID),
		logger.String("baseURL", r.cfg.BaseURL),
		logger.Int("predictions", r.cfg.Predictions),
		logger.Int("concurrency", r.cfg.Concurrency),
		logger.Float64("rate", r.cfg.Rate),
	)

	if err := r.client.Health(ctx); err != nil {
		return stats, err
	}
	startups, err := r.client.Startups(ctx)
	if err != nil {
		return stats, fmt.Errorf("list startups: %w", err)
	}
	if len(startups) == 0 {
		return stats, ErrNoStartups
	}
	stats.Startups = len(startups)

	seed := r.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	plan := Generate(seed, r.cfg.Predictions, startups)

	jobs, err := r.submit(ctx, plan, stats)
	if err != nil {
		return stats, err
	}
	if len(jobs) == 0 {
		return stats, fmt.Errorf("%w: no prediction was accepted", ErrUnexpected)
	}

	finished, err := r.poll(ctx, jobs, stats)
	if err != nil {
		return stats, err
	}

	r.verify(ctx, finished, stats)

	if r.cfg.OutputFile != "" {
		if err := writeReport(r.cfg.OutputFile, stats); err != nil {
			r.log.Warn(ctx, "failed to write report", logger.Error(err))
		}
	}

	r.log.Info(ctx, "smoke run finished",
		logger.Int("accepted", stats.Accepted),
		logger.Int("throttled", stats.Throttled),
		logger.Int("rejected", stats.Rejected),
		logger.Int("jobsCompleted", stats.JobsCompleted),
		logger.Int("jobsFailed", stats.JobsFailed),
		logger.Int("recordsVerified", stats.RecordsVerified),
		logger.Duration("duration", time.Since(stats.StartTime)),
	)

	if len(stats.VerificationErrors) > 0 {
		return stats, fmt.Errorf("%w: %d record(s) invalid", ErrVerification, len(stats.VerificationErrors))
	}
	return stats, nil
}

// submit sends the plan with bounded concurrency and optional pacing and
// returns the accepted jobs.
func (r *Runner) submit(ctx context.Context, plan []Request, stats *Stats) ([]PredictResponse, error) {
	var (
		mu       sync.Mutex
		accepted []PredictResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)
	for _, req := range plan {
		g.Go(func() error {
			if r.limiter != nil {
				if err := r.limiter.Wait(gctx); err != nil {
					return err
				}
			}
			resp, err := r.client.Predict(gctx, req.StartupID, req.Features)

			mu.Lock()
			defer mu.Unlock()
			stats.Submitted++
			switch {
			case err == nil:
				stats.Accepted++
				accepted = append(accepted, resp)
			case errors.Is(err, ErrThrottled):
				stats.Throttled++
			case gctx.Err() != nil:
				return gctx.Err()
			default:
				stats.Rejected++
				r.log.Warn(gctx, "prediction request failed", logger.Int("startupId", req.StartupID), logger.Error(err))
			}
			if r.cfg.Verbose && err == nil {
				r.log.Info(gctx, "prediction accepted", logger.String("jobId", resp.JobID), logger.Int("startupId", req.StartupID))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("submit predictions: %w", err)
	}
	return accepted, nil
}

// poll waits until every job is terminal and returns the final statuses.
func (r *Runner) poll(ctx context.Context, jobs []PredictResponse, stats *Stats) ([]model.JobStatus, error) {
	pollCtx := ctx
	if r.cfg.PollTimeout > 0 {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeout(ctx, r.cfg.PollTimeout)
		defer cancel()
	}

	finished := make([]model.JobStatus, len(jobs))
	g, gctx := errgroup.WithContext(pollCtx)
	g.SetLimit(r.cfg.Concurrency)
	for i, job := range jobs {
		g.Go(func() error {
			st, err := r.waitJob(gctx, job.JobID)
			if err != nil {
				return err
			}
			finished[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: %w", ErrPollTimeout, err)
		}
		return nil, err
	}

	for _, st := range finished {
		switch st.State {
		case model.JobCompleted:
			stats.JobsCompleted++
		case model.JobFailed:
			stats.JobsFailed++
			r.log.Warn(ctx, "prediction job failed", logger.String("jobId", st.ID), logger.String("error", st.Error))
		}
	}
	return finished, nil
}

func (r *Runner) waitJob(ctx context.Context, id string) (model.JobStatus, error) {
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()
	for {
		st, err := r.client.Job(ctx, id)
		if err != nil {
			return model.JobStatus{}, fmt.Errorf("job %s: %w", id, err)
		}
		if st.State.Terminal() {
			return st, nil
		}
		select {
		case <-ctx.Done():
			return model.JobStatus{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// verify checks the stored record of every startup with a completed job.
// Concurrent jobs for one startup leave a single record, so each startup is
// checked once.
func (r *Runner) verify(ctx context.Context, finished []model.JobStatus, stats *Stats) {
	seen := make(map[int]struct{})
	var ids []int
	for _, st := range finished {
		if st.State != model.JobCompleted {
			continue
		}
		if _, ok := seen[st.StartupID]; !ok {
			seen[st.StartupID] = struct{}{}
			ids = append(ids, st.StartupID)
		}
	}
	sort.Ints(ids)

	for _, id := range ids {
		detail, err := r.client.Startup(ctx, id)
		if err == nil {
			err = VerifyRecord(detail.Prediction)
		}
		if err != nil {
			stats.VerificationErrors = append(stats.VerificationErrors, err.Error())
			r.log.Error(ctx, "record verification failed", logger.Int("startupId", id), logger.Error(err))
			continue
		}
		stats.RecordsVerified++
		if r.cfg.Verbose {
			r.log.Info(ctx, "record verified",
				logger.Int("startupId", id),
				logger.Float64("prediction", detail.Prediction.Prediction),
				logger.Float64("confidence", detail.Prediction.Confidence),
			)
		}
	}
}

// writeReport saves stats as indented JSON, creating parent directories.
func writeReport(path string, stats *Stats) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), reportFilePermission); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
