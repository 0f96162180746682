// Package service wires the prediction pipeline and implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	jobqueue "github.com/okian/quantumcrowd/internal/adapters/mq/queue"
	workerpool "github.com/okian/quantumcrowd/internal/adapters/mq/worker"
	"github.com/okian/quantumcrowd/internal/adapters/registry"
	"github.com/okian/quantumcrowd/internal/adapters/repository"
	"github.com/okian/quantumcrowd/internal/domain/dedupe"
	"github.com/okian/quantumcrowd/internal/domain/digest"
	"github.com/okian/quantumcrowd/internal/domain/kernel"
	"github.com/okian/quantumcrowd/internal/domain/model"
	"github.com/okian/quantumcrowd/internal/domain/scoring"
	"github.com/okian/quantumcrowd/pkg/logger"
	"github.com/okian/quantumcrowd/pkg/metrics"
)

// DefaultModelVersion is stamped on predictions unless overridden.
const DefaultModelVersion = "QML-v2.0"

// Submission is the synchronous answer to a prediction request.
type Submission struct {
	JobID       string
	Placeholder model.PredictionRecord
}

// StartupDetail is a startup together with its latest prediction, if any.
type StartupDetail struct {
	Startup    model.Startup           `json:"startup"`
	Prediction *model.PredictionRecord `json:"prediction"`
}

// Service implements the API dependencies for the prediction system.
type Service struct {
	mu sync.RWMutex

	// Core components
	registry *registry.MemoryRegistry
	store    *repository.MemoryStore
	deduper  dedupe.Deduper
	queue    *jobqueue.InMemoryQueue
	scorer   *scoring.KernelScorer
	pool     *workerpool.Pool
	jobs     *jobTracker

	// Configuration
	workerCount       int
	queueSize         int
	dedupeSize        int
	jobHistorySize    int
	kernelKind        kernel.Kind
	reps              int
	shots             int
	gamma             float64
	references        []kernel.Reference
	modelVersion      string
	seed              registry.Seed
	scoringMinLatency time.Duration
	scoringMaxLatency time.Duration
	clock             func() time.Time
	wrapScorer        func(workerpool.Scorer) workerpool.Scorer

	// State
	started bool
	cancel  context.CancelFunc
	// job id -> tx hash attached when the seed job completes
	seedPublications sync.Map

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:    runtime.NumCPU() * 2,
		queueSize:      10000,
		dedupeSize:     10000,
		jobHistorySize: 10000,
		kernelKind:     kernel.KindStatevector,
		reps:           kernel.DefaultReps,
		shots:          kernel.DefaultShots,
		gamma:          kernel.DefaultGamma,
		references:     kernel.DefaultReferences(),
		modelVersion:   DefaultModelVersion,
		seed:           registry.Seed{Startups: registry.DefaultStartups()},
		clock:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the pipeline components, starts the worker pool and submits
// any seed predictions. Workers run until Stop or until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.logger.Info(ctx, "starting prediction service...")

	reg, err := registry.NewMemoryRegistry(s.seed.Startups)
	if err != nil {
		return fmt.Errorf("build registry: %w", err)
	}
	k, err := kernel.New(s.kernelKind,
		kernel.WithReps(s.reps),
		kernel.WithShots(s.shots),
		kernel.WithGamma(s.gamma),
	)
	if err != nil {
		return fmt.Errorf("build kernel: %w", err)
	}
	engine, err := kernel.NewEngine(k, s.references)
	if err != nil {
		return fmt.Errorf("build similarity engine: %w", err)
	}
	scorer, err := scoring.NewKernelScorer(engine,
		scoring.WithLatencyRange(s.scoringMinLatency, s.scoringMaxLatency),
	)
	if err != nil {
		return fmt.Errorf("build scorer: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.registry = reg
	s.scorer = scorer
	s.store = repository.NewMemoryStore(runCtx)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.jobs = newJobTracker(s.jobHistorySize)
	s.queue = jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	var jobScorer workerpool.Scorer = scorer
	if s.wrapScorer != nil {
		jobScorer = s.wrapScorer(scorer)
	}
	s.pool = workerpool.NewPool(s.workerCount, s.queue, jobScorer, &pipeline{s: s})
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "prediction service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.String("kernel", string(k.Kind())),
		logger.Int("startups", reg.Len()),
	)

	for _, p := range s.seed.Predictions {
		sub, err := s.submitLocked(ctx, p.StartupID, p.Features, p.TxHash)
		if err != nil {
			s.logger.Warn(ctx, "seed prediction rejected", logger.Int("startupId", p.StartupID), logger.Error(err))
			continue
		}
		s.logger.Debug(ctx, "seed prediction submitted", logger.String("jobId", sub.JobID))
	}
	return nil
}

// Stop closes the queue, lets the workers drain it until ctx expires and
// releases the remaining components.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping prediction service...")

	err := s.pool.Shutdown(ctx)
	if err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}
	s.cancel()
	_ = s.store.Close()

	s.started = false
	s.logger.Info(ctx, "prediction service stopped")
	return err
}

// Submit validates the startup, queues a scoring job and returns the
// placeholder record immediately. It never waits for scoring.
func (s *Service) Submit(ctx context.Context, startupID int, features model.FeatureSet) (Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.submitLocked(ctx, startupID, features, "")
}

// submitLocked queues a job. A non-empty txHash is attached to the record
// when the job completes.
func (s *Service) submitLocked(ctx context.Context, startupID int, features model.FeatureSet, txHash string) (Submission, error) {
	if !s.started {
		return Submission{}, ErrNotStarted
	}
	if !s.registry.Exists(ctx, startupID) {
		metrics.RecordPredictionRejected("unknown_startup")
		return Submission{}, fmt.Errorf("%w: startup %d", ErrNotFound, startupID)
	}

	now := s.clock()
	job := model.Job{ID: uuid.NewString(), StartupID: startupID, Features: features, AcceptedAt: now}
	s.jobs.accept(job)
	placeholder := model.Placeholder(startupID, s.modelVersion, now.Unix())
	s.jobs.advance(job.ID, model.JobPlaceholderReturned)
	if txHash != "" {
		s.seedPublications.Store(job.ID, txHash)
	}

	if err := s.queue.Enqueue(context.WithoutCancel(ctx), job); err != nil {
		s.seedPublications.Delete(job.ID)
		s.jobs.forget(job.ID)
		reason := "enqueue_error"
		if errors.Is(err, jobqueue.ErrQueueFull) {
			reason = "queue_full"
			err = fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		metrics.RecordPredictionRejected(reason)
		return Submission{}, err
	}

	metrics.RecordPredictionSubmitted()
	s.logger.Debug(ctx, "prediction job queued",
		logger.String("jobId", job.ID),
		logger.Int("startupId", startupID),
	)
	return Submission{JobID: job.ID, Placeholder: placeholder}, nil
}

// Wait blocks until the job reaches a terminal state or ctx is done.
func (s *Service) Wait(ctx context.Context, jobID string) (model.JobStatus, error) {
	jobs, err := s.tracker()
	if err != nil {
		return model.JobStatus{}, err
	}
	return jobs.wait(ctx, jobID)
}

// Job returns the current status of a job.
func (s *Service) Job(_ context.Context, jobID string) (model.JobStatus, error) {
	jobs, err := s.tracker()
	if err != nil {
		return model.JobStatus{}, err
	}
	st, ok := jobs.get(jobID)
	if !ok {
		return model.JobStatus{}, fmt.Errorf("%w: job %s", ErrNotFound, jobID)
	}
	return st, nil
}

func (s *Service) tracker() (*jobTracker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.jobs, nil
}

// Startups lists the registry.
func (s *Service) Startups(ctx context.Context) ([]model.Startup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.registry.List(ctx), nil
}

// Startup returns a startup and its latest prediction. The prediction is nil
// when none has been computed yet.
func (s *Service) Startup(ctx context.Context, startupID int) (StartupDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return StartupDetail{}, ErrNotStarted
	}

	st, err := s.registry.Get(ctx, startupID)
	if err != nil {
		return StartupDetail{}, fmt.Errorf("%w: startup %d", ErrNotFound, startupID)
	}
	detail := StartupDetail{Startup: st}

	rec, err := s.store.Get(ctx, startupID)
	switch {
	case err == nil:
		detail.Prediction = &rec
	case !errors.Is(err, repository.ErrNotFound):
		return StartupDetail{}, fmt.Errorf("load prediction for startup %d: %w", startupID, err)
	}
	return detail, nil
}

// Prediction returns the latest prediction for a startup.
func (s *Service) Prediction(ctx context.Context, startupID int) (model.PredictionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return model.PredictionRecord{}, ErrNotStarted
	}
	rec, err := s.store.Get(ctx, startupID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.PredictionRecord{}, fmt.Errorf("%w: prediction for startup %d", ErrNotFound, startupID)
	}
	return rec, err
}

// AttachPublication records the ledger transaction of a published prediction.
// Unknown startups, missing records, empty hashes and replayed deliveries are
// no-ops. Returns whether a record was updated.
func (s *Service) AttachPublication(ctx context.Context, startupID int, txHash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return false, ErrNotStarted
	}

	if txHash == "" {
		metrics.RecordPublicationIgnored("empty_tx_hash")
		return false, nil
	}
	key := strconv.Itoa(startupID) + ":" + txHash
	if s.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordPublicationIgnored("duplicate")
		s.logger.Debug(ctx, "duplicate publication ignored", logger.Int("startupId", startupID), logger.String("txHash", txHash))
		return false, nil
	}

	attached, err := s.store.AttachPublication(ctx, startupID, txHash)
	if err != nil {
		s.deduper.Unrecord(ctx, key)
		return false, fmt.Errorf("attach publication to startup %d: %w", startupID, err)
	}
	if !attached {
		s.deduper.Unrecord(ctx, key)
		metrics.RecordPublicationIgnored("no_record")
		return false, nil
	}

	metrics.RecordPublicationAttached()
	s.logger.Info(ctx, "publication attached", logger.Int("startupId", startupID), logger.String("txHash", txHash))
	return true, nil
}

// InvestIntent prepares an investment intent for the investor to sign.
func (s *Service) InvestIntent(ctx context.Context, startupID int, investor string, amount float64) (model.InvestIntent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return model.InvestIntent{}, ErrNotStarted
	}
	if !s.registry.Exists(ctx, startupID) {
		return model.InvestIntent{}, fmt.Errorf("%w: startup %d", ErrNotFound, startupID)
	}

	id := uuid.NewString()
	return model.InvestIntent{
		IntentID:  id,
		StartupID: startupID,
		Investor:  investor,
		Amount:    amount,
		Timestamp: s.clock().Unix(),
		Signature: digest.IntentSignature(id),
	}, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":      s.started,
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"dedupeSize":   s.dedupeSize,
		"kernel":       string(s.kernelKind),
		"modelVersion": s.modelVersion,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stored := s.store.Count(ctx)

		stats["workerCount"] = s.pool.Size()
		stats["queueLength"] = queueLen
		stats["storedPredictions"] = stored
		stats["trackedJobs"] = s.jobs.len()
		stats["startups"] = s.registry.Len()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateStoredPredictions(stored)
	}
	return stats
}
