package service

import (
	"context"
	"fmt"
	"math"
	"strconv"

	workerpool "github.com/okian/quantumcrowd/internal/adapters/mq/worker"
	"github.com/okian/quantumcrowd/internal/domain/digest"
	"github.com/okian/quantumcrowd/internal/domain/model"
	"github.com/okian/quantumcrowd/internal/domain/scoring"
	"github.com/okian/quantumcrowd/pkg/logger"
	"github.com/okian/quantumcrowd/pkg/metrics"
)

// pipeline receives job transitions from the worker pool and finalizes
// completed jobs into the store.
type pipeline struct {
	s *Service
}

var _ workerpool.Updater = (*pipeline)(nil)

func (p *pipeline) Begin(_ context.Context, job workerpool.Job) {
	p.s.jobs.advance(job.ID, model.JobComputing)
}

// Complete builds the signed record and upserts it. Concurrent jobs for the
// same startup race here and the last upsert wins.
func (p *pipeline) Complete(ctx context.Context, job workerpool.Job, res scoring.Result) error {
	rec := model.PredictionRecord{
		StartupID:    job.StartupID,
		Prediction:   res.Prediction,
		Confidence:   res.Confidence,
		ModelVersion: p.s.modelVersion,
		Breakdown:    res.Breakdown,
		QuantumData: model.QuantumData{
			CircuitDepth:  res.Meta.CircuitDepth,
			ExecutionTime: math.Round(res.Meta.ExecutionTime.Seconds()*100) / 100,
			Backend:       res.Meta.Backend,
			Shots:         res.Meta.Shots,
		},
		Time: p.s.clock().Unix(),
	}
	if err := digest.Seal(&rec); err != nil {
		return err
	}

	replaced, err := p.s.store.Upsert(ctx, rec)
	if err != nil {
		p.s.seedPublications.Delete(job.ID)
		return fmt.Errorf("store prediction: %w", err)
	}
	p.attachSeedPublication(ctx, job)

	p.s.jobs.finish(job.ID, model.JobCompleted, nil, p.s.clock())
	metrics.RecordPredictionCompleted()
	p.s.logger.Info(ctx, "prediction completed",
		logger.String("jobId", job.ID),
		logger.Int("startupId", job.StartupID),
		logger.Float64("prediction", rec.Prediction),
		logger.Float64("confidence", rec.Confidence),
		logger.Bool("replaced", replaced),
	)
	return nil
}

// Fail marks the job failed. The store is left untouched.
func (p *pipeline) Fail(ctx context.Context, job workerpool.Job, err error) {
	p.s.seedPublications.Delete(job.ID)
	metrics.RecordPredictionFailed()
	p.s.jobs.finish(job.ID, model.JobFailed, err, p.s.clock())
	p.s.logger.Error(ctx, "prediction failed",
		logger.String("jobId", job.ID),
		logger.Int("startupId", job.StartupID),
		logger.Error(err),
	)
}

func (p *pipeline) attachSeedPublication(ctx context.Context, job workerpool.Job) {
	v, ok := p.s.seedPublications.LoadAndDelete(job.ID)
	if !ok {
		return
	}
	txHash := v.(string)
	p.s.deduper.SeenAndRecord(ctx, strconv.Itoa(job.StartupID)+":"+txHash)
	if _, err := p.s.store.AttachPublication(ctx, job.StartupID, txHash); err != nil {
		p.s.logger.Warn(ctx, "seed publication not attached",
			logger.Int("startupId", job.StartupID),
			logger.String("txHash", txHash),
			logger.Error(err),
		)
		return
	}
	metrics.RecordPublicationAttached()
}
