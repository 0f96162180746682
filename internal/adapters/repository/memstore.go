package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/quantumcrowd/internal/domain/model"
	"github.com/okian/quantumcrowd/pkg/metrics"
)

// slot guards the record of a single startup.
type slot struct {
	mu  sync.RWMutex
	rec *model.PredictionRecord
}

// MemoryStore is an in-memory Store with one lock per startup.
type MemoryStore struct {
	slots sync.Map // int -> *slot
	count atomic.Int64

	metricsUpdateInterval time.Duration
	cancel                context.CancelFunc
	done                  chan struct{}
	closed                atomic.Bool
}

// NewMemoryStore creates a store and starts its metrics updater, which runs
// until ctx is cancelled or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		done:                  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.startMetricsUpdater(ctx)
	return s
}

// Close stops the background metrics updater.
func (s *MemoryStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.cancel()
	<-s.done
	return nil
}

func (s *MemoryStore) slotFor(startupID int) *slot {
	if v, ok := s.slots.Load(startupID); ok {
		return v.(*slot)
	}
	v, _ := s.slots.LoadOrStore(startupID, &slot{})
	return v.(*slot)
}

// Upsert implements Store.
func (s *MemoryStore) Upsert(ctx context.Context, rec model.PredictionRecord) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Nanoseconds()) / 1e6)
	}()

	if err := ctx.Err(); err != nil {
		return false, err
	}
	if rec.StartupID <= 0 {
		metrics.RecordErrorByComponent("repository", "invalid_record")
		return false, fmt.Errorf("%w: startup id %d", ErrInvalidRecord, rec.StartupID)
	}

	stored := rec.Clone()
	sl := s.slotFor(rec.StartupID)

	sl.mu.Lock()
	replaced := sl.rec != nil
	sl.rec = &stored
	sl.mu.Unlock()

	if !replaced {
		s.count.Add(1)
	}
	metrics.RecordStoreUpsert()
	return replaced, nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, startupID int) (model.PredictionRecord, error) {
	if err := ctx.Err(); err != nil {
		return model.PredictionRecord{}, err
	}

	v, ok := s.slots.Load(startupID)
	if !ok {
		return model.PredictionRecord{}, ErrNotFound
	}
	sl := v.(*slot)

	sl.mu.RLock()
	defer sl.mu.RUnlock()
	if sl.rec == nil {
		return model.PredictionRecord{}, ErrNotFound
	}
	return sl.rec.Clone(), nil
}

// AttachPublication implements Store.
func (s *MemoryStore) AttachPublication(ctx context.Context, startupID int, txHash string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	v, ok := s.slots.Load(startupID)
	if !ok {
		return false, nil
	}
	sl := v.(*slot)

	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.rec == nil {
		return false, nil
	}
	tx := txHash
	sl.rec.TxHash = &tx
	return true, nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	return int(s.count.Load())
}

// startMetricsUpdater periodically publishes the stored prediction count.
func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.UpdateStoredPredictions(int(s.count.Load()))
			}
		}
	}()
}
