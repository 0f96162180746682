// Package repository holds the latest prediction per startup.
package repository

import (
	"context"

	"github.com/okian/quantumcrowd/internal/domain/model"
)

// Store provides read/write access to predictions keyed by startup id.
// Every mutation is atomic with respect to its key; operations on different
// keys never block each other.
type Store interface {
	// Upsert replaces the record for rec.StartupID, creating it if absent.
	// Returns true if an existing record was replaced.
	Upsert(ctx context.Context, rec model.PredictionRecord) (bool, error)

	// Get returns a copy of the record for startupID.
	// Returns ErrNotFound if there is none.
	Get(ctx context.Context, startupID int) (model.PredictionRecord, error)

	// AttachPublication sets txHash on the existing record for startupID.
	// Returns false without error if there is no record.
	AttachPublication(ctx context.Context, startupID int, txHash string) (bool, error)

	// Count returns the number of startups with a record.
	Count(ctx context.Context) int
}
