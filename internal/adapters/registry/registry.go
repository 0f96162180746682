// Package registry provides the read-only catalogue of startups that
// predictions and investment intents can refer to.
package registry

import (
	"context"
	"fmt"
	"slices"

	"github.com/okian/quantumcrowd/internal/domain/model"
)

// Registry answers existence and lookup queries for startups.
type Registry interface {
	// Exists reports whether id is a known startup.
	Exists(ctx context.Context, id int) bool
	// Get returns the startup or ErrNotFound.
	Get(ctx context.Context, id int) (model.Startup, error)
	// List returns all startups ordered by id.
	List(ctx context.Context) []model.Startup
}

// MemoryRegistry is an immutable in-memory Registry.
type MemoryRegistry struct {
	byID  map[int]model.Startup
	order []model.Startup
}

// DefaultStartups returns the demo catalogue served when no seed file is configured.
func DefaultStartups() []model.Startup {
	return []model.Startup{
		{
			ID:           1,
			Owner:        "0x1234...5678",
			Title:        "EcoTech Solutions",
			Tagline:      "Sustainable technology for a greener future",
			Sector:       "CleanTech",
			Goal:         50,
			Raised:       30,
			MetadataHash: "QmXyz...",
		},
		{
			ID:           2,
			Owner:        "0xabcd...ef01",
			Title:        "MediChain",
			Tagline:      "Blockchain-powered healthcare records",
			Sector:       "Healthcare",
			Goal:         100,
			Raised:       15,
			MetadataHash: "QmUvw...",
		},
	}
}

// NewMemoryRegistry builds a registry from startups. Ids must be positive and unique.
func NewMemoryRegistry(startups []model.Startup) (*MemoryRegistry, error) {
	r := &MemoryRegistry{byID: make(map[int]model.Startup, len(startups))}
	for _, s := range startups {
		if s.ID <= 0 {
			return nil, fmt.Errorf("%w: startup id must be positive, got %d", ErrInvalidSeed, s.ID)
		}
		if _, dup := r.byID[s.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, s.ID)
		}
		r.byID[s.ID] = s
		r.order = append(r.order, s)
	}
	slices.SortFunc(r.order, func(a, b model.Startup) int { return a.ID - b.ID })
	return r, nil
}

// Exists implements Registry.
func (r *MemoryRegistry) Exists(_ context.Context, id int) bool {
	_, ok := r.byID[id]
	return ok
}

// Get implements Registry.
func (r *MemoryRegistry) Get(_ context.Context, id int) (model.Startup, error) {
	s, ok := r.byID[id]
	if !ok {
		return model.Startup{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return s, nil
}

// List implements Registry.
func (r *MemoryRegistry) List(_ context.Context) []model.Startup {
	return slices.Clone(r.order)
}

// Len returns the number of startups.
func (r *MemoryRegistry) Len() int { return len(r.order) }
