package registry

import (
	"context"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/quantumcrowd/internal/domain/model"
)

// SeedPrediction asks for a startup to be scored when the service starts.
// A non-empty TxHash is attached to the record once it is stored, as if the
// publication notification had already arrived.
type SeedPrediction struct {
	StartupID int              `koanf:"startup_id"`
	Features  model.FeatureSet `koanf:"features"`
	TxHash    string           `koanf:"tx_hash"`
}

// Seed is the content of a seed file.
//
//	startups:
//	  - id: 1
//	    title: EcoTech Solutions
//	    metadata_hash: QmXyz...
//	predictions:
//	  - startup_id: 1
//	    features: {team: 0.8, traction: 0.7, market: 0.6, innovation: 0.9, financials: 0.7}
//	    tx_hash: 0xdef...
type Seed struct {
	Startups    []model.Startup  `koanf:"startups"`
	Predictions []SeedPrediction `koanf:"predictions"`
}

// DefaultSeed returns the demo catalogue with one prediction for the first
// startup, so a fresh server has a finalized record to show.
func DefaultSeed() Seed {
	return Seed{
		Startups: DefaultStartups(),
		Predictions: []SeedPrediction{{
			StartupID: 1,
			Features:  model.FeatureSet{Team: 0.8, Traction: 0.7, Market: 0.6, Innovation: 0.9, Financials: 0.7},
		}},
	}
}

// LoadSeed reads a YAML seed file. An empty startups list keeps the default
// catalogue. Every preloaded prediction must refer to a seeded startup.
func LoadSeed(ctx context.Context, path string) (Seed, error) {
	if err := ctx.Err(); err != nil {
		return Seed{}, err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return Seed{}, fmt.Errorf("%w: %s: %w", ErrLoadSeedFile, path, err)
	}

	var seed Seed
	if err := k.UnmarshalWithConf("", &seed, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Seed{}, fmt.Errorf("%w: %s: %w", ErrInvalidSeed, path, err)
	}
	if len(seed.Startups) == 0 {
		seed.Startups = DefaultStartups()
	}

	known := make(map[int]struct{}, len(seed.Startups))
	for _, s := range seed.Startups {
		known[s.ID] = struct{}{}
	}
	for _, p := range seed.Predictions {
		if _, ok := known[p.StartupID]; !ok {
			return Seed{}, fmt.Errorf("%w: prediction for unknown startup %d", ErrInvalidSeed, p.StartupID)
		}
	}
	return seed, nil
}
