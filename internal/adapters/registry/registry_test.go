package registry_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/quantumcrowd/internal/adapters/registry"
	"github.com/okian/quantumcrowd/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryRegistry(t *testing.T) {
	ctx := context.Background()

	Convey("Given the default registry", t, func() {
		r, err := registry.NewMemoryRegistry(registry.DefaultStartups())
		So(err, ShouldBeNil)

		Convey("When listing startups", func() {
			list := r.List(ctx)

			Convey("Then both demo startups are returned in id order", func() {
				So(len(list), ShouldEqual, 2)
				So(list[0].Title, ShouldEqual, "EcoTech Solutions")
				So(list[1].Title, ShouldEqual, "MediChain")
				So(list[1].MetadataHash, ShouldEqual, "QmUvw...")
			})
		})

		Convey("When looking up ids", func() {
			s, err := r.Get(ctx, 1)

			Convey("Then known ids resolve and unknown ids fail", func() {
				So(err, ShouldBeNil)
				So(s.Sector, ShouldEqual, "CleanTech")
				So(r.Exists(ctx, 2), ShouldBeTrue)
				So(r.Exists(ctx, 99), ShouldBeFalse)

				_, err = r.Get(ctx, 99)
				So(errors.Is(err, registry.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When a caller mutates the listing", func() {
			list := r.List(ctx)
			list[0].Title = "changed"

			Convey("Then the registry is unaffected", func() {
				So(r.List(ctx)[0].Title, ShouldEqual, "EcoTech Solutions")
			})
		})
	})

	Convey("Given invalid catalogues", t, func() {
		_, err := registry.NewMemoryRegistry([]model.Startup{{ID: 1}, {ID: 1}})
		So(errors.Is(err, registry.ErrDuplicateID), ShouldBeTrue)

		_, err = registry.NewMemoryRegistry([]model.Startup{{ID: 0}})
		So(errors.Is(err, registry.ErrInvalidSeed), ShouldBeTrue)
	})
}

func writeSeed(content string) string {
	path := filepath.Join(os.TempDir(), "qcrowd-seed-test.yaml")
	So(os.WriteFile(path, []byte(content), 0o600), ShouldBeNil)
	return path
}

func TestLoadSeed(t *testing.T) {
	ctx := context.Background()

	Convey("Given a seed file with startups and predictions", t, func() {
		path := writeSeed(`
startups:
  - id: 7
    owner: "0x77"
    title: Orbital
    tagline: Satellites for everyone
    sector: Space
    goal: 250
    raised: 12.5
    metadata_hash: QmOrb
predictions:
  - startup_id: 7
    features:
      team: 0.8
      traction: 0.7
      market: 0.6
      innovation: 0.9
      financials: 0.7
    tx_hash: "0xdef"
`)
		defer func() { _ = os.Remove(path) }()

		seed, err := registry.LoadSeed(ctx, path)

		Convey("Then both sections are decoded", func() {
			So(err, ShouldBeNil)
			So(len(seed.Startups), ShouldEqual, 1)
			So(seed.Startups[0].ID, ShouldEqual, 7)
			So(seed.Startups[0].Raised, ShouldEqual, 12.5)
			So(seed.Startups[0].MetadataHash, ShouldEqual, "QmOrb")
			So(len(seed.Predictions), ShouldEqual, 1)
			So(seed.Predictions[0].Features.Innovation, ShouldEqual, 0.9)
			So(seed.Predictions[0].TxHash, ShouldEqual, "0xdef")
		})
	})

	Convey("Given a seed file with only predictions", t, func() {
		path := writeSeed(`
predictions:
  - startup_id: 2
    features: {team: 0.1, traction: 0.2, market: 0.3, innovation: 0.4, financials: 0.5}
`)
		defer func() { _ = os.Remove(path) }()

		seed, err := registry.LoadSeed(ctx, path)

		Convey("Then the default catalogue is kept", func() {
			So(err, ShouldBeNil)
			So(len(seed.Startups), ShouldEqual, 2)
			So(seed.Predictions[0].StartupID, ShouldEqual, 2)
			So(seed.Predictions[0].TxHash, ShouldBeEmpty)
		})
	})

	Convey("Given a prediction for an unknown startup", t, func() {
		path := writeSeed(`
predictions:
  - startup_id: 42
`)
		defer func() { _ = os.Remove(path) }()

		_, err := registry.LoadSeed(ctx, path)

		Convey("Then loading fails", func() {
			So(errors.Is(err, registry.ErrInvalidSeed), ShouldBeTrue)
		})
	})

	Convey("Given a missing seed file", t, func() {
		_, err := registry.LoadSeed(ctx, "/nonexistent/seed.yaml")

		Convey("Then loading fails", func() {
			So(errors.Is(err, registry.ErrLoadSeedFile), ShouldBeTrue)
		})
	})
}

func TestDefaultSeed(t *testing.T) {
	Convey("Given the default seed", t, func() {
		seed := registry.DefaultSeed()

		Convey("Then it carries the demo catalogue", func() {
			So(seed.Startups, ShouldResemble, registry.DefaultStartups())
		})

		Convey("Then the first startup gets one prediction", func() {
			So(len(seed.Predictions), ShouldEqual, 1)
			So(seed.Predictions[0].StartupID, ShouldEqual, 1)
			for _, v := range seed.Predictions[0].Features.Vector() {
				So(v, ShouldBeBetweenOrEqual, 0, 1)
			}
		})
	})
}
