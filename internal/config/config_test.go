package config_test

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/quantumcrowd/internal/config"
	"github.com/okian/quantumcrowd/internal/domain/kernel"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.JobHistorySize, convey.ShouldEqual, 10_000)
			convey.So(cfg.Kernel, convey.ShouldEqual, "statevector")
			convey.So(cfg.FeatureMapReps, convey.ShouldEqual, 2)
			convey.So(cfg.Shots, convey.ShouldEqual, 1024)
			convey.So(cfg.ModelVersion, convey.ShouldEqual, "QML-v2.0")
			convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"*"})
			convey.So(cfg.ShutdownTimeout, convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.TrustProxyHeaders, convey.ShouldBeFalse)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then derived values follow the fields", func() {
			convey.So(cfg.KernelKind(), convey.ShouldEqual, kernel.KindStatevector)
			cfg.ScoringLatencyMinMS, cfg.ScoringLatencyMaxMS = 80, 150
			minLatency, maxLatency := cfg.ScoringLatency()
			convey.So(minLatency, convey.ShouldEqual, 80*time.Millisecond)
			convey.So(maxLatency, convey.ShouldEqual, 150*time.Millisecond)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New(context.Background())

		cases := map[string]func(*config.Config){
			"empty addr":         func(c *config.Config) { c.Addr = " " },
			"unknown kernel":     func(c *config.Config) { c.Kernel = "quantum-annealer" },
			"zero reps":          func(c *config.Config) { c.FeatureMapReps = 0 },
			"non-positive gamma": func(c *config.Config) { c.RBFGamma = 0 },
			"zero shots":         func(c *config.Config) { c.Shots = 0 },
			"inverted latency":   func(c *config.Config) { c.ScoringLatencyMinMS, c.ScoringLatencyMaxMS = 100, 10 },
			"negative rate":      func(c *config.Config) { c.PredictRatePerSec = -1 },
			"unknown log format": func(c *config.Config) { c.LogFormat = "xml" },
		}
		for name, mutate := range cases {
			convey.Convey("When it has "+name, func() {
				mutate(cfg)
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}

		convey.Convey("When the kernel is rbf in mixed case", func() {
			cfg.Kernel = " RBF "
			convey.So(cfg.Validate(), convey.ShouldBeNil)
			convey.So(cfg.KernelKind(), convey.ShouldEqual, kernel.KindRBF)
		})
	})
}
