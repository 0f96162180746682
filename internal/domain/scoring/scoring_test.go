package scoring_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/okian/quantumcrowd/internal/domain/kernel"
	"github.com/okian/quantumcrowd/internal/domain/model"
	scoring "github.com/okian/quantumcrowd/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func sim(high, low float64) kernel.Similarity {
	return kernel.Similarity{kernel.LabelHighSuccess: high, kernel.LabelLowSuccess: low}
}

func TestSynthesize(t *testing.T) {
	Convey("Given the score synthesizer", t, func() {
		Convey("When high clearly dominates", func() {
			got := scoring.Synthesize(sim(0.9, 0.1))

			Convey("Then prediction is 90 and confidence 80", func() {
				So(got.Prediction, ShouldEqual, 90.0)
				So(got.Confidence, ShouldEqual, 80.0)
			})
		})

		Convey("When both similarities are zero", func() {
			got := scoring.Synthesize(sim(0, 0))

			Convey("Then the neutral prediction is returned", func() {
				So(got.Prediction, ShouldEqual, 50.0)
				So(got.Confidence, ShouldEqual, 0.0)
			})
		})

		Convey("When both similarities are equal", func() {
			got := scoring.Synthesize(sim(0.5, 0.5))

			Convey("Then prediction is 50 with no confidence", func() {
				So(got.Prediction, ShouldEqual, 50.0)
				So(got.Confidence, ShouldEqual, 0.0)
			})
		})

		Convey("When the difference exceeds one", func() {
			got := scoring.Synthesize(sim(3, 0))

			Convey("Then confidence is capped at 100", func() {
				So(got.Prediction, ShouldEqual, 100.0)
				So(got.Confidence, ShouldEqual, 100.0)
			})
		})

		Convey("When a label is missing", func() {
			got := scoring.Synthesize(kernel.Similarity{kernel.LabelLowSuccess: 0.4})

			Convey("Then it counts as zero", func() {
				So(got.Prediction, ShouldEqual, 0.0)
				So(got.Confidence, ShouldEqual, 40.0)
			})
		})

		Convey("When results need rounding", func() {
			got := scoring.Synthesize(sim(1, 2))

			Convey("Then both values carry two decimals", func() {
				So(got.Prediction, ShouldEqual, 33.33)
				So(got.Confidence, ShouldEqual, 100.0)
			})
		})

		Convey("When inputs are arbitrary reals", func() {
			inputs := [][2]float64{
				{-1, 0.5}, {0.5, -1}, {-2, -3}, {1e300, 1e300},
				{math.NaN(), 0.2}, {math.Inf(1), 0}, {0.123456, 0.654321},
			}

			Convey("Then outputs stay within [0, 100]", func() {
				for _, in := range inputs {
					got := scoring.Synthesize(sim(in[0], in[1]))
					So(got.Prediction, ShouldBeBetweenOrEqual, 0.0, 100.0)
					So(got.Confidence, ShouldBeBetweenOrEqual, 0.0, 100.0)
				}
			})
		})
	})
}

func newScorer(kind kernel.Kind, opts ...scoring.Option) *scoring.KernelScorer {
	k, err := kernel.New(kind)
	So(err, ShouldBeNil)
	engine, err := kernel.NewEngine(k, kernel.DefaultReferences())
	So(err, ShouldBeNil)
	s, err := scoring.NewKernelScorer(engine, opts...)
	So(err, ShouldBeNil)
	return s
}

func TestKernelScorer_Score(t *testing.T) {
	features := model.FeatureSet{Team: 0.8, Traction: 0.7, Market: 0.6, Innovation: 0.9, Financials: 0.7}

	Convey("Given a statevector-backed scorer", t, func() {
		scorer := newScorer(kernel.KindStatevector)

		Convey("When scoring a startup", func() {
			result, err := scorer.Score(context.Background(), scoring.Input{StartupID: 1, Features: features})

			Convey("Then it should return a bounded prediction with metadata", func() {
				So(err, ShouldBeNil)
				So(result.StartupID, ShouldEqual, 1)
				So(result.Prediction, ShouldAlmostEqual, 40.69, 0.011)
				So(result.Confidence, ShouldAlmostEqual, 1.65, 0.011)
				So(result.Breakdown, ShouldResemble, features)
				So(result.Meta.CircuitDepth, ShouldEqual, 64)
				So(result.Meta.Backend, ShouldEqual, "Statevector Simulator (exact)")
				So(len(result.Similarity), ShouldEqual, 2)
			})
		})

		Convey("When scoring the high-success archetype", func() {
			high := kernel.DefaultReferences()[0].Features
			result, err := scorer.Score(context.Background(), scoring.Input{StartupID: 2, Features: high})

			Convey("Then the prediction is strongly positive", func() {
				So(err, ShouldBeNil)
				So(result.Prediction, ShouldBeGreaterThan, 90.0)
			})
		})

		Convey("When scoring the low-success archetype", func() {
			low := kernel.DefaultReferences()[1].Features
			result, err := scorer.Score(context.Background(), scoring.Input{StartupID: 2, Features: low})

			Convey("Then the prediction is strongly negative", func() {
				So(err, ShouldBeNil)
				So(result.Prediction, ShouldBeLessThan, 10.0)
			})
		})

		Convey("When scoring the same input twice", func() {
			a, errA := scorer.Score(context.Background(), scoring.Input{StartupID: 3, Features: features})
			b, errB := scorer.Score(context.Background(), scoring.Input{StartupID: 3, Features: features})

			Convey("Then the numeric results are identical", func() {
				So(errA, ShouldBeNil)
				So(errB, ShouldBeNil)
				So(a.Prediction, ShouldEqual, b.Prediction)
				So(a.Confidence, ShouldEqual, b.Confidence)
				So(a.Similarity, ShouldResemble, b.Similarity)
			})
		})
	})

	Convey("Given an RBF-backed scorer", t, func() {
		scorer := newScorer(kernel.KindRBF)

		Convey("When scoring a startup", func() {
			result, err := scorer.Score(context.Background(), scoring.Input{StartupID: 1, Features: features})

			Convey("Then the RBF metadata is reported", func() {
				So(err, ShouldBeNil)
				So(result.Prediction, ShouldAlmostEqual, 98.77, 0.011)
				So(result.Meta.Backend, ShouldEqual, "Classical RBF Kernel")
				So(result.Meta.Shots, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a scorer with simulated latency", t, func() {
		scorer := newScorer(kernel.KindRBF, scoring.WithLatencyRange(50*time.Millisecond, 60*time.Millisecond))

		Convey("When the context is cancelled first", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := scorer.Score(ctx, scoring.Input{StartupID: 1, Features: features})

			Convey("Then it should return a context error", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})

		Convey("When the context allows the latency", func() {
			start := time.Now()
			_, err := scorer.Score(context.Background(), scoring.Input{StartupID: 1, Features: features})

			Convey("Then the call waits at least the minimum latency", func() {
				So(err, ShouldBeNil)
				So(time.Since(start), ShouldBeGreaterThanOrEqualTo, 50*time.Millisecond)
			})
		})
	})

	Convey("Given no engine", t, func() {
		_, err := scoring.NewKernelScorer(nil)
		So(err, ShouldNotBeNil)
	})
}
