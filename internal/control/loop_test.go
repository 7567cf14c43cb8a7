package control_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/ikdrive/internal/control"
	"github.com/san-kum/ikdrive/internal/ik"
	"github.com/san-kum/ikdrive/internal/linalg"
	"github.com/san-kum/ikdrive/internal/metrics"
	"github.com/san-kum/ikdrive/internal/trajectory"
)

func testLogger() *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(GinkgoWriter),
		zapcore.DebugLevel,
	)
	return zap.New(core)
}

// twentyTicks runs 20 ticks of 0.25s with probes that do not advance time.
func twentyTicks() control.Config {
	cfg := control.DefaultConfig()
	cfg.Dt = 0.25
	cfg.Duration = 5
	cfg.SettleProbes = false
	return cfg
}

var _ = Describe("Loop", func() {
	var (
		arm *fakeArm
		cfg control.Config
		ctx context.Context
	)

	BeforeEach(func() {
		arm = newFakeArm(0.25)
		cfg = twentyTicks()
		ctx = context.Background()
	})

	newLoop := func(opts ...control.Option) *control.Loop {
		opts = append([]control.Option{control.WithLogger(testLogger())}, opts...)
		loop, err := control.New(arm, trajectory.NewCircle(cfg.StepSize), cfg, opts...)
		Expect(err).NotTo(HaveOccurred())
		return loop
	}

	Context("on a clean run", func() {
		It("refreshes the Jacobian every fifth tick starting at the first", func() {
			var refreshed []int
			loop := newLoop(control.WithObserver(control.ObserverFunc(func(s metrics.Sample) {
				if s.Refreshed {
					refreshed = append(refreshed, s.Tick)
				}
			})))

			result, err := loop.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Ticks).To(Equal(20))
			Expect(result.Refreshes).To(Equal([]int{1, 6, 11, 16}))
			Expect(refreshed).To(Equal([]int{1, 6, 11, 16}))
			Expect(result.Elapsed).To(BeNumerically(">=", cfg.Duration))
		})

		It("drains and stops the simulation", func() {
			loop := newLoop()
			Expect(loop.Phase()).To(Equal(control.PhaseInit))

			_, err := loop.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(arm.steps).To(Equal(20 + control.DefaultDrainTicks))
			Expect(arm.starts).To(Equal(1))
			Expect(arm.stops).To(Equal(1))
			Expect(arm.running).To(BeFalse())
			Expect(loop.Phase()).To(Equal(control.PhaseStopped))
		})

		It("delivers samples to observers in tick order", func() {
			var ticks []int
			loop := newLoop(control.WithObserver(control.ObserverFunc(func(s metrics.Sample) {
				ticks = append(ticks, s.Tick)
			})))

			result, err := loop.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(ticks).To(HaveLen(20))
			for i, tick := range ticks {
				Expect(tick).To(Equal(i + 1))
			}
			Expect(result.Samples).To(HaveLen(20))
		})

		It("summarizes the joint step norms", func() {
			loop := newLoop()

			result, err := loop.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Stats.Count).To(Equal(20))
			Expect(result.Stats.Min).To(BeNumerically("<=", result.Stats.Mean))
			Expect(result.Stats.Mean).To(BeNumerically("<=", result.Stats.Max))
			Expect(result.Stats.Max).To(BeNumerically("<=", cfg.MaxStepNorm+1e-12))
			Expect(result.Metrics).To(HaveKeyWithValue("dq_norm_mean", result.Stats.Mean))
		})

		It("moves the tip by the requested displacement when undamped", func() {
			cfg.Damping = 0
			loop := newLoop(control.WithMetrics(metrics.Defaults()...))

			result, err := loop.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Metrics["tracking_error"]).To(BeNumerically("<", 1e-9))
			Expect(result.Metrics["saturation"]).To(BeZero())
			Expect(result.Metrics["tip_travel"]).To(BeNumerically("~", 19*cfg.StepSize, 1e-9))
		})

		It("keeps every commanded step within the velocity caps", func() {
			cfg.StepSize = 1
			loop := newLoop(control.WithMetrics(metrics.NewSaturation()))

			result, err := loop.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			for _, s := range result.Samples {
				Expect(s.DqNorm).To(BeNumerically("<=", cfg.MaxStepNorm+1e-12))
				for _, d := range s.Dq {
					Expect(d).To(BeNumerically("<=", cfg.MaxJointStep+1e-12))
					Expect(d).To(BeNumerically(">=", -cfg.MaxJointStep-1e-12))
				}
			}
			Expect(result.Metrics["saturation"]).To(Equal(1.0))
		})

		It("traces a circle when no trajectory is given", func() {
			loop, err := control.New(arm, nil, cfg)
			Expect(err).NotTo(HaveOccurred())

			result, err := loop.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Samples[0].Dx.X).To(BeNumerically("~", cfg.StepSize, 1e-15))
		})
	})

	Context("when a tick fails", func() {
		It("reports a probe failure on the refresh tick and restores the joints", func() {
			// Tick 1 probes tip reads 1..7, tick 6 probes 8..14.
			arm.failTipRead = 9
			loop := newLoop()

			result, err := loop.Run(ctx)
			Expect(err).To(MatchError(ik.ErrEvaluation))
			Expect(err).To(MatchError(errProbe))
			Expect(err.Error()).To(ContainSubstring("joint 2"))

			var tickErr *control.TickError
			Expect(errors.As(err, &tickErr)).To(BeTrue())
			Expect(tickErr.Tick).To(Equal(6))
			Expect(tickErr.Time).To(Equal(1.25))

			Expect(result.Samples).To(HaveLen(5))
			last := result.Samples[4]
			Expect(arm.q).To(Equal(last.Joints.Add(last.Dq)))
		})

		It("drains the configured number of advances and stops", func() {
			arm.failTipRead = 9
			loop := newLoop()

			_, err := loop.Run(ctx)
			Expect(err).To(HaveOccurred())
			Expect(arm.steps).To(Equal(5 + control.DefaultDrainTicks))
			Expect(arm.stops).To(Equal(1))
			Expect(loop.Phase()).To(Equal(control.PhaseStopped))
		})

		It("stops draining at the first failed advance", func() {
			arm.failStepFrom = 3
			loop := newLoop()

			_, err := loop.Run(ctx)
			Expect(err).To(MatchError(errStep))

			var tickErr *control.TickError
			Expect(errors.As(err, &tickErr)).To(BeTrue())
			Expect(tickErr.Tick).To(Equal(3))
			Expect(arm.steps).To(Equal(4))
			Expect(arm.stops).To(Equal(1))
		})

		It("surfaces a singular system under zero damping", func() {
			arm.jac = ik.Jacobian{}
			cfg.Damping = 0
			loop := newLoop()

			_, err := loop.Run(ctx)
			Expect(err).To(MatchError(linalg.ErrSingular))

			var tickErr *control.TickError
			Expect(errors.As(err, &tickErr)).To(BeTrue())
			Expect(tickErr.Tick).To(Equal(1))
			Expect(arm.running).To(BeFalse())
		})

		It("joins a stop failure onto the tick failure", func() {
			stopErr := errors.New("stop refused")
			arm.failStepFrom = 2
			arm.stopErr = stopErr
			loop := newLoop()

			_, err := loop.Run(ctx)
			Expect(err).To(MatchError(errStep))
			Expect(err).To(MatchError(stopErr))
		})
	})

	Context("lifecycle", func() {
		It("routes cancellation through draining and stop", func() {
			cctx, cancel := context.WithCancel(ctx)
			defer cancel()
			loop := newLoop(control.WithObserver(control.ObserverFunc(func(s metrics.Sample) {
				if s.Tick == 3 {
					cancel()
				}
			})))

			result, err := loop.Run(cctx)
			Expect(err).To(MatchError(context.Canceled))
			Expect(result.Ticks).To(Equal(3))
			Expect(arm.steps).To(Equal(3 + control.DefaultDrainTicks))
			Expect(arm.stops).To(Equal(1))
			Expect(loop.Phase()).To(Equal(control.PhaseStopped))
		})

		It("leaves the simulation stopped when it fails to start", func() {
			startErr := errors.New("no scene")
			arm.startErr = startErr
			loop := newLoop()

			result, err := loop.Run(ctx)
			Expect(err).To(MatchError(startErr))
			Expect(result).To(BeNil())
			Expect(arm.steps).To(BeZero())
			Expect(arm.stops).To(Equal(1))
			Expect(loop.Phase()).To(Equal(control.PhaseStopped))
		})

		It("reports a stop failure after a successful run", func() {
			stopErr := errors.New("stop refused")
			arm.stopErr = stopErr
			loop := newLoop()

			result, err := loop.Run(ctx)
			Expect(err).To(MatchError(stopErr))
			Expect(result.Ticks).To(Equal(20))
		})

		It("runs only once", func() {
			loop := newLoop()
			_, err := loop.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			_, err = loop.Run(ctx)
			Expect(err).To(MatchError(control.ErrAlreadyRun))
			Expect(arm.starts).To(Equal(1))
		})

		It("paces ticks against the wall clock in realtime mode", func() {
			arm = newFakeArm(0.01)
			cfg.Dt = 0.01
			cfg.Duration = 0.05
			cfg.Realtime = true
			loop := newLoop()

			start := time.Now()
			result, err := loop.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Ticks).To(BeNumerically(">=", 5))
			Expect(time.Since(start)).To(BeNumerically(">=", 40*time.Millisecond))
		})
	})
})

var _ = DescribeTable("Config.Validate",
	func(mutate func(*control.Config)) {
		cfg := control.DefaultConfig()
		mutate(&cfg)
		Expect(cfg.Validate()).To(MatchError(control.ErrInvalidConfig))

		_, err := control.New(newFakeArm(0.05), nil, cfg)
		Expect(err).To(MatchError(control.ErrInvalidConfig))
	},
	Entry("zero dt", func(c *control.Config) { c.Dt = 0 }),
	Entry("negative duration", func(c *control.Config) { c.Duration = -1 }),
	Entry("zero epsilon", func(c *control.Config) { c.Epsilon = 0 }),
	Entry("negative damping", func(c *control.Config) { c.Damping = -0.1 }),
	Entry("zero joint cap", func(c *control.Config) { c.MaxJointStep = 0 }),
	Entry("zero norm cap", func(c *control.Config) { c.MaxStepNorm = 0 }),
	Entry("negative step size", func(c *control.Config) { c.StepSize = -0.001 }),
	Entry("zero refresh period", func(c *control.Config) { c.RefreshPeriod = 0 }),
	Entry("negative drain", func(c *control.Config) { c.DrainTicks = -1 }),
	Entry("negative log interval", func(c *control.Config) { c.LogInterval = -1 }),
)

var _ = Describe("Phase", func() {
	It("names every phase", func() {
		Expect(control.PhaseInit.String()).To(Equal("init"))
		Expect(control.PhaseRunning.String()).To(Equal("running"))
		Expect(control.PhaseDraining.String()).To(Equal("draining"))
		Expect(control.PhaseStopped.String()).To(Equal("stopped"))
		Expect(control.Phase(42).String()).To(Equal("unknown"))
	})
})
