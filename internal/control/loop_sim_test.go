package control_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ikdrive/internal/control"
	"github.com/san-kum/ikdrive/internal/metrics"
	"github.com/san-kum/ikdrive/internal/models"
	"github.com/san-kum/ikdrive/internal/robot"
	"github.com/san-kum/ikdrive/internal/sim"
)

var _ = Describe("Loop against the simulated Panda", func() {
	var (
		s   *sim.Simulator
		arm *robot.Arm
	)

	BeforeEach(func() {
		var err error
		s, err = sim.New(models.NewPanda(), sim.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())

		arm, err = robot.Bind(s, s.JointPaths(), []string{"/Franka/panda_tip"}, robot.WorldFrame)
		Expect(err).NotTo(HaveOccurred())
	})

	It("follows the circle with settled probes", func() {
		cfg := control.DefaultConfig()
		cfg.Duration = 1
		loop, err := control.New(arm, nil, cfg,
			control.WithLogger(testLogger()),
			control.WithMetrics(metrics.NewTrackingError()))
		Expect(err).NotTo(HaveOccurred())

		result, err := loop.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		// Each refresh spends 14 of the 20 advances the duration allows.
		Expect(result.Ticks).To(Equal(6))
		Expect(result.Refreshes).To(Equal([]int{1, 6}))
		Expect(result.Metrics["tracking_error"]).To(BeNumerically("<", cfg.StepSize))
		Expect(s.Running()).To(BeFalse())
		Expect(s.Model().Within(s.Joints())).To(BeTrue())
	})

	It("follows the circle with unsettled probes on a free-running simulator", func() {
		sc := sim.DefaultConfig()
		sc.Immediate = true
		var err error
		s, err = sim.New(models.NewPanda(), sc)
		Expect(err).NotTo(HaveOccurred())
		arm, err = robot.Bind(s, s.JointPaths(), []string{"/Franka/panda_tip"}, robot.WorldFrame)
		Expect(err).NotTo(HaveOccurred())

		cfg := control.DefaultConfig()
		cfg.Duration = 1
		cfg.SettleProbes = false
		loop, err := control.New(arm, nil, cfg,
			control.WithLogger(testLogger()),
			control.WithMetrics(metrics.NewTrackingError()))
		Expect(err).NotTo(HaveOccurred())

		result, err := loop.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Ticks).To(Equal(20))
		Expect(result.Refreshes).To(Equal([]int{1, 6, 11, 16}))
		Expect(result.Stats.Min).To(BeNumerically(">", 0))
		Expect(result.Metrics["tracking_error"]).To(BeNumerically("<", cfg.StepSize))
		Expect(s.Running()).To(BeFalse())
	})

	It("surfaces an injected simulator fault and still stops", func() {
		var err error
		cfg := sim.DefaultConfig()
		cfg.FailAfter = 20
		s, err = sim.New(models.NewPanda(), cfg)
		Expect(err).NotTo(HaveOccurred())
		arm, err = robot.Bind(s, s.JointPaths(), []string{"/Franka/missing", "/Franka/panda_tip"}, robot.WorldFrame)
		Expect(err).NotTo(HaveOccurred())
		Expect(arm.TipPath).To(Equal("/Franka/panda_tip"))

		loop, err := control.New(arm, nil, control.DefaultConfig(), control.WithLogger(testLogger()))
		Expect(err).NotTo(HaveOccurred())

		_, err = loop.Run(context.Background())
		Expect(err).To(MatchError(sim.ErrInjected))
		Expect(s.Running()).To(BeFalse())
		Expect(loop.Phase()).To(Equal(control.PhaseStopped))
	})
})
