package control

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/san-kum/ikdrive/internal/ik"
	"github.com/san-kum/ikdrive/internal/metrics"
	"github.com/san-kum/ikdrive/internal/robot"
	"github.com/san-kum/ikdrive/internal/trajectory"
	"go.uber.org/zap"
)

// Arm is the robot a Loop drives. *robot.Arm implements it.
type Arm interface {
	ik.Prober
	State() (robot.RobotState, error)
	Time() (float64, error)
	Start() error
	Stop() error
}

type Observer interface {
	OnTick(s metrics.Sample)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(s metrics.Sample)

func (f ObserverFunc) OnTick(s metrics.Sample) { f(s) }

type Option func(*Loop)

func WithLogger(logger *zap.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

func WithMetrics(m ...metrics.Metric) Option {
	return func(l *Loop) { l.metrics = append(l.metrics, m...) }
}

func WithObserver(o Observer) Option {
	return func(l *Loop) { l.observers = append(l.observers, o) }
}

type Result struct {
	Stats     metrics.Summary
	Ticks     int
	Refreshes []int
	// Elapsed is the simulated time between loop start and the last check
	// of the clock.
	Elapsed float64
	Metrics map[string]float64
	Samples []metrics.Sample
}

// Loop is a single run of the resolved-rate controller. It is not safe for
// concurrent use and must be the only writer to its arm.
type Loop struct {
	arm     Arm
	traj    trajectory.Generator
	cfg     Config
	est     *ik.Estimator
	limiter ik.Limiter

	logger    *zap.Logger
	metrics   []metrics.Metric
	observers []Observer
	stats     *metrics.Stats

	phase     Phase
	jacobian  *ik.Jacobian
	tick      int
	elapsed   float64
	refreshes []int
	samples   []metrics.Sample
	lastLog   float64
}

// New validates cfg and builds a loop. A nil traj traces a circle of
// cfg.StepSize.
func New(arm Arm, traj trajectory.Generator, cfg Config, opts ...Option) (*Loop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if traj == nil {
		traj = trajectory.NewCircle(cfg.StepSize)
	}

	l := &Loop{
		arm:     arm,
		traj:    traj,
		cfg:     cfg,
		est:     ik.NewEstimator(cfg.Epsilon, cfg.SettleProbes),
		limiter: ik.Limiter{PerJoint: cfg.MaxJointStep, Global: cfg.MaxStepNorm},
		logger:  zap.NewNop(),
		stats:   metrics.NewStats(),
		lastLog: -1,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

func (l *Loop) Phase() Phase { return l.phase }

func (l *Loop) Config() Config { return l.cfg }

// Run drives the arm until Duration of simulated time has passed, ctx is
// done or a tick fails. Whatever the outcome, the loop drains and stops the
// simulation before returning. A tick failure is returned as a *TickError
// wrapping the original error.
func (l *Loop) Run(ctx context.Context) (*Result, error) {
	if l.phase != PhaseInit {
		return nil, ErrAlreadyRun
	}

	if err := l.arm.Start(); err != nil {
		err = fmt.Errorf("start simulation: %w", err)
		if stopErr := l.stop(); stopErr != nil {
			err = errors.Join(err, stopErr)
		}
		return nil, err
	}
	l.setPhase(PhaseRunning)

	l.stats.Reset()
	for _, m := range l.metrics {
		m.Reset()
	}

	runErr := l.run(ctx)
	if runErr != nil {
		l.logger.Warn("control loop failed", zap.Int("tick", l.tick), zap.Error(runErr))
	}

	l.drain()
	stopErr := l.stop()

	result := l.result()
	switch {
	case runErr != nil && stopErr != nil:
		return result, errors.Join(runErr, stopErr)
	case runErr != nil:
		return result, runErr
	case stopErr != nil:
		return result, stopErr
	}

	l.logger.Info("control loop complete",
		zap.Int("ticks", result.Ticks),
		zap.Float64("elapsed", result.Elapsed),
		zap.Float64("dq_mean", result.Stats.Mean),
		zap.Float64("dq_min", result.Stats.Min),
		zap.Float64("dq_max", result.Stats.Max),
	)
	return result, nil
}

func (l *Loop) run(ctx context.Context) error {
	start, err := l.arm.Time()
	if err != nil {
		return fmt.Errorf("read simulation time: %w", err)
	}

	var pace <-chan time.Time
	if l.cfg.Realtime {
		ticker := time.NewTicker(time.Duration(l.cfg.Dt * float64(time.Second)))
		defer ticker.Stop()
		pace = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		now, err := l.arm.Time()
		if err != nil {
			return fmt.Errorf("read simulation time: %w", err)
		}
		l.elapsed = now - start
		if l.elapsed >= l.cfg.Duration {
			return nil
		}

		l.tick++
		if err := l.step(l.elapsed); err != nil {
			return &TickError{Tick: l.tick, Time: l.elapsed, Err: err}
		}

		if pace != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-pace:
			}
		}
	}
}

func (l *Loop) step(t float64) error {
	st, err := l.arm.State()
	if err != nil {
		return fmt.Errorf("sample state: %w", err)
	}

	dx := l.traj.At(t)

	refreshed := false
	if l.jacobian == nil || (l.tick-1)%l.cfg.RefreshPeriod == 0 {
		jac, err := l.est.Estimate(l.arm, st.Joints, st.Tip)
		if err != nil {
			return err
		}
		l.jacobian = &jac
		l.refreshes = append(l.refreshes, l.tick)
		refreshed = true
	}

	raw, err := ik.Solve(*l.jacobian, dx, l.cfg.Damping)
	if err != nil {
		return err
	}
	dq := l.limiter.Bound(raw)

	if err := l.arm.Command(st.Joints.Add(dq)); err != nil {
		return fmt.Errorf("command joints: %w", err)
	}
	if err := l.arm.Step(); err != nil {
		return fmt.Errorf("advance simulation: %w", err)
	}

	s := metrics.Sample{
		Tick:      l.tick,
		Time:      t,
		Joints:    st.Joints,
		Tip:       st.Tip,
		Dx:        dx,
		Dq:        dq,
		RawNorm:   raw.Norm(),
		DqNorm:    dq.Norm(),
		Refreshed: refreshed,
	}
	l.record(s)
	return nil
}

func (l *Loop) record(s metrics.Sample) {
	l.stats.Observe(s)
	for _, m := range l.metrics {
		m.Observe(s)
	}
	for _, o := range l.observers {
		o.OnTick(s)
	}
	l.samples = append(l.samples, s)

	if l.lastLog < 0 || s.Time-l.lastLog >= l.cfg.LogInterval {
		l.logger.Info("tick",
			zap.Float64("t", s.Time),
			zap.Float64("dx", s.Dx.Norm()),
			zap.Float64s("p", []float64{s.Tip.X, s.Tip.Y, s.Tip.Z}),
			zap.Float64("dq", s.DqNorm),
			zap.Bool("jacobian", s.Refreshed),
		)
		l.lastLog = s.Time
	}
}

// drain lets the simulator settle for a few ticks. The first failed advance
// ends draining early.
func (l *Loop) drain() {
	l.setPhase(PhaseDraining)
	for i := 0; i < l.cfg.DrainTicks; i++ {
		if err := l.arm.Step(); err != nil {
			l.logger.Debug("drain interrupted", zap.Int("advance", i+1), zap.Error(err))
			return
		}
	}
}

func (l *Loop) stop() error {
	err := l.arm.Stop()
	l.setPhase(PhaseStopped)
	if err != nil {
		return fmt.Errorf("stop simulation: %w", err)
	}
	return nil
}

func (l *Loop) setPhase(p Phase) {
	l.logger.Debug("phase", zap.Stringer("from", l.phase), zap.Stringer("to", p))
	l.phase = p
}

func (l *Loop) result() *Result {
	r := &Result{
		Stats:     l.stats.Summary(),
		Ticks:     l.tick,
		Refreshes: l.refreshes,
		Elapsed:   l.elapsed,
		Metrics:   make(map[string]float64, len(l.metrics)+1),
		Samples:   l.samples,
	}
	r.Metrics[l.stats.Name()] = l.stats.Value()
	for _, m := range l.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
	return r
}
