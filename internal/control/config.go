package control

import "fmt"

const (
	DefaultDt            = 0.05
	DefaultDuration      = 8.0
	DefaultEpsilon       = 1e-4
	DefaultDamping       = 0.1
	DefaultMaxStep       = 0.05
	DefaultStepSize      = 0.002
	DefaultRefreshPeriod = 5
	DefaultDrainTicks    = 5
	DefaultLogInterval   = 0.5
)

// Config is fixed for the lifetime of a Loop.
type Config struct {
	// Dt is the simulated length of one tick; Realtime paces ticks by it.
	Dt float64
	// Duration bounds the run in simulated seconds.
	Duration float64
	// Epsilon is the finite-difference joint perturbation in radians.
	Epsilon float64
	// Damping is λ in the damped least-squares solve.
	Damping float64
	// MaxJointStep caps each joint's step per tick.
	MaxJointStep float64
	// MaxStepNorm caps the Euclidean norm of the joint step per tick.
	MaxStepNorm float64
	// StepSize is the desired tip displacement per tick in meters.
	StepSize float64
	// RefreshPeriod is the number of ticks a Jacobian is reused for.
	RefreshPeriod int
	// DrainTicks is how many residual advances are attempted before stopping.
	DrainTicks int
	// SettleProbes advances the simulation after each probe command.
	SettleProbes bool
	// Realtime waits Dt of wall-clock time between ticks.
	Realtime bool
	// LogInterval is the simulated time between progress log lines; zero
	// logs every tick.
	LogInterval float64
}

func DefaultConfig() Config {
	return Config{
		Dt:            DefaultDt,
		Duration:      DefaultDuration,
		Epsilon:       DefaultEpsilon,
		Damping:       DefaultDamping,
		MaxJointStep:  DefaultMaxStep,
		MaxStepNorm:   DefaultMaxStep,
		StepSize:      DefaultStepSize,
		RefreshPeriod: DefaultRefreshPeriod,
		DrainTicks:    DefaultDrainTicks,
		SettleProbes:  true,
		LogInterval:   DefaultLogInterval,
	}
}

func (c Config) Validate() error {
	switch {
	case !(c.Dt > 0):
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, c.Dt)
	case !(c.Duration > 0):
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidConfig, c.Duration)
	case !(c.Epsilon > 0):
		return fmt.Errorf("%w: epsilon must be positive, got %g", ErrInvalidConfig, c.Epsilon)
	case !(c.Damping >= 0):
		return fmt.Errorf("%w: damping must be non-negative, got %g", ErrInvalidConfig, c.Damping)
	case !(c.MaxJointStep > 0):
		return fmt.Errorf("%w: max joint step must be positive, got %g", ErrInvalidConfig, c.MaxJointStep)
	case !(c.MaxStepNorm > 0):
		return fmt.Errorf("%w: max step norm must be positive, got %g", ErrInvalidConfig, c.MaxStepNorm)
	case !(c.StepSize >= 0):
		return fmt.Errorf("%w: step size must be non-negative, got %g", ErrInvalidConfig, c.StepSize)
	case c.RefreshPeriod < 1:
		return fmt.Errorf("%w: refresh period must be at least 1, got %d", ErrInvalidConfig, c.RefreshPeriod)
	case c.DrainTicks < 0:
		return fmt.Errorf("%w: drain ticks must be non-negative, got %d", ErrInvalidConfig, c.DrainTicks)
	case c.LogInterval < 0:
		return fmt.Errorf("%w: log interval must be non-negative, got %g", ErrInvalidConfig, c.LogInterval)
	}
	return nil
}
