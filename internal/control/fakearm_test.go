package control_test

import (
	"errors"

	"github.com/san-kum/ikdrive/internal/ik"
	"github.com/san-kum/ikdrive/internal/robot"
)

var (
	errProbe = errors.New("tip read failed")
	errStep  = errors.New("advance failed")
)

// fakeArm has a linear tip map and applies commands immediately.
type fakeArm struct {
	jac    ik.Jacobian
	offset robot.CartesianVector
	dt     float64

	q       robot.JointVector
	time    float64
	running bool

	steps    int
	starts   int
	stops    int
	tipReads int
	commands []robot.JointVector

	failTipRead  int
	failStepFrom int
	startErr     error
	stopErr      error
}

func newFakeArm(dt float64) *fakeArm {
	return &fakeArm{
		jac: ik.Jacobian{
			{1, 0, 0, 0.5, 0, 0, 0},
			{0, 1, 0, 0, 0.5, 0, 0},
			{0, 0, 1, 0, 0, 0, 0.5},
		},
		offset: robot.CartesianVector{X: 0.3, Z: 0.5},
		dt:     dt,
	}
}

func (f *fakeArm) tip() robot.CartesianVector {
	return f.jac.Apply(f.q).Add(f.offset)
}

func (f *fakeArm) Command(q robot.JointVector) error {
	f.commands = append(f.commands, q)
	f.q = q
	return nil
}

func (f *fakeArm) Step() error {
	f.steps++
	if f.failStepFrom > 0 && f.steps >= f.failStepFrom {
		return errStep
	}
	f.time += f.dt
	return nil
}

func (f *fakeArm) Tip() (robot.CartesianVector, error) {
	f.tipReads++
	if f.failTipRead > 0 && f.tipReads == f.failTipRead {
		return robot.CartesianVector{}, errProbe
	}
	return f.tip(), nil
}

func (f *fakeArm) State() (robot.RobotState, error) {
	return robot.RobotState{Joints: f.q, Tip: f.tip(), Time: f.time}, nil
}

func (f *fakeArm) Time() (float64, error) { return f.time, nil }

func (f *fakeArm) Start() error {
	f.starts++
	if f.startErr != nil {
		return f.startErr
	}
	f.running = true
	f.time = 0
	return nil
}

func (f *fakeArm) Stop() error {
	f.stops++
	f.running = false
	return f.stopErr
}
