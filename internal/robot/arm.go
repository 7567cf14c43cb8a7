package robot

import (
	"errors"
	"fmt"
)

// Arm binds the seven joint handles and the tip body of one manipulator.
type Arm struct {
	sim    Interface
	joints [NumJoints]ActuatorID
	tip    BodyID
	frame  Frame

	TipPath string
}

// Bind resolves jointPaths (exactly NumJoints, in joint order) and the first
// of tipCandidates that exists.
func Bind(sim Interface, jointPaths, tipCandidates []string, frame Frame) (*Arm, error) {
	if len(jointPaths) != NumJoints {
		return nil, fmt.Errorf("robot: expected %d joint paths, got %d", NumJoints, len(jointPaths))
	}

	a := &Arm{sim: sim, frame: frame}
	for i, path := range jointPaths {
		id, err := sim.ResolveActuator(path)
		if err != nil {
			return nil, fmt.Errorf("joint %d (%s): %w", i+1, path, err)
		}
		a.joints[i] = id
	}

	var errs []error
	for _, path := range tipCandidates {
		id, err := sim.ResolveBody(path)
		if err == nil {
			a.tip = id
			a.TipPath = path
			return a, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("no tip candidates given: %w", ErrNotFound)
	}
	return nil, fmt.Errorf("tip %v: %w", tipCandidates, errors.Join(errs...))
}

func (a *Arm) Joints() (JointVector, error) {
	var q JointVector
	for i, id := range a.joints {
		v, err := a.sim.JointAngle(id)
		if err != nil {
			return q, fmt.Errorf("read joint %d: %w", i+1, err)
		}
		q[i] = v
	}
	return q, nil
}

// Command sends every joint target. The new configuration becomes visible
// after Step.
func (a *Arm) Command(q JointVector) error {
	for i, id := range a.joints {
		if err := a.sim.SetJointAngle(id, q[i]); err != nil {
			return fmt.Errorf("command joint %d: %w", i+1, err)
		}
	}
	return nil
}

func (a *Arm) Tip() (CartesianVector, error) {
	p, err := a.sim.EndEffectorPosition(a.tip, a.frame)
	if err != nil {
		return CartesianVector{}, fmt.Errorf("read tip: %w", err)
	}
	return p, nil
}

func (a *Arm) State() (RobotState, error) {
	t, err := a.sim.SimulationTime()
	if err != nil {
		return RobotState{}, err
	}
	q, err := a.Joints()
	if err != nil {
		return RobotState{}, err
	}
	p, err := a.Tip()
	if err != nil {
		return RobotState{}, err
	}
	return RobotState{Joints: q, Tip: p, Time: t}, nil
}

func (a *Arm) Step() error            { return a.sim.AdvanceSimulationTime() }
func (a *Arm) Time() (float64, error) { return a.sim.SimulationTime() }
func (a *Arm) Start() error           { return a.sim.StartSimulation() }
func (a *Arm) Stop() error            { return a.sim.StopSimulation() }
