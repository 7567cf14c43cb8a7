// Package robot defines the joint-space and Cartesian types shared by the
// controller and the simulator interface it drives.
package robot

import (
	"math"

	"github.com/golang/geo/r3"
)

// NumJoints is the manipulator's degree of freedom.
const NumJoints = 7

// JointVector holds one angle per joint in radians, indexed by joint.
type JointVector [NumJoints]float64

func (q JointVector) Add(other JointVector) JointVector {
	var out JointVector
	for i := range q {
		out[i] = q[i] + other[i]
	}
	return out
}

func (q JointVector) Sub(other JointVector) JointVector {
	var out JointVector
	for i := range q {
		out[i] = q[i] - other[i]
	}
	return out
}

func (q JointVector) Scale(factor float64) JointVector {
	var out JointVector
	for i := range q {
		out[i] = q[i] * factor
	}
	return out
}

func (q JointVector) Norm() float64 {
	sum := 0.0
	for _, v := range q {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (q JointVector) Slice() []float64 {
	out := make([]float64, NumJoints)
	copy(out, q[:])
	return out
}

func (q JointVector) IsValid() bool {
	for _, v := range q {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// CartesianVector is a position or displacement in meters.
type CartesianVector = r3.Vector

// IsFinite reports whether every component of v is a real number.
func IsFinite(v CartesianVector) bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// RobotState is a snapshot taken at the start of a control tick.
type RobotState struct {
	Joints JointVector
	Tip    CartesianVector
	Time   float64
}

type ActuatorID int

type BodyID int

// Frame selects the reference frame of a position query. Any BodyID may be
// used as a frame; WorldFrame means absolute coordinates.
type Frame int

const WorldFrame Frame = -1

// Interface is the simulated robot the controller talks to. Calls are
// synchronous and return once the simulator has answered.
type Interface interface {
	ResolveActuator(path string) (ActuatorID, error)
	ResolveBody(path string) (BodyID, error)

	JointAngle(id ActuatorID) (float64, error)
	// SetJointAngle may only become observable after the next
	// AdvanceSimulationTime.
	SetJointAngle(id ActuatorID, rad float64) error

	EndEffectorPosition(body BodyID, frame Frame) (CartesianVector, error)

	AdvanceSimulationTime() error
	SimulationTime() (float64, error)

	StartSimulation() error
	StopSimulation() error
}
