package ik

import "github.com/san-kum/ikdrive/internal/robot"

// Limiter bounds a joint step first per joint, then by Euclidean norm. The
// two caps compose: the norm cap is applied to the already clamped vector.
type Limiter struct {
	PerJoint float64
	Global   float64
}

func (l Limiter) Bound(dq robot.JointVector) robot.JointVector {
	var out robot.JointVector
	if l.PerJoint <= 0 || l.Global <= 0 {
		return out
	}

	for i, v := range dq {
		out[i] = max(-l.PerJoint, min(l.PerJoint, v))
	}

	if n := out.Norm(); n > l.Global {
		out = out.Scale(l.Global / n)
	}
	return out
}

// Bound applies a Limiter whose per-joint and norm caps are both maxDq.
func Bound(dq robot.JointVector, maxDq float64) robot.JointVector {
	return Limiter{PerJoint: maxDq, Global: maxDq}.Bound(dq)
}
