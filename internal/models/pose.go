package models

import "github.com/golang/geo/r3"

// Pose is a rigid transform: rotation followed by translation.
type Pose struct {
	Rot [3][3]float64
	Pos r3.Vector
}

func IdentityPose() Pose {
	return Pose{Rot: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}
}

func (p Pose) rotate(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: p.Rot[0][0]*v.X + p.Rot[0][1]*v.Y + p.Rot[0][2]*v.Z,
		Y: p.Rot[1][0]*v.X + p.Rot[1][1]*v.Y + p.Rot[1][2]*v.Z,
		Z: p.Rot[2][0]*v.X + p.Rot[2][1]*v.Y + p.Rot[2][2]*v.Z,
	}
}

// Compose returns p·q, the pose of q expressed in p's parent frame.
func (p Pose) Compose(q Pose) Pose {
	var out Pose
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out.Rot[i][j] += p.Rot[i][k] * q.Rot[k][j]
			}
		}
	}
	out.Pos = p.rotate(q.Pos).Add(p.Pos)
	return out
}

// Local expresses the world point v in p's frame.
func (p Pose) Local(v r3.Vector) r3.Vector {
	d := v.Sub(p.Pos)
	return r3.Vector{
		X: p.Rot[0][0]*d.X + p.Rot[1][0]*d.Y + p.Rot[2][0]*d.Z,
		Y: p.Rot[0][1]*d.X + p.Rot[1][1]*d.Y + p.Rot[2][1]*d.Z,
		Z: p.Rot[0][2]*d.X + p.Rot[1][2]*d.Y + p.Rot[2][2]*d.Z,
	}
}
