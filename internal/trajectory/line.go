package trajectory

import "github.com/san-kum/ikdrive/internal/robot"

// Line asks for the same displacement every tick: Step along Dir.
type Line struct {
	Step float64
	Dir  robot.CartesianVector
}

// NewLine normalizes dir. A zero dir yields no motion.
func NewLine(step float64, dir robot.CartesianVector) Line {
	if n := dir.Norm(); n > 0 {
		dir = dir.Mul(1 / n)
	}
	return Line{Step: step, Dir: dir}
}

func (l Line) At(float64) robot.CartesianVector {
	return l.Dir.Mul(l.Step)
}
