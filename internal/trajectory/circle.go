// Package trajectory produces the desired per-tick tip displacement.
package trajectory

import (
	"math"

	"github.com/san-kum/ikdrive/internal/robot"
)

// Frequency of the circular path in Hz.
const Frequency = 0.1

// Generator yields the desired tip displacement for one tick at elapsed
// simulated time t. Implementations are pure functions of t.
type Generator interface {
	At(t float64) robot.CartesianVector
}

// Circle traces a circle in the x-y plane: each tick asks for a displacement
// of length Step whose heading turns at Frequency.
type Circle struct {
	Step float64
}

func NewCircle(step float64) Circle {
	return Circle{Step: step}
}

func (c Circle) At(t float64) robot.CartesianVector {
	phase := 2 * math.Pi * Frequency * t
	return robot.CartesianVector{
		X: c.Step * math.Cos(phase),
		Y: c.Step * math.Sin(phase),
	}
}

// Period returns the time for one full revolution.
func (c Circle) Period() float64 {
	return 1 / Frequency
}
