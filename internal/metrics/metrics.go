// Package metrics accumulates per-tick measurements of a control run.
package metrics

import "github.com/san-kum/ikdrive/internal/robot"

// Sample is the record of one control tick.
type Sample struct {
	Tick      int
	Time      float64
	Joints    robot.JointVector
	Tip       robot.CartesianVector
	Dx        robot.CartesianVector
	Dq        robot.JointVector
	RawNorm   float64
	DqNorm    float64
	Refreshed bool
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

func Defaults() []Metric {
	return []Metric{
		NewTrackingError(),
		NewSaturation(),
		NewTipTravel(),
	}
}
