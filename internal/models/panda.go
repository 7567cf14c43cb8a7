// Package models holds the kinematic description of the simulated arm.
package models

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/san-kum/ikdrive/internal/robot"
)

// Link is one row of a modified (Craig) Denavit-Hartenberg table.
type Link struct {
	A     float64
	D     float64
	Alpha float64
}

// Transform is RotX(alpha)·TransX(a)·RotZ(theta)·TransZ(d).
func (l Link) Transform(theta float64) Pose {
	ct, st := math.Cos(theta), math.Sin(theta)
	ca, sa := math.Cos(l.Alpha), math.Sin(l.Alpha)
	return Pose{
		Rot: [3][3]float64{
			{ct, -st, 0},
			{st * ca, ct * ca, -sa},
			{st * sa, ct * sa, ca},
		},
		Pos: r3.Vector{X: l.A, Y: -l.D * sa, Z: l.D * ca},
	}
}

type Limit struct {
	Min float64
	Max float64
}

// Frame indices returned by Frames.
const (
	FrameBase   = 0
	FrameFlange = robot.NumJoints + 1
	FrameHand   = robot.NumJoints + 2
	FrameTCP    = robot.NumJoints + 3
	NumFrames   = robot.NumJoints + 4
)

// Panda is the Franka Emika Panda arm.
type Panda struct {
	Links  [robot.NumJoints]Link
	Limits [robot.NumJoints]Limit
	Flange float64
	TCP    float64
}

func NewPanda() *Panda {
	return &Panda{
		Links: [robot.NumJoints]Link{
			{A: 0, D: 0.333, Alpha: 0},
			{A: 0, D: 0, Alpha: -math.Pi / 2},
			{A: 0, D: 0.316, Alpha: math.Pi / 2},
			{A: 0.0825, D: 0, Alpha: math.Pi / 2},
			{A: -0.0825, D: 0.384, Alpha: -math.Pi / 2},
			{A: 0, D: 0, Alpha: math.Pi / 2},
			{A: 0.088, D: 0, Alpha: math.Pi / 2},
		},
		Limits: [robot.NumJoints]Limit{
			{-2.8973, 2.8973},
			{-1.7628, 1.7628},
			{-2.8973, 2.8973},
			{-3.0718, -0.0698},
			{-2.8973, 2.8973},
			{-0.0175, 3.7525},
			{-2.8973, 2.8973},
		},
		Flange: 0.107,
		TCP:    0.1034,
	}
}

// Home is the ready pose used by the Panda's own controllers.
func (p *Panda) Home() robot.JointVector {
	return robot.JointVector{0, -math.Pi / 4, 0, -3 * math.Pi / 4, 0, math.Pi / 2, math.Pi / 4}
}

func (p *Panda) Clamp(joint int, v float64) float64 {
	l := p.Limits[joint]
	return math.Max(l.Min, math.Min(l.Max, v))
}

func (p *Panda) Within(q robot.JointVector) bool {
	for i, v := range q {
		if v < p.Limits[i].Min || v > p.Limits[i].Max {
			return false
		}
	}
	return true
}

// Frames returns the world pose of the base, each joint frame, the flange,
// the hand and the tool centre point, indexed by the Frame* constants.
func (p *Panda) Frames(q robot.JointVector) [NumFrames]Pose {
	var out [NumFrames]Pose
	cur := IdentityPose()
	out[FrameBase] = cur

	for i, l := range p.Links {
		cur = cur.Compose(l.Transform(q[i]))
		out[i+1] = cur
	}

	cur = cur.Compose(Link{D: p.Flange}.Transform(0))
	out[FrameFlange] = cur

	cur = cur.Compose(Link{}.Transform(-math.Pi / 4))
	out[FrameHand] = cur

	out[FrameTCP] = cur.Compose(Link{D: p.TCP}.Transform(0))
	return out
}

// Forward returns the TCP pose.
func (p *Panda) Forward(q robot.JointVector) Pose {
	return p.Frames(q)[FrameTCP]
}
