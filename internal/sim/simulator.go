// Package sim is an in-process stepping simulator of a position-controlled
// Panda arm. It implements robot.Interface.
package sim

import (
	"fmt"

	"github.com/san-kum/ikdrive/internal/models"
	"github.com/san-kum/ikdrive/internal/robot"
)

// Handles are 1-based indices into Simulator.objects so that zero is never a
// valid handle.
type Simulator struct {
	cfg     Config
	model   *models.Panda
	objects []object
	byPath  map[string]int

	q       robot.JointVector
	target  robot.JointVector
	time    float64
	running bool
	steps   int
}

func New(model *models.Panda, cfg Config) (*Simulator, error) {
	if cfg.Dt <= 0 {
		return nil, fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}

	s := &Simulator{
		cfg:    cfg,
		model:  model,
		byPath: make(map[string]int),
	}
	for path, obj := range objectTable(cfg.Root) {
		s.objects = append(s.objects, obj)
		s.byPath[path] = len(s.objects)
	}

	s.q = model.Home()
	if cfg.Initial != nil {
		s.q = *cfg.Initial
	}
	for i := range s.q {
		s.q[i] = model.Clamp(i, s.q[i])
	}
	s.target = s.q
	return s, nil
}

func (s *Simulator) resolve(path string, kind objectKind) (int, error) {
	h, ok := s.byPath[path]
	if !ok || s.objects[h-1].kind != kind {
		return 0, fmt.Errorf("%s: %w", path, robot.ErrNotFound)
	}
	return h, nil
}

func (s *Simulator) lookup(h int, kind objectKind) (object, error) {
	if h < 1 || h > len(s.objects) || s.objects[h-1].kind != kind {
		return object{}, fmt.Errorf("handle %d: %w", h, robot.ErrNotFound)
	}
	return s.objects[h-1], nil
}

func (s *Simulator) ResolveActuator(path string) (robot.ActuatorID, error) {
	h, err := s.resolve(path, kindJoint)
	return robot.ActuatorID(h), err
}

func (s *Simulator) ResolveBody(path string) (robot.BodyID, error) {
	h, err := s.resolve(path, kindBody)
	return robot.BodyID(h), err
}

func (s *Simulator) JointAngle(id robot.ActuatorID) (float64, error) {
	obj, err := s.lookup(int(id), kindJoint)
	if err != nil {
		return 0, err
	}
	return s.q[obj.index], nil
}

// SetJointAngle latches a target that the joint reaches on the next advance.
// While stopped, or with Config.Immediate, the target is applied at once.
func (s *Simulator) SetJointAngle(id robot.ActuatorID, rad float64) error {
	obj, err := s.lookup(int(id), kindJoint)
	if err != nil {
		return err
	}
	s.target[obj.index] = s.model.Clamp(obj.index, rad)
	if !s.running || s.cfg.Immediate {
		s.q[obj.index] = s.target[obj.index]
	}
	return nil
}

func (s *Simulator) EndEffectorPosition(body robot.BodyID, frame robot.Frame) (robot.CartesianVector, error) {
	obj, err := s.lookup(int(body), kindBody)
	if err != nil {
		return robot.CartesianVector{}, err
	}

	frames := s.model.Frames(s.q)
	p := frames[obj.index].Pos
	if frame == robot.WorldFrame {
		return p, nil
	}

	ref, err := s.lookup(int(frame), kindBody)
	if err != nil {
		return robot.CartesianVector{}, fmt.Errorf("reference frame: %w", err)
	}
	return frames[ref.index].Local(p), nil
}

func (s *Simulator) AdvanceSimulationTime() error {
	if !s.running {
		return ErrNotRunning
	}
	if s.cfg.FailAfter > 0 && s.steps >= s.cfg.FailAfter {
		return fmt.Errorf("advance at t=%.4f: %w", s.time, ErrInjected)
	}
	s.q = s.target
	s.time += s.cfg.Dt
	s.steps++
	return nil
}

func (s *Simulator) SimulationTime() (float64, error) {
	return s.time, nil
}

// StartSimulation resets the clock to zero unless already running.
func (s *Simulator) StartSimulation() error {
	if s.running {
		return nil
	}
	s.running = true
	s.time = 0
	s.steps = 0
	return nil
}

// StopSimulation applies any pending targets and halts the clock.
func (s *Simulator) StopSimulation() error {
	if !s.running {
		return nil
	}
	s.running = false
	s.q = s.target
	return nil
}

func (s *Simulator) Running() bool { return s.running }

// Joints returns the applied configuration without going through handles.
func (s *Simulator) Joints() robot.JointVector { return s.q }

func (s *Simulator) Steps() int { return s.steps }

func (s *Simulator) Model() *models.Panda { return s.model }

// JointPaths lists the actuator paths in joint order.
func (s *Simulator) JointPaths() []string {
	paths := make([]string, robot.NumJoints)
	for path, h := range s.byPath {
		if obj := s.objects[h-1]; obj.kind == kindJoint {
			paths[obj.index] = path
		}
	}
	return paths
}
