package sim

import (
	"errors"

	"github.com/san-kum/ikdrive/internal/models"
	"github.com/san-kum/ikdrive/internal/robot"
)

var (
	// ErrNotRunning indicates a time advance requested while stopped.
	ErrNotRunning = errors.New("sim: simulation is not running")

	// ErrInjected is returned by operations that fail on purpose, see Config.FailAfter.
	ErrInjected = errors.New("sim: injected fault")
)

const DefaultDt = 0.05

// Config configures the stepping simulator.
type Config struct {
	// Dt is the simulated time covered by one AdvanceSimulationTime.
	Dt float64
	// Root prefixes every object path, e.g. "/Franka".
	Root string
	// Initial joint configuration; the model's home pose when nil.
	Initial *robot.JointVector
	// FailAfter makes every AdvanceSimulationTime after the given number of
	// successful advances fail with ErrInjected. Zero disables it.
	FailAfter int
	// Immediate makes joint commands visible at once instead of at the next
	// advance, like a free-running simulator.
	Immediate bool
}

func DefaultConfig() Config {
	return Config{Dt: DefaultDt, Root: "/Franka"}
}

type objectKind int

const (
	kindJoint objectKind = iota
	kindBody
)

type object struct {
	kind  objectKind
	index int
	name  string
}

func objectTable(root string) map[string]object {
	t := map[string]object{
		root:                  {kindBody, models.FrameBase, root},
		root + "/panda_link8": {kindBody, models.FrameFlange, "panda_link8"},
		root + "/panda_hand":  {kindBody, models.FrameHand, "panda_hand"},
		root + "/panda_tip":   {kindBody, models.FrameTCP, "panda_tip"},
	}
	for i := 0; i < robot.NumJoints; i++ {
		name := "panda_joint" + string(rune('1'+i))
		t[root+"/"+name] = object{kindJoint, i, name}
	}
	return t
}
