package robot

import "errors"

// ErrNotFound indicates an actuator or body path the simulator cannot resolve.
var ErrNotFound = errors.New("robot: object not found")
