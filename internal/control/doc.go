// Package control runs the resolved-rate inverse kinematics loop.
//
// Each tick of a [Loop]:
//
//  1. samples the joint configuration and the tip position
//  2. asks the trajectory for the desired tip displacement
//  3. re-estimates the Jacobian if the cached one is due for refresh
//  4. solves for a joint step with damped least squares
//  5. bounds the step and commands the arm, then advances the simulation
//
// # Usage
//
//	loop, err := control.New(arm, trajectory.NewCircle(cfg.StepSize), cfg,
//		control.WithLogger(logger),
//		control.WithMetrics(metrics.Defaults()...))
//	result, err := loop.Run(ctx)
//
// Run always leaves the simulation stopped, after a few draining advances.
package control
