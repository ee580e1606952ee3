// Package physics provides the motion and visibility laws of a paper.
//
// Papers fall under gravity with linear air drag. Instead of stepping an
// ODE, [Drag] evaluates the closed-form trajectory at the paper's age:
//
//	x(t) = x0 + vT·vx·(1 − e^(−g·t/vT)) / g
//	y(t) = y0 − vT·(vy + vT)·(1 − e^(−g·t/vT)) / g + vT·t
//
// so positions are exact regardless of frame-time jitter. Screen
// coordinates grow downwards; launch velocities point upwards for positive
// vy.
//
// [Fade] is the time-based opacity ramp. [System] exposes the underlying ODE
// so numerical integrators can be checked against the closed form:
//
//	drag := physics.Drag{G: 300, VT: 500}
//	sys := drag.System()
//	x := drag.InitialState(origin, v0)
//	x = integrators.NewRK4().Step(sys, x, t, dt)
package physics
