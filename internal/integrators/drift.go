package integrators

import (
	"math"

	"github.com/san-kum/confetti/internal/physics"
)

// Stepper advances an ODE state by dt.
type Stepper interface {
	Step(sys physics.System, x physics.State, t, dt float64) physics.State
}

// Drift integrates a drag trajectory with s for duration seconds and returns
// the largest distance between the stepped and the closed-form positions.
func Drift(s Stepper, drag physics.Drag, origin, v0 physics.Vec2, duration, dt float64) float64 {
	sys := drag.System()
	x := drag.InitialState(origin, v0)
	worst := 0.0
	steps := int(math.Round(duration / dt))
	for i := 0; i < steps; i++ {
		t := float64(i) * dt
		x = s.Step(sys, x, t, dt)
		exact := drag.Position(origin, v0, t+dt)
		d := math.Hypot(x[0]-exact.X, x[1]-exact.Y)
		if d > worst {
			worst = d
		}
	}
	return worst
}
