package physics

import "math"

// Drag is a projectile model with linear air drag, parameterized by the
// gravitational acceleration G and the terminal velocity VT. Both must be
// positive; this is not checked here.
type Drag struct {
	G  float64
	VT float64
}

// Launch decomposes a launch speed and an angle in degrees into a velocity.
// Positive angles point upwards.
func Launch(speed, angleDeg float64) Vec2 {
	rad := math.Pi * angleDeg / 180
	return Vec2{X: speed * math.Cos(rad), Y: speed * math.Sin(rad)}
}

func (d Drag) decay(t float64) float64 {
	return 1 - math.Exp(-d.G*t/d.VT)
}

// Position returns the screen position at time t of a paper launched from
// origin with velocity v0.
func (d Drag) Position(origin, v0 Vec2, t float64) Vec2 {
	k := d.decay(t)
	return Vec2{
		X: origin.X + d.VT*v0.X*k/d.G,
		Y: origin.Y - d.VT*(v0.Y+d.VT)*k/d.G + d.VT*t,
	}
}

// Velocity returns the screen-space velocity at time t (Y grows downwards).
func (d Drag) Velocity(v0 Vec2, t float64) Vec2 {
	e := math.Exp(-d.G * t / d.VT)
	return Vec2{
		X: v0.X * e,
		Y: d.VT - (v0.Y+d.VT)*e,
	}
}

// InitialState packs origin and launch velocity into [x, y, vx, vy] with
// screen-space velocity.
func (d Drag) InitialState(origin, v0 Vec2) State {
	return State{origin.X, origin.Y, v0.X, -v0.Y}
}

// System returns the drag ODE over [x, y, vx, vy].
func (d Drag) System() *DragSystem {
	return &DragSystem{G: d.G, K: d.G / d.VT}
}

// DragSystem is the ODE behind Drag:
//
//	x'' = -k·x'
//	y'' = g - k·y'
//
// with k = g/vT.
type DragSystem struct {
	G float64
	K float64
}

func (s *DragSystem) StateDim() int { return 4 }

func (s *DragSystem) Derive(x State, t float64) State {
	return State{x[2], x[3], -s.K * x[2], s.G - s.K*x[3]}
}
